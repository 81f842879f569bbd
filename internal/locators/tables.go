package locators

// Central locator tables. Page objects resolve entries by name so a selector
// change touches exactly one line here or one override file.

// LoginPage is the Salesforce login form.
func LoginPage() *Table {
	return NewTable("login",
		Locator{Name: "username", Kind: KindID, Value: "username"},
		Locator{Name: "password", Kind: KindID, Value: "password"},
		Locator{Name: "login_button", Kind: KindID, Value: "Login"},
		Locator{Name: "error_banner", Kind: KindID, Value: "error"},
		Locator{Name: "global_header", Kind: KindCSS, Value: "header.slds-global-header_container"},
	)
}

// NavigationPage is the Lightning shell chrome: app launcher and object tabs.
func NavigationPage() *Table {
	return NewTable("navigation",
		Locator{Name: "app_launcher", Kind: KindCSS, Value: "button.slds-icon-waffle_container"},
		Locator{Name: "app_launcher_search", Kind: KindPlaceholder, Value: "Search apps and items..."},
		Locator{Name: "app_launcher_item", Kind: KindCSS, Value: "one-app-launcher-menu-item a"},
		Locator{Name: "object_tab", Kind: KindXPath, Value: `//a[@role='tab']//span[normalize-space(text())='%s']`},
		Locator{Name: "page_header", Kind: KindCSS, Value: "h1.slds-page-header__title"},
		Locator{Name: "toast_message", Kind: KindCSS, Value: "div.slds-notify__content .toastMessage"},
	)
}

// EventMasterPage is the Event Master object: list view, record form, and the
// row-level action menu.
func EventMasterPage() *Table {
	return NewTable("event_master",
		Locator{Name: "new_button", Kind: KindXPath, Value: `//a[@title='New'] | //button[@name='New']`},
		Locator{Name: "event_name_input", Kind: KindLabel, Value: "Event Name"},
		Locator{Name: "event_code_input", Kind: KindLabel, Value: "Event Code"},
		Locator{Name: "description_input", Kind: KindLabel, Value: "Description"},
		Locator{Name: "save_button", Kind: KindXPath, Value: `//button[@name='SaveEdit']`},
		Locator{Name: "search_box", Kind: KindPlaceholder, Value: "Search this list..."},
		Locator{Name: "record_link", Kind: KindXPath, Value: `//table//a[@data-refid='recordId']`},
		Locator{Name: "row_action_menu", Kind: KindXPath, Value: `//table//tr[1]//span[contains(@class,'slds-button__icon')]`},
		Locator{Name: "edit_action", Kind: KindXPath, Value: `//a[@role='menuitem']//span[normalize-space(text())='Edit']`},
		Locator{Name: "delete_action", Kind: KindXPath, Value: `//a[@role='menuitem']//span[normalize-space(text())='Delete']`},
		Locator{Name: "confirm_delete", Kind: KindXPath, Value: `//button[@title='Delete']`},
		Locator{Name: "record_title", Kind: KindCSS, Value: "lightning-formatted-text[slot='primaryField']"},
		Locator{Name: "empty_list_message", Kind: KindText, Value: "No items to display."},
	)
}
