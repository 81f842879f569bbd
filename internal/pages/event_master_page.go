package pages

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/locators"
)

// EventMasterObject is the API name of the Event Master custom object.
const EventMasterObject = "Event_Master__c"

// EventMasterFields are the values the create/edit form takes.
type EventMasterFields struct {
	Name        string
	Code        string
	Description string
}

// EventMasterPage drives the Event Master list view and record form.
type EventMasterPage struct {
	Page
	nav *Navigation
}

// NewEventMasterPage creates the Event Master page object.
func NewEventMasterPage(session *browser.Session, nav *Navigation, locatorDir string, logger arbor.ILogger) (*EventMasterPage, error) {
	base, err := newPage(session, locators.EventMasterPage(), locatorDir, logger)
	if err != nil {
		return nil, err
	}
	return &EventMasterPage{Page: base, nav: nav}, nil
}

// OpenList navigates to the Event Master list view.
func (p *EventMasterPage) OpenList() error {
	return p.nav.OpenObject(EventMasterObject)
}

// Create opens the new-record form, fills it, and saves. Returns the toast
// text confirming the save.
func (p *EventMasterPage) Create(fields EventMasterFields) (string, error) {
	if err := p.Click("new_button"); err != nil {
		return "", err
	}
	if err := p.fillForm(fields); err != nil {
		return "", err
	}
	if err := p.Click("save_button"); err != nil {
		return "", err
	}
	return p.nav.ToastMessage(15 * time.Second)
}

// Search filters the list view by the given term.
func (p *EventMasterPage) Search(term string) error {
	if err := p.Type("search_box", term); err != nil {
		return err
	}
	if err := p.PressEnter("search_box"); err != nil {
		return err
	}
	// The list re-renders asynchronously after the search request.
	time.Sleep(2 * time.Second)
	return nil
}

// HasResults reports whether the filtered list shows at least one record.
func (p *EventMasterPage) HasResults() bool {
	if p.IsVisible("empty_list_message", 3*time.Second) {
		return false
	}
	return p.IsVisible("record_link", 5*time.Second)
}

// OpenFirstRecord clicks the first record link and returns the record title.
func (p *EventMasterPage) OpenFirstRecord() (string, error) {
	if err := p.Click("record_link"); err != nil {
		return "", err
	}
	return p.Text("record_title")
}

// Edit opens the row action menu of the first row, edits the record, and
// saves. Returns the confirmation toast text.
func (p *EventMasterPage) Edit(fields EventMasterFields) (string, error) {
	if err := p.Click("row_action_menu"); err != nil {
		return "", err
	}
	if err := p.Click("edit_action"); err != nil {
		return "", err
	}
	if err := p.fillForm(fields); err != nil {
		return "", err
	}
	if err := p.Click("save_button"); err != nil {
		return "", err
	}
	return p.nav.ToastMessage(15 * time.Second)
}

// Delete removes the first row through its action menu and confirms the
// dialog. Returns the confirmation toast text.
func (p *EventMasterPage) Delete() (string, error) {
	if err := p.Click("row_action_menu"); err != nil {
		return "", err
	}
	if err := p.Click("delete_action"); err != nil {
		return "", err
	}
	if err := p.Click("confirm_delete"); err != nil {
		return "", err
	}
	return p.nav.ToastMessage(15 * time.Second)
}

func (p *EventMasterPage) fillForm(fields EventMasterFields) error {
	if fields.Name != "" {
		if err := p.Type("event_name_input", fields.Name); err != nil {
			return err
		}
	}
	if fields.Code != "" {
		if err := p.Type("event_code_input", fields.Code); err != nil {
			return err
		}
	}
	if fields.Description != "" {
		if err := p.Type("description_input", fields.Description); err != nil {
			return err
		}
	}
	return nil
}
