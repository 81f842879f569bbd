package pages

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/locators"
)

// Navigation is the Lightning shell chrome: app launcher and object tabs.
type Navigation struct {
	Page
	baseURL string
}

// NewNavigation creates the navigation page object.
func NewNavigation(session *browser.Session, baseURL, locatorDir string, logger arbor.ILogger) (*Navigation, error) {
	base, err := newPage(session, locators.NavigationPage(), locatorDir, logger)
	if err != nil {
		return nil, err
	}
	return &Navigation{Page: base, baseURL: baseURL}, nil
}

// OpenObject navigates directly to an object's list view. Direct URLs are
// faster and less flaky than driving the app launcher.
func (n *Navigation) OpenObject(objectAPIName string) error {
	url := fmt.Sprintf("%s/lightning/o/%s/list", n.baseURL, objectAPIName)
	if err := n.Navigate(url); err != nil {
		return err
	}
	return n.WaitVisible("page_header", 30*time.Second)
}

// OpenRecord navigates directly to a record's detail view.
func (n *Navigation) OpenRecord(recordID string) error {
	url := fmt.Sprintf("%s/lightning/r/%s/view", n.baseURL, recordID)
	return n.Navigate(url)
}

// ToastMessage waits for a Lightning toast and returns its text. Toasts are
// the only confirmation the UI gives after save and delete.
func (n *Navigation) ToastMessage(timeout time.Duration) (string, error) {
	if err := n.WaitVisible("toast_message", timeout); err != nil {
		return "", err
	}
	return n.Text("toast_message")
}
