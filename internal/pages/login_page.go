package pages

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/locators"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// LoginPage is the Salesforce login form.
type LoginPage struct {
	Page
}

// NewLoginPage creates the login page object.
func NewLoginPage(session *browser.Session, locatorDir string, logger arbor.ILogger) (*LoginPage, error) {
	base, err := newPage(session, locators.LoginPage(), locatorDir, logger)
	if err != nil {
		return nil, err
	}
	return &LoginPage{Page: base}, nil
}

// Login navigates to the login URL and submits the identity.
func (p *LoginPage) Login(loginURL string, identity *models.UserIdentity) error {
	if err := p.Navigate(loginURL); err != nil {
		return err
	}
	if err := p.Type("username", identity.Username); err != nil {
		return err
	}
	if err := p.Type("password", identity.Password); err != nil {
		return err
	}
	return p.Click("login_button")
}

// WaitForShell waits for the Lightning global header after login.
func (p *LoginPage) WaitForShell(timeout time.Duration) error {
	return p.WaitVisible("global_header", timeout)
}

// ErrorBanner returns the login error text, or empty when none is shown.
func (p *LoginPage) ErrorBanner() string {
	if !p.IsVisible("error_banner", 2*time.Second) {
		return ""
	}
	text, err := p.Text("error_banner")
	if err != nil {
		return ""
	}
	return text
}
