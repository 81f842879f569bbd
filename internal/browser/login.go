package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/interfaces"
	"github.com/tongthuyhang/manabie-auto-testing/internal/locators"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// Driver is the chromedp-backed login driver. One Driver serves one refresh
// flow; it does not own the session, the caller does.
type Driver struct {
	session *Session
	table   *locators.Table
	logger  arbor.ILogger
}

var _ interfaces.LoginDriver = (*Driver)(nil)

// NewDriver creates a login driver over an existing session. locatorDir may
// point at YAML overrides for the login page table.
func NewDriver(session *Session, locatorDir string, logger arbor.ILogger) (*Driver, error) {
	table := locators.LoginPage()
	if err := table.ApplyOverrides(locatorDir); err != nil {
		return nil, err
	}
	return &Driver{session: session, table: table, logger: logger}, nil
}

// Navigate opens the login URL.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug().Str("url", url).Msg("Navigating to login page")

	username, err := d.table.Resolve("username")
	if err != nil {
		return err
	}

	if err := chromedp.Run(d.session.Context(),
		chromedp.Navigate(url),
		chromedp.WaitVisible(username.Selector, username.Option),
	); err != nil {
		return fmt.Errorf("failed to open login page %s: %w", url, err)
	}
	return nil
}

// SubmitCredentials fills the login form and submits it. A visible login
// error banner after submission is reported as an error.
func (d *Driver) SubmitCredentials(ctx context.Context, identity *models.UserIdentity) error {
	username, err := d.table.Resolve("username")
	if err != nil {
		return err
	}
	password, err := d.table.Resolve("password")
	if err != nil {
		return err
	}
	button, err := d.table.Resolve("login_button")
	if err != nil {
		return err
	}

	d.logger.Debug().Str("user", identity.Username).Msg("Submitting login form")

	if err := chromedp.Run(d.session.Context(),
		chromedp.SendKeys(username.Selector, identity.Username, username.Option),
		chromedp.SendKeys(password.Selector, identity.Password, password.Option),
		chromedp.Click(button.Selector, button.Option),
	); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}

	if reason := d.loginError(); reason != "" {
		return fmt.Errorf("login rejected: %s", reason)
	}

	return nil
}

// loginError returns the text of the login error banner when one is shown.
// Salesforce keeps the banner on the login host, so a present banner means
// the credentials were rejected without navigation.
func (d *Driver) loginError() string {
	banner, err := d.table.Resolve("error_banner")
	if err != nil {
		return ""
	}

	checkCtx, cancel := context.WithTimeout(d.session.Context(), 3*time.Second)
	defer cancel()

	var text string
	if err := chromedp.Run(checkCtx,
		chromedp.Text(banner.Selector, &text, banner.Option),
	); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// WaitForSignal waits for the post-login readiness selector.
func (d *Driver) WaitForSignal(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(d.session.Context(), timeout)
	defer cancel()

	if err := chromedp.Run(waitCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
	); err != nil {
		if reason := d.loginError(); reason != "" {
			return fmt.Errorf("login rejected: %s", reason)
		}
		return fmt.Errorf("post-login signal %q not seen within %s: %w", selector, timeout, err)
	}

	d.logger.Debug().Str("selector", selector).Msg("Post-login signal observed")
	return nil
}
