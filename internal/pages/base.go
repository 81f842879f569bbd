// Package pages holds the page objects for the Lightning UI. Each page wraps
// one locator table and exposes the interactions the flows need, nothing more.
package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/locators"
)

// Page is the shared base for all page objects.
type Page struct {
	session *browser.Session
	table   *locators.Table
	logger  arbor.ILogger
}

func newPage(session *browser.Session, table *locators.Table, locatorDir string, logger arbor.ILogger) (Page, error) {
	if err := table.ApplyOverrides(locatorDir); err != nil {
		return Page{}, err
	}
	return Page{session: session, table: table, logger: logger}, nil
}

// Navigate opens a URL and waits for the body to render.
func (p *Page) Navigate(url string) error {
	p.logger.Debug().Str("url", url).Msg("Navigating")
	if err := chromedp.Run(p.session.Context(),
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Click waits for the named element and clicks it.
func (p *Page) Click(name string) error {
	n, err := p.table.Resolve(name)
	if err != nil {
		return err
	}
	if err := chromedp.Run(p.session.Context(),
		chromedp.WaitVisible(n.Selector, n.Option),
		chromedp.Click(n.Selector, n.Option),
	); err != nil {
		return fmt.Errorf("failed to click %s/%s: %w", p.table.Page, name, err)
	}
	return nil
}

// Type clears the named input and types a value into it.
func (p *Page) Type(name, value string) error {
	n, err := p.table.Resolve(name)
	if err != nil {
		return err
	}
	if err := chromedp.Run(p.session.Context(),
		chromedp.WaitVisible(n.Selector, n.Option),
		chromedp.Clear(n.Selector, n.Option),
		chromedp.SendKeys(n.Selector, value, n.Option),
	); err != nil {
		return fmt.Errorf("failed to type into %s/%s: %w", p.table.Page, name, err)
	}
	return nil
}

// Text returns the trimmed text content of the named element.
func (p *Page) Text(name string) (string, error) {
	n, err := p.table.Resolve(name)
	if err != nil {
		return "", err
	}
	var text string
	if err := chromedp.Run(p.session.Context(),
		chromedp.WaitVisible(n.Selector, n.Option),
		chromedp.Text(n.Selector, &text, n.Option),
	); err != nil {
		return "", fmt.Errorf("failed to read %s/%s: %w", p.table.Page, name, err)
	}
	return strings.TrimSpace(text), nil
}

// WaitVisible waits for the named element within the timeout.
func (p *Page) WaitVisible(name string, timeout time.Duration) error {
	n, err := p.table.Resolve(name)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(p.session.Context(), timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitVisible(n.Selector, n.Option)); err != nil {
		return fmt.Errorf("%s/%s not visible within %s: %w", p.table.Page, name, timeout, err)
	}
	return nil
}

// IsVisible reports whether the named element appears within the timeout.
func (p *Page) IsVisible(name string, timeout time.Duration) bool {
	return p.WaitVisible(name, timeout) == nil
}

// PressEnter sends the Enter key to the named element.
func (p *Page) PressEnter(name string) error {
	n, err := p.table.Resolve(name)
	if err != nil {
		return err
	}
	if err := chromedp.Run(p.session.Context(),
		chromedp.SendKeys(n.Selector, "\r", n.Option),
	); err != nil {
		return fmt.Errorf("failed to press enter in %s/%s: %w", p.table.Page, name, err)
	}
	return nil
}
