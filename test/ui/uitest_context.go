// uitest_context.go - Shared UI test context and helpers for the Salesforce
// suite. This provides UITestContext used by all UI tests.
// NOTE: This is NOT a test file - it contains shared test infrastructure.

package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/tongthuyhang/manabie-auto-testing/internal/auth"
	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/facade"
	"github.com/tongthuyhang/manabie-auto-testing/internal/identity"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
	"github.com/tongthuyhang/manabie-auto-testing/internal/report"
	"github.com/tongthuyhang/manabie-auto-testing/internal/storage/statefile"
)

// MaxCRUDTestTimeout bounds one full CRUD test including the Lightning page
// loads.
const MaxCRUDTestTimeout = 5 * time.Minute

// UITestContext holds shared state for UI tests. Each test gets its own
// browser seeded from the cached credential record.
type UITestContext struct {
	T       *testing.T
	Env     *TestEnvironment
	Session *browser.Session
	Events  *facade.EventMasterFacade
	BaseURL string

	cleanup       []func()
	screenshotNum int
}

// NewUITestContext creates a browser for the test, seeded from the cached
// credential record. The record is refreshed first when missing, stale, or
// carrying an expired cookie.
func NewUITestContext(t *testing.T, timeout time.Duration) *UITestContext {
	requireUITests(t)

	env, err := SetupTestEnvironment(t.Name())
	if err != nil {
		t.Fatalf("Failed to setup test environment: %v", err)
	}

	logger := common.GetLogger()
	config := env.Config

	target, err := config.ActiveEnvironment()
	if err != nil {
		env.Cleanup()
		t.Fatalf("Failed to resolve environment: %v", err)
	}

	record, err := ensureCredentialRecord(config)
	if err != nil {
		env.Cleanup()
		t.Fatalf("Failed to obtain usable credentials: %v", err)
	}

	ctx, cancelTimeout := context.WithTimeout(context.Background(), timeout)

	session, err := browser.NewSession(ctx, browser.SessionOptions{
		Headless: config.Auth.Headless,
		Timeout:  timeout,
	}, logger)
	if err != nil {
		cancelTimeout()
		env.Cleanup()
		t.Fatalf("Failed to start browser: %v", err)
	}

	if err := browser.SeedStorageState(session, &record.StorageState); err != nil {
		session.Close()
		cancelTimeout()
		env.Cleanup()
		t.Fatalf("Failed to seed storage state: %v", err)
	}

	events, err := facade.NewEventMasterFacade(session, target.BaseURL, config.Locators.Dir, logger)
	if err != nil {
		session.Close()
		cancelTimeout()
		env.Cleanup()
		t.Fatalf("Failed to build Event Master facade: %v", err)
	}

	utc := &UITestContext{
		T:       t,
		Env:     env,
		Session: session,
		Events:  events,
		BaseURL: target.BaseURL,
		cleanup: make([]func(), 0),
	}

	utc.cleanup = append(utc.cleanup, func() { env.Cleanup() })
	utc.cleanup = append(utc.cleanup, func() { cancelTimeout() })
	utc.cleanup = append(utc.cleanup, func() { session.Close() })

	return utc
}

// ensureCredentialRecord refreshes the cached record if needed and loads it.
// The usable-record path stays browser-free.
func ensureCredentialRecord(config *common.Config) (*models.CredentialRecord, error) {
	log := common.GetLogger()
	store := statefile.NewStore(config.Auth.StorageDir, log)

	refresh, err := auth.ShouldRefresh(store, config.Environment, time.Now(), config.Auth.MaxAge())
	if err != nil {
		return nil, err
	}

	if refresh {
		ctx, cancel := context.WithTimeout(context.Background(), config.Auth.LoginTimeout()+time.Minute)
		defer cancel()

		session, err := browser.NewSession(ctx, browser.SessionOptions{
			Headless: config.Auth.Headless,
			Timeout:  config.Auth.LoginTimeout() + time.Minute,
		}, log)
		if err != nil {
			return nil, err
		}
		defer session.Close()

		driver, err := browser.NewDriver(session, config.Locators.Dir, log)
		if err != nil {
			return nil, err
		}

		orchestrator := auth.NewOrchestrator(store, driver, identity.NewConfigSource(config), log,
			auth.WithLockDir(config.Auth.StorageDir),
			auth.WithLoginTimeout(config.Auth.LoginTimeout()),
		)
		if err := orchestrator.EnsureValidCredentials(ctx, config.Environment, models.UserType(config.Auth.UserType), config.Auth.MaxAge()); err != nil {
			return nil, err
		}
	}

	return store.Load(config.Environment)
}

// Cleanup releases all resources. Call this with defer.
func (utc *UITestContext) Cleanup() {
	if utc.T.Failed() {
		utc.Log("=== TEST RESULT: FAIL ===")
		utc.CaptureFailure(sanitizeName(utc.T.Name()))
	} else {
		utc.Log("=== TEST RESULT: PASS ===")
	}

	for i := len(utc.cleanup) - 1; i >= 0; i-- {
		utc.cleanup[i]()
	}
}

// Log writes a message to the test log.
func (utc *UITestContext) Log(format string, args ...interface{}) {
	utc.Env.LogTest(utc.T, format, args...)
}

// Screenshot takes a screenshot with a sequential number prefix.
func (utc *UITestContext) Screenshot(name string) error {
	utc.screenshotNum++
	fullName := fmt.Sprintf("%02d_%s.png", utc.screenshotNum, name)
	path := filepath.Join(utc.Env.ResultsDir, "screenshots", fullName)

	var buf []byte
	if err := chromedp.Run(utc.Session.Context(), chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}
	return nil
}

// CaptureFailure saves a screenshot, the page HTML, and a markdown rendering
// of the page with any visible Lightning errors pulled to the top.
func (utc *UITestContext) CaptureFailure(name string) {
	var screenshot []byte
	var html, url string
	if err := chromedp.Run(utc.Session.Context(),
		chromedp.CaptureScreenshot(&screenshot),
		chromedp.OuterHTML("html", &html),
		chromedp.Location(&url),
	); err != nil {
		utc.Log("Failed to capture failure state: %v", err)
		return
	}

	paths, err := report.SaveFailureArtifacts(utc.Env.ResultsDir, name, report.FailureCapture{
		Screenshot: screenshot,
		HTML:       html,
		URL:        url,
	})
	if err != nil {
		utc.Log("Failed to save failure artifacts: %v", err)
		return
	}
	for _, p := range paths {
		utc.Log("Saved failure artifact: %s", p)
	}
}

// Context returns the browser context for direct chromedp calls.
func (utc *UITestContext) Context() context.Context {
	return utc.Session.Context()
}

// uniqueEventName builds a test-run-scoped record name so concurrent runs
// against the same org never collide.
func uniqueEventName(prefix string) string {
	return fmt.Sprintf("%s %s", prefix, time.Now().Format("20060102-150405"))
}

// sanitizeName converts a name to a safe filename format
func sanitizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "/", "_")
}
