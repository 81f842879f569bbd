package ui

import (
	"context"
	"testing"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/auth"
	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/identity"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
	"github.com/tongthuyhang/manabie-auto-testing/internal/pages"
	"github.com/tongthuyhang/manabie-auto-testing/internal/storage/statefile"
)

// TestCredentialRefresh forces a fresh login and verifies the stored record is
// usable. This is the one test that always drives the full login flow.
func TestCredentialRefresh(t *testing.T) {
	requireUITests(t)

	env, err := SetupTestEnvironment(t.Name())
	if err != nil {
		t.Fatalf("Failed to setup test environment: %v", err)
	}
	defer env.Cleanup()

	config := env.Config
	logger := common.GetLogger()
	store := statefile.NewStore(config.Auth.StorageDir, logger)

	ctx, cancel := context.WithTimeout(context.Background(), config.Auth.LoginTimeout()+time.Minute)
	defer cancel()

	session, err := browser.NewSession(ctx, browser.SessionOptions{
		Headless: config.Auth.Headless,
		Timeout:  config.Auth.LoginTimeout() + time.Minute,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to start browser: %v", err)
	}
	defer session.Close()

	driver, err := browser.NewDriver(session, config.Locators.Dir, logger)
	if err != nil {
		t.Fatalf("Failed to build login driver: %v", err)
	}

	orchestrator := auth.NewOrchestrator(store, driver, identity.NewConfigSource(config), logger,
		auth.WithLockDir(config.Auth.StorageDir),
		auth.WithLoginTimeout(config.Auth.LoginTimeout()),
	)

	// Zero age cap marks any existing record stale, forcing the login path.
	if err := orchestrator.EnsureValidCredentials(ctx, config.Environment, models.UserType(config.Auth.UserType), 0); err != nil {
		t.Fatalf("Credential refresh failed: %v", err)
	}

	record, err := store.Load(config.Environment)
	if err != nil {
		t.Fatalf("Refreshed record unreadable: %v", err)
	}
	if !record.WellFormed() {
		t.Fatal("Refreshed record carries no cookies")
	}

	decision := auth.Evaluate(record, time.Now(), config.Auth.MaxAge())
	if !decision.Usable {
		t.Fatalf("Refreshed record is not usable: %s", decision.Reason)
	}
	env.LogTest(t, "Refreshed record: %d cookies, %d origins", len(record.Cookies), len(record.Origins))
}

// TestSeededSessionReachesShell verifies the cached record alone is enough to
// reach the Lightning shell without a login form round trip.
func TestSeededSessionReachesShell(t *testing.T) {
	utc := NewUITestContext(t, 3*time.Minute)
	defer utc.Cleanup()

	target, err := utc.Env.Config.ActiveEnvironment()
	if err != nil {
		t.Fatalf("Failed to resolve environment: %v", err)
	}

	page, err := pages.NewLoginPage(utc.Session, utc.Env.Config.Locators.Dir, common.GetLogger())
	if err != nil {
		t.Fatalf("Failed to build login page object: %v", err)
	}

	utc.Log("Navigating to %s with seeded session", target.BaseURL)
	if err := page.Navigate(target.BaseURL); err != nil {
		t.Fatalf("Navigation failed: %v", err)
	}
	if err := page.WaitForShell(90 * time.Second); err != nil {
		utc.Screenshot("shell_not_reached")
		t.Fatalf("Lightning shell did not appear: %v", err)
	}
	utc.Screenshot("shell_reached")
}
