package auth

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
	"github.com/tongthuyhang/manabie-auto-testing/internal/storage/statefile"
)

// fakeDriver records the login calls made against it and returns a canned
// snapshot or error.
type fakeDriver struct {
	navigateCalls int
	submitCalls   int
	waitCalls     int
	exportCalls   int

	lastURL      string
	lastIdentity *models.UserIdentity
	lastSelector string

	submitErr error
	waitErr   error
	snapshot  *models.StorageState
	exportErr error
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.navigateCalls++
	d.lastURL = url
	return nil
}

func (d *fakeDriver) SubmitCredentials(_ context.Context, identity *models.UserIdentity) error {
	d.submitCalls++
	d.lastIdentity = identity
	return d.submitErr
}

func (d *fakeDriver) WaitForSignal(_ context.Context, selector string, _ time.Duration) error {
	d.waitCalls++
	d.lastSelector = selector
	return d.waitErr
}

func (d *fakeDriver) ExportStorageSnapshot(_ context.Context) (*models.StorageState, error) {
	d.exportCalls++
	return d.snapshot, d.exportErr
}

// fakeIdentities resolves a single configured login.
type fakeIdentities struct {
	identity *models.UserIdentity
	env      *models.Environment
	err      error
}

func (f *fakeIdentities) Resolve(string, models.UserType) (*models.UserIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func (f *fakeIdentities) Environment(string) (*models.Environment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.env, nil
}

func validSnapshot() *models.StorageState {
	return &models.StorageState{
		Cookies: []models.Cookie{
			{Name: "sid", Value: "fresh", Domain: ".salesforce.com", Path: "/", Expires: -1},
		},
		Origins: []models.Origin{},
	}
}

func testIdentities() *fakeIdentities {
	return &fakeIdentities{
		identity: &models.UserIdentity{
			Environment: "staging",
			UserType:    models.UserTypeAdmin,
			Username:    "qa.admin@example.com",
			Password:    "hunter2",
		},
		env: &models.Environment{
			Name:     "staging",
			BaseURL:  "https://example.lightning.force.com",
			LoginURL: "https://test.salesforce.com",
		},
	}
}

func newTestOrchestrator(t *testing.T, store *statefile.Store, driver *fakeDriver, identities *fakeIdentities, now time.Time) *Orchestrator {
	t.Helper()
	return NewOrchestrator(store, driver, identities, common.GetLogger(),
		WithLockDir(t.TempDir()),
		WithClock(func() time.Time { return now }),
	)
}

func TestEnsureValidCredentials_FastPath(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := statefile.NewStore(t.TempDir(), nil)

	fresh := &models.CredentialRecord{
		Environment:  "staging",
		SavedAt:      now.Add(-time.Hour).UnixMilli(),
		StorageState: *validSnapshot(),
	}
	if err := store.Save("staging", fresh); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	driver := &fakeDriver{snapshot: validSnapshot()}
	o := newTestOrchestrator(t, store, driver, testIdentities(), now)

	if err := o.EnsureValidCredentials(context.Background(), "staging", models.UserTypeAdmin, DefaultMaxAge); err != nil {
		t.Fatalf("EnsureValidCredentials() error = %v", err)
	}

	if driver.navigateCalls != 0 || driver.submitCalls != 0 || driver.exportCalls != 0 {
		t.Errorf("fast path touched the browser: %+v", driver)
	}

	loaded, err := store.Load("staging")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.SavedAt != fresh.SavedAt {
		t.Error("fast path rewrote the stored record")
	}
}

func TestEnsureValidCredentials_RefreshesMissingRecord(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := statefile.NewStore(t.TempDir(), nil)
	driver := &fakeDriver{snapshot: validSnapshot()}
	o := newTestOrchestrator(t, store, driver, testIdentities(), now)

	if err := o.EnsureValidCredentials(context.Background(), "staging", models.UserTypeAdmin, DefaultMaxAge); err != nil {
		t.Fatalf("EnsureValidCredentials() error = %v", err)
	}

	if driver.navigateCalls != 1 || driver.submitCalls != 1 || driver.waitCalls != 1 || driver.exportCalls != 1 {
		t.Errorf("expected exactly one login pass, got %+v", driver)
	}
	if driver.lastURL != "https://test.salesforce.com" {
		t.Errorf("navigated to %q, want the login URL", driver.lastURL)
	}
	if driver.lastIdentity == nil || driver.lastIdentity.Username != "qa.admin@example.com" {
		t.Errorf("submitted identity = %+v", driver.lastIdentity)
	}
	if driver.lastSelector != DefaultPostLoginSelector {
		t.Errorf("waited on %q, want %q", driver.lastSelector, DefaultPostLoginSelector)
	}

	loaded, err := store.Load("staging")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.SavedAt != now.UnixMilli() {
		t.Errorf("SavedAt = %d, want the refresh time %d", loaded.SavedAt, now.UnixMilli())
	}
	if len(loaded.Cookies) != 1 || loaded.Cookies[0].Value != "fresh" {
		t.Errorf("stored cookies = %+v", loaded.Cookies)
	}
}

func TestEnsureValidCredentials_ReplacesStaleRecordWholesale(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := statefile.NewStore(t.TempDir(), nil)

	stale := &models.CredentialRecord{
		Environment: "staging",
		SavedAt:     now.Add(-48 * time.Hour).UnixMilli(),
		StorageState: models.StorageState{
			Cookies: []models.Cookie{
				{Name: "sid", Value: "stale"},
				{Name: "leftover", Value: "x"},
			},
		},
	}
	if err := store.Save("staging", stale); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	driver := &fakeDriver{snapshot: validSnapshot()}
	o := newTestOrchestrator(t, store, driver, testIdentities(), now)

	if err := o.EnsureValidCredentials(context.Background(), "staging", models.UserTypeAdmin, DefaultMaxAge); err != nil {
		t.Fatalf("EnsureValidCredentials() error = %v", err)
	}

	loaded, err := store.Load("staging")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Cookies) != 1 || loaded.Cookies[0].Value != "fresh" {
		t.Errorf("stale cookies survived the refresh: %+v", loaded.Cookies)
	}
}

func TestEnsureValidCredentials_FailedLoginPreservesPriorRecord(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := statefile.NewStore(t.TempDir(), nil)

	stale := &models.CredentialRecord{
		Environment: "staging",
		SavedAt:     now.Add(-48 * time.Hour).UnixMilli(),
		StorageState: models.StorageState{
			Cookies: []models.Cookie{{Name: "sid", Value: "stale"}},
		},
	}
	if err := store.Save("staging", stale); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	driver := &fakeDriver{waitErr: errors.New("post-login element never appeared")}
	o := newTestOrchestrator(t, store, driver, testIdentities(), now)

	err := o.EnsureValidCredentials(context.Background(), "staging", models.UserTypeAdmin, DefaultMaxAge)
	var refreshErr *RefreshFailedError
	if !errors.As(err, &refreshErr) {
		t.Fatalf("EnsureValidCredentials() error = %v, want *RefreshFailedError", err)
	}
	if refreshErr.Environment != "staging" {
		t.Errorf("RefreshFailedError.Environment = %q", refreshErr.Environment)
	}

	loaded, err := store.Load("staging")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.SavedAt != stale.SavedAt || loaded.Cookies[0].Value != "stale" {
		t.Error("failed refresh modified the stored record")
	}
}

func TestEnsureValidCredentials_EmptySnapshotFails(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := statefile.NewStore(t.TempDir(), nil)
	driver := &fakeDriver{snapshot: &models.StorageState{Cookies: []models.Cookie{}}}
	o := newTestOrchestrator(t, store, driver, testIdentities(), now)

	err := o.EnsureValidCredentials(context.Background(), "staging", models.UserTypeAdmin, DefaultMaxAge)
	var refreshErr *RefreshFailedError
	if !errors.As(err, &refreshErr) {
		t.Fatalf("EnsureValidCredentials() error = %v, want *RefreshFailedError", err)
	}

	if store.Exists("staging") {
		t.Error("failed refresh wrote a record")
	}
}

func TestEnsureValidCredentials_UnknownUserBeforeBrowser(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := statefile.NewStore(t.TempDir(), nil)
	driver := &fakeDriver{snapshot: validSnapshot()}
	identities := &fakeIdentities{err: errors.New("no such user configured")}
	o := newTestOrchestrator(t, store, driver, identities, now)

	err := o.EnsureValidCredentials(context.Background(), "staging", models.UserTypeAdmin, DefaultMaxAge)
	if err == nil {
		t.Fatal("EnsureValidCredentials() error = nil, want identity resolution failure")
	}
	var refreshErr *RefreshFailedError
	if errors.As(err, &refreshErr) {
		t.Error("identity failure should not be wrapped as a refresh failure")
	}
	if driver.navigateCalls != 0 {
		t.Error("browser launched before the identity resolved")
	}
}

func TestEnsureValidCredentials_CorruptRecordPropagates(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	store := statefile.NewStore(dir, nil)
	if err := os.WriteFile(store.Path("staging"), []byte(`{"cookies": [`), 0644); err != nil {
		t.Fatalf("failed to write corrupt payload: %v", err)
	}

	driver := &fakeDriver{snapshot: validSnapshot()}
	o := newTestOrchestrator(t, store, driver, testIdentities(), now)

	err := o.EnsureValidCredentials(context.Background(), "staging", models.UserTypeAdmin, DefaultMaxAge)
	var corrupt *statefile.CorruptRecordError
	if !errors.As(err, &corrupt) {
		t.Fatalf("EnsureValidCredentials() error = %v, want *CorruptRecordError", err)
	}
	if driver.navigateCalls != 0 {
		t.Error("corrupt record must not trigger a silent re-login")
	}
}
