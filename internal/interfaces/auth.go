package interfaces

import (
	"context"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// CredentialStore persists one CredentialRecord per environment.
type CredentialStore interface {
	// Load reads the record for the environment. Returns ErrNotFound when no
	// record exists and a *CorruptRecordError (from the implementing package)
	// when the persisted payload cannot be parsed.
	Load(environment string) (*models.CredentialRecord, error)

	// Save replaces the record for the environment wholesale. The write must
	// be atomic with respect to concurrent Load calls.
	Save(environment string, record *models.CredentialRecord) error

	// Exists reports whether a record is present for the environment.
	Exists(environment string) bool
}

// LoginDriver is the browser-automation collaborator used by the refresh
// orchestrator. Implementations own the browser session lifecycle.
type LoginDriver interface {
	Navigate(ctx context.Context, url string) error
	SubmitCredentials(ctx context.Context, identity *models.UserIdentity) error
	WaitForSignal(ctx context.Context, selector string, timeout time.Duration) error
	ExportStorageSnapshot(ctx context.Context) (*models.StorageState, error)
}

// IdentitySource resolves an environment name and user type into a login.
type IdentitySource interface {
	Resolve(environment string, userType models.UserType) (*models.UserIdentity, error)
	Environment(name string) (*models.Environment, error)
}
