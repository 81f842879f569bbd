package auth

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/interfaces"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// DefaultPostLoginSelector is the signal that the Lightning shell finished
// loading after a successful login.
const DefaultPostLoginSelector = `header.slds-global-header_container`

// DefaultLoginTimeout bounds the wait for the post-login signal.
const DefaultLoginTimeout = 90 * time.Second

// Orchestrator coordinates the login flow through a LoginDriver and persists
// the resulting snapshot. A single login attempt per call; retrying is the
// caller's responsibility.
type Orchestrator struct {
	store      interfaces.CredentialStore
	driver     interfaces.LoginDriver
	identities interfaces.IdentitySource
	logger     arbor.ILogger

	lockDir           string
	lockTimeout       time.Duration
	loginTimeout      time.Duration
	postLoginSelector string
	now               func() time.Time
}

// OrchestratorOption configures the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLockDir sets the directory holding per-environment refresh locks.
func WithLockDir(dir string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.lockDir = dir
	}
}

// WithLoginTimeout sets the bound on the post-login signal wait.
func WithLoginTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.loginTimeout = timeout
	}
}

// WithPostLoginSelector overrides the post-login readiness signal.
func WithPostLoginSelector(selector string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.postLoginSelector = selector
	}
}

// WithClock sets the time source. Used by tests.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator creates a refresh orchestrator.
func NewOrchestrator(
	store interfaces.CredentialStore,
	driver interfaces.LoginDriver,
	identities interfaces.IdentitySource,
	logger arbor.ILogger,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		store:             store,
		driver:            driver,
		identities:        identities,
		logger:            logger,
		lockDir:           ".",
		lockTimeout:       2 * time.Minute,
		loginTimeout:      DefaultLoginTimeout,
		postLoginSelector: DefaultPostLoginSelector,
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// EnsureValidCredentials guarantees a usable credential record exists for the
// environment. The fast path (record present and usable) performs no browser
// interaction and no write. On any login failure the previously stored
// record, if any, is left untouched.
func (o *Orchestrator) EnsureValidCredentials(ctx context.Context, environment string, userType models.UserType, maxAge time.Duration) error {
	refresh, err := ShouldRefresh(o.store, environment, o.now(), maxAge)
	if err != nil {
		return err
	}
	if !refresh {
		o.logger.Debug().
			Str("environment", environment).
			Msg("Cached credentials are usable, skipping login")
		return nil
	}

	// Identity and environment resolution happens before any browser
	// interaction so configuration failures surface fast.
	identity, err := o.identities.Resolve(environment, userType)
	if err != nil {
		return err
	}
	env, err := o.identities.Environment(environment)
	if err != nil {
		return err
	}

	release, err := acquireLock(o.lockDir, environment, o.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	// Re-check after taking the lock: another worker may have refreshed the
	// record while this one waited.
	refresh, err = ShouldRefresh(o.store, environment, o.now(), maxAge)
	if err != nil {
		return err
	}
	if !refresh {
		o.logger.Debug().
			Str("environment", environment).
			Msg("Credentials refreshed by another worker while waiting for lock")
		return nil
	}

	o.logger.Info().
		Str("environment", environment).
		Str("user", identity.Username).
		Msg("Refreshing credentials via browser login")

	state, err := o.login(ctx, env, identity)
	if err != nil {
		return &RefreshFailedError{Environment: environment, Err: err}
	}

	record := &models.CredentialRecord{
		Environment:  environment,
		SavedAt:      o.now().UnixMilli(),
		StorageState: *state,
	}
	if err := o.store.Save(environment, record); err != nil {
		return &RefreshFailedError{Environment: environment, Err: err}
	}

	o.logger.Info().
		Str("environment", environment).
		Int("cookies", len(record.Cookies)).
		Msg("Credentials refreshed")

	return nil
}

func (o *Orchestrator) login(ctx context.Context, env *models.Environment, identity *models.UserIdentity) (*models.StorageState, error) {
	if err := o.driver.Navigate(ctx, env.LoginURL); err != nil {
		return nil, err
	}
	if err := o.driver.SubmitCredentials(ctx, identity); err != nil {
		return nil, err
	}
	if err := o.driver.WaitForSignal(ctx, o.postLoginSelector, o.loginTimeout); err != nil {
		return nil, err
	}

	state, err := o.driver.ExportStorageSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil || len(state.Cookies) == 0 {
		return nil, errors.New("login flow produced an empty cookie snapshot")
	}

	return state, nil
}
