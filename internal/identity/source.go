// Package identity resolves configured logins into credentials at refresh
// time. Passwords come from environment variables only.
package identity

import (
	"fmt"
	"os"

	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/interfaces"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// UnknownUserError indicates no login is configured for the requested
// environment and user type.
type UnknownUserError struct {
	Environment string
	UserType    models.UserType
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("no user configured for environment %q with type %q", e.Environment, e.UserType)
}

// UnknownEnvironmentError indicates the environment name is not defined.
type UnknownEnvironmentError struct {
	Name string
}

func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("environment %q is not defined in configuration", e.Name)
}

// ConfigSource resolves identities from the loaded suite configuration.
type ConfigSource struct {
	environments []models.Environment
	users        []common.UserConfig
}

var _ interfaces.IdentitySource = (*ConfigSource)(nil)

// NewConfigSource creates an identity source backed by the configuration.
func NewConfigSource(config *common.Config) *ConfigSource {
	return &ConfigSource{
		environments: config.Environments,
		users:        config.Users,
	}
}

// Resolve finds the configured login for (environment, userType) and reads
// its password from the named environment variable.
func (s *ConfigSource) Resolve(environment string, userType models.UserType) (*models.UserIdentity, error) {
	for i := range s.users {
		u := &s.users[i]
		if u.Environment != environment || models.UserType(u.UserType) != userType {
			continue
		}

		password := os.Getenv(u.PasswordEnv)
		if password == "" {
			return nil, fmt.Errorf("password variable %s is not set for user %s", u.PasswordEnv, u.Username)
		}

		return &models.UserIdentity{
			Environment: environment,
			UserType:    userType,
			Username:    u.Username,
			Password:    password,
		}, nil
	}

	return nil, &UnknownUserError{Environment: environment, UserType: userType}
}

// Environment looks up a named environment definition.
func (s *ConfigSource) Environment(name string) (*models.Environment, error) {
	for i := range s.environments {
		if s.environments[i].Name == name {
			return &s.environments[i], nil
		}
	}
	return nil, &UnknownEnvironmentError{Name: name}
}
