package identity

import (
	"errors"
	"testing"

	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

func testConfig() *common.Config {
	config := common.NewDefaultConfig()
	config.Environments = []models.Environment{
		{Name: "staging", BaseURL: "https://staging.lightning.force.com", LoginURL: "https://test.salesforce.com"},
		{Name: "uat", BaseURL: "https://uat.lightning.force.com", LoginURL: "https://test.salesforce.com"},
	}
	config.Users = []common.UserConfig{
		{Environment: "staging", UserType: "admin", Username: "qa.admin@example.com", PasswordEnv: "TEST_STAGING_ADMIN_PW"},
		{Environment: "staging", UserType: "standard", Username: "qa.user@example.com", PasswordEnv: "TEST_STAGING_USER_PW"},
		{Environment: "uat", UserType: "admin", Username: "uat.admin@example.com", PasswordEnv: "TEST_UAT_ADMIN_PW"},
	}
	return config
}

func TestResolve(t *testing.T) {
	t.Setenv("TEST_STAGING_ADMIN_PW", "hunter2")
	source := NewConfigSource(testConfig())

	identity, err := source.Resolve("staging", models.UserTypeAdmin)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if identity.Username != "qa.admin@example.com" {
		t.Errorf("Username = %q", identity.Username)
	}
	if identity.Password != "hunter2" {
		t.Errorf("password was not read from the named variable")
	}
	if identity.Environment != "staging" || identity.UserType != models.UserTypeAdmin {
		t.Errorf("identity scope = %s/%s", identity.Environment, identity.UserType)
	}
}

func TestResolve_UnknownUser(t *testing.T) {
	source := NewConfigSource(testConfig())

	_, err := source.Resolve("uat", models.UserTypeStandard)
	var unknown *UnknownUserError
	if !errors.As(err, &unknown) {
		t.Fatalf("Resolve() error = %v, want *UnknownUserError", err)
	}
	if unknown.Environment != "uat" || unknown.UserType != models.UserTypeStandard {
		t.Errorf("error scope = %s/%s", unknown.Environment, unknown.UserType)
	}
}

func TestResolve_MissingPasswordVariable(t *testing.T) {
	t.Setenv("TEST_STAGING_USER_PW", "")
	source := NewConfigSource(testConfig())

	_, err := source.Resolve("staging", models.UserTypeStandard)
	if err == nil {
		t.Fatal("Resolve() error = nil, want missing-password failure")
	}
	var unknown *UnknownUserError
	if errors.As(err, &unknown) {
		t.Error("missing password must not report as an unknown user")
	}
}

func TestEnvironment(t *testing.T) {
	source := NewConfigSource(testConfig())

	env, err := source.Environment("uat")
	if err != nil {
		t.Fatalf("Environment() error = %v", err)
	}
	if env.BaseURL != "https://uat.lightning.force.com" {
		t.Errorf("BaseURL = %q", env.BaseURL)
	}

	_, err = source.Environment("production")
	var unknown *UnknownEnvironmentError
	if !errors.As(err, &unknown) {
		t.Fatalf("Environment() error = %v, want *UnknownEnvironmentError", err)
	}
}
