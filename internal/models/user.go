package models

// UserType identifies a role-level login within an environment.
type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeStandard UserType = "standard"
)

// UserIdentity is a resolved login for one environment and user type.
type UserIdentity struct {
	Environment string   `json:"environment"`
	UserType    UserType `json:"user_type"`
	Username    string   `json:"username"`
	Password    string   `json:"-"`
}

// Environment describes one named target deployment.
type Environment struct {
	Name     string `toml:"name" json:"name"`
	BaseURL  string `toml:"base_url" json:"base_url"`
	LoginURL string `toml:"login_url" json:"login_url"`
}
