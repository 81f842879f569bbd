package models

import "time"

// Cookie represents a single browser cookie captured from an authenticated
// session. Expires is epoch seconds; zero or negative means a session cookie
// that never expires by policy.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expires  int64  `json:"expires"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	SameSite string `json:"sameSite,omitempty"`
}

// IsExpired reports whether the cookie has a positive expiry that is already
// in the past. Session cookies (Expires <= 0) never expire.
func (c *Cookie) IsExpired(now time.Time) bool {
	return c.Expires > 0 && c.Expires < now.Unix()
}

// LocalStorageEntry is a single key/value pair from an origin's localStorage.
type LocalStorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Origin groups localStorage entries captured for one origin.
type Origin struct {
	Origin       string              `json:"origin"`
	LocalStorage []LocalStorageEntry `json:"localStorage"`
}

// StorageState is the serialized cookie + localStorage snapshot representing
// an authenticated browser session.
type StorageState struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// CredentialRecord wraps a StorageState with the environment it was captured
// for and the wall-clock time it was written. SavedAt is stored explicitly in
// the record (epoch milliseconds) rather than derived from file mtime.
type CredentialRecord struct {
	Environment string `json:"environment,omitempty"`
	SavedAt     int64  `json:"savedAt"`
	StorageState
}

// WellFormed reports whether the record carries at least one cookie. A record
// without cookies can never represent a usable session.
func (r *CredentialRecord) WellFormed() bool {
	return r != nil && len(r.Cookies) > 0
}

// Age returns how long ago the record was saved.
func (r *CredentialRecord) Age(now time.Time) time.Duration {
	saved := time.UnixMilli(r.SavedAt)
	return now.Sub(saved)
}
