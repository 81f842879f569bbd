// Package auth decides whether a cached credential record is still usable and
// re-acquires it through a browser login flow when it is not.
package auth

import (
	"fmt"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/interfaces"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// DefaultMaxAge is the coarse age cap applied to cached records. It guards
// against silent backend session-policy changes independently of the
// individual cookie lifetimes.
const DefaultMaxAge = 24 * time.Hour

// Decision contains the result of evaluating a cached credential record.
type Decision struct {
	// Usable indicates whether the record can back a test session as-is.
	Usable bool
	// Reason provides a human-readable explanation for the decision.
	Reason string
}

// Evaluate applies the expiration policy to a record. All gates are
// conjunctive: the record must be well-formed, within maxAge, and carry no
// expired cookie.
//
// A record saved exactly maxAge ago is still usable; one second older is not.
// A single expired cookie invalidates the whole record, even when the other
// cookies are valid: partial credential sets are treated as broken.
func Evaluate(record *models.CredentialRecord, now time.Time, maxAge time.Duration) Decision {
	if !record.WellFormed() {
		return Decision{Reason: "record has no cookies"}
	}

	if age := record.Age(now); age > maxAge {
		return Decision{Reason: fmt.Sprintf("record aged out: saved %s ago, limit %s", age.Round(time.Second), maxAge)}
	}

	for i := range record.Cookies {
		c := &record.Cookies[i]
		if c.IsExpired(now) {
			return Decision{Reason: fmt.Sprintf(
				"cookie %q expired at %s",
				c.Name,
				time.Unix(c.Expires, 0).UTC().Format(time.RFC3339),
			)}
		}
	}

	return Decision{Usable: true, Reason: "record is fresh"}
}

// IsUsable reports whether the record passes every policy gate.
func IsUsable(record *models.CredentialRecord, now time.Time, maxAge time.Duration) bool {
	return Evaluate(record, now, maxAge).Usable
}

// ShouldRefresh reports whether the environment needs a fresh login: either
// no record exists or the stored one fails the policy. A corrupt record is an
// error, never a silent refresh.
func ShouldRefresh(store interfaces.CredentialStore, environment string, now time.Time, maxAge time.Duration) (bool, error) {
	if !store.Exists(environment) {
		return true, nil
	}

	record, err := store.Load(environment)
	if err != nil {
		return false, err
	}

	return !IsUsable(record, now, maxAge), nil
}
