package auth

import "fmt"

// RefreshFailedError indicates the login flow could not produce a usable
// snapshot. The previously stored record, if any, is left untouched.
type RefreshFailedError struct {
	Environment string
	Err         error
}

func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("credential refresh failed for environment %q: %v", e.Environment, e.Err)
}

func (e *RefreshFailedError) Unwrap() error {
	return e.Err
}
