package statefile

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no record exists for the environment.
var ErrNotFound = errors.New("credential record not found")

// CorruptRecordError indicates the persisted payload does not match the
// expected storage-state shape. Corruption is surfaced immediately and never
// treated as an absent record.
type CorruptRecordError struct {
	Environment string
	Path        string
	Err         error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt credential record for environment %q at %s: %v", e.Environment, e.Path, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}
