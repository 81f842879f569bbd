// Package statefile persists one credential record per environment as a
// storage-state JSON file on disk.
package statefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/interfaces"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// Store is a file-backed CredentialStore. Records live at
// <dir>/storageState.<environment>.json.
type Store struct {
	dir    string
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.CredentialStore = (*Store)(nil)

// NewStore creates a store rooted at dir. The directory is created lazily on
// the first Save.
func NewStore(dir string, logger arbor.ILogger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
	}
}

// Path returns the record location for an environment.
func (s *Store) Path(environment string) string {
	return filepath.Join(s.dir, fmt.Sprintf("storageState.%s.json", environment))
}

// Load reads and parses the persisted record for the environment.
func (s *Store) Load(environment string) (*models.CredentialRecord, error) {
	path := s.Path(environment)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read credential record %s: %w", path, err)
	}

	var record models.CredentialRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &CorruptRecordError{Environment: environment, Path: path, Err: err}
	}

	// A payload without a cookies sequence is malformed, not merely empty.
	if record.Cookies == nil {
		return nil, &CorruptRecordError{
			Environment: environment,
			Path:        path,
			Err:         errors.New("missing cookies sequence"),
		}
	}

	if record.Environment == "" {
		record.Environment = environment
	}

	return &record, nil
}

// Save serializes the record and replaces any existing one wholesale. The
// write goes to a temp file first and is renamed into place so a concurrent
// Load never observes a half-written record.
func (s *Store) Save(environment string, record *models.CredentialRecord) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", s.dir, err)
	}

	// Marshal nil slices as empty sequences so a record with no cookies
	// round-trips as empty rather than tripping the malformed-payload check
	// on the next Load.
	rec := *record
	if rec.Cookies == nil {
		rec.Cookies = []models.Cookie{}
	}
	if rec.Origins == nil {
		rec.Origins = []models.Origin{}
	}

	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credential record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".storageState.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp record file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp record file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp record file: %w", err)
	}

	path := s.Path(environment)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace credential record %s: %w", path, err)
	}

	if s.logger != nil {
		s.logger.Debug().
			Str("environment", environment).
			Int("cookies", len(record.Cookies)).
			Msg("Credential record saved")
	}

	return nil
}

// Exists reports whether a record file is present for the environment.
func (s *Store) Exists(environment string) bool {
	_, err := os.Stat(s.Path(environment))
	return err == nil
}
