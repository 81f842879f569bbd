// Package badger persists run and case-result history in a local badgerhold
// database so past runs can be inspected without the reporting service.
package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
)

// DB manages the badgerhold connection.
type DB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewDB opens (or creates) the database at the configured path.
func NewDB(logger arbor.ILogger, config *common.BadgerConfig) (*DB, error) {
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
			}
		}
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger database initialized")

	return &DB{store: store, logger: logger}, nil
}

// Store returns the underlying badgerhold store.
func (db *DB) Store() *badgerhold.Store {
	return db.store
}

// RunGC reclaims value-log space. badger only rewrites a log file when at
// least half of it is stale, so calling this on a quiet database is cheap.
func (db *DB) RunGC() error {
	err := db.store.Badger().RunValueLogGC(0.5)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.store != nil {
		return db.store.Close()
	}
	return nil
}
