package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/tongthuyhang/manabie-auto-testing/internal/interfaces"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// RunStorage implements the run-history storage over badgerhold.
type RunStorage struct {
	db     *DB
	logger arbor.ILogger
}

var _ interfaces.RunStorage = (*RunStorage)(nil)

// NewRunStorage creates a run storage over an open database.
func NewRunStorage(db *DB, logger arbor.ILogger) *RunStorage {
	return &RunStorage{db: db, logger: logger}
}

// SaveRun inserts or updates a run record.
func (s *RunStorage) SaveRun(ctx context.Context, run *models.RunRecord) error {
	if err := s.db.Store().Upsert(run.ID, run); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run record by ID.
func (s *RunStorage) GetRun(ctx context.Context, id string) (*models.RunRecord, error) {
	var run models.RunRecord
	err := s.db.Store().Get(id, &run)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *RunStorage) ListRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	var runs []*models.RunRecord
	if err := s.db.Store().Find(&runs, nil); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// SaveResult inserts or updates a case result.
func (s *RunStorage) SaveResult(ctx context.Context, result *models.CaseResult) error {
	if err := s.db.Store().Upsert(result.ID, result); err != nil {
		return fmt.Errorf("failed to save result %s: %w", result.ID, err)
	}
	return nil
}

// ResultsForRun returns the case results belonging to a run, oldest first.
func (s *RunStorage) ResultsForRun(ctx context.Context, runID string) ([]*models.CaseResult, error) {
	var results []*models.CaseResult
	if err := s.db.Store().Find(&results, badgerhold.Where("RunID").Eq(runID).Index("RunID")); err != nil {
		return nil, fmt.Errorf("failed to list results for run %s: %w", runID, err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.Before(results[j].StartedAt)
	})
	return results, nil
}

// Close closes the underlying database.
func (s *RunStorage) Close() error {
	return s.db.Close()
}
