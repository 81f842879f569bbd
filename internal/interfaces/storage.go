package interfaces

import (
	"context"
	"errors"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// ErrRunNotFound is returned when a run ID has no stored record.
var ErrRunNotFound = errors.New("run not found")

// RunStorage persists run and case-result history locally so past runs can be
// inspected without the external reporting service.
type RunStorage interface {
	SaveRun(ctx context.Context, run *models.RunRecord) error
	GetRun(ctx context.Context, id string) (*models.RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]*models.RunRecord, error)
	SaveResult(ctx context.Context, result *models.CaseResult) error
	ResultsForRun(ctx context.Context, runID string) ([]*models.CaseResult, error)
	Close() error
}
