package interfaces

import (
	"context"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// Reporter publishes run outcomes to an external test-management service.
// Implementations must be safe to call with a zero-configured backend (no-op).
type Reporter interface {
	// StartRun opens a remote run and returns its identifier (0 when the
	// reporter is disabled).
	StartRun(ctx context.Context, title string) (int, error)

	// ReportResult records one case outcome against the open run.
	ReportResult(ctx context.Context, runID int, result *models.CaseResult) error

	// CompleteRun closes the remote run.
	CompleteRun(ctx context.Context, runID int) error
}
