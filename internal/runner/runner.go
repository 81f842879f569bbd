// Package runner executes the configured test suites, persists run history,
// publishes results to the reporting service, and writes the end-of-run
// artifacts.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/interfaces"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
	"github.com/tongthuyhang/manabie-auto-testing/internal/report"
)

// SuiteResult is the outcome of one suite execution.
type SuiteResult struct {
	Suite    string
	Success  bool
	Output   string
	Duration time.Duration
	Dir      string
}

// Runner coordinates one full run of the configured suites.
type Runner struct {
	config   *common.Config
	logger   arbor.ILogger
	store    interfaces.RunStorage
	reporter interfaces.Reporter
	server   *Server

	// logStream, when set, receives suite output as it is produced.
	logStream io.Writer

	// ensureCredentials runs the credential refresh before any suite starts.
	ensureCredentials func(ctx context.Context) error
}

// New creates a runner. store, reporter, and server may be nil; the runner
// degrades to plain suite execution.
func New(config *common.Config, logger arbor.ILogger, store interfaces.RunStorage, reporter interfaces.Reporter, server *Server, ensureCredentials func(ctx context.Context) error) *Runner {
	return &Runner{
		config:            config,
		logger:            logger,
		store:             store,
		reporter:          reporter,
		server:            server,
		ensureCredentials: ensureCredentials,
	}
}

// SetLogStream directs live suite output to w, typically a LogBroadcaster.
func (r *Runner) SetLogStream(w io.Writer) {
	r.logStream = w
}

// RunOnce executes all configured suites and returns the run record. A run
// that cannot obtain usable credentials fails fast before any suite starts.
func (r *Runner) RunOnce(ctx context.Context) (*models.RunRecord, error) {
	run := &models.RunRecord{
		ID:          common.NewRunID(),
		Title:       fmt.Sprintf("Event Master regression %s", time.Now().Format("2006-01-02 15:04")),
		Environment: r.config.Environment,
		StartedAt:   time.Now(),
		Status:      models.StatusRunning,
	}
	r.broadcastStatus(run)

	if r.ensureCredentials != nil {
		r.logger.Info().Str("environment", run.Environment).Msg("Refreshing credentials before suites")
		if err := r.ensureCredentials(ctx); err != nil {
			return nil, fmt.Errorf("cannot obtain usable credentials for environment %q: %w", run.Environment, err)
		}
	}

	qaseRunID, err := r.startReporting(ctx, run)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Reporting disabled for this run")
	}
	run.QaseRunID = qaseRunID

	var suiteResults []SuiteResult
	allPassed := true
	for _, suite := range r.config.Runner.Suites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.logger.Info().Str("suite", suite.Name).Msg("Running suite")
		result := r.runSuite(suite)
		suiteResults = append(suiteResults, result)

		if result.Success {
			run.Passed++
			r.logger.Info().
				Str("suite", suite.Name).
				Str("duration", result.Duration.Round(time.Millisecond).String()).
				Msg("Suite passed")
		} else {
			run.Failed++
			allPassed = false
			r.logger.Warn().
				Str("suite", suite.Name).
				Str("duration", result.Duration.Round(time.Millisecond).String()).
				Msg("Suite failed")
		}
		r.broadcastStatus(run)
	}

	run.CompletedAt = time.Now()
	run.Status = models.StatusPassed
	if !allPassed {
		run.Status = models.StatusFailed
	}

	caseResults := r.collectResults(run, suiteResults)
	r.persist(ctx, run, caseResults)
	r.report(ctx, run, caseResults)
	r.writeArtifacts(run, caseResults)
	r.broadcastStatus(run)

	return run, nil
}

func (r *Runner) startReporting(ctx context.Context, run *models.RunRecord) (int, error) {
	if r.reporter == nil {
		return 0, nil
	}
	return r.reporter.StartRun(ctx, run.Title)
}

// runSuite runs `go test` for one suite directory, with output captured in a
// per-run results directory {suite}-{timestamp}.
func (r *Runner) runSuite(suite common.SuiteConfig) SuiteResult {
	start := time.Now()
	timestamp := start.Format("20060102-150405")
	suiteDir := filepath.Join(r.config.Runner.ResultsBaseDir, fmt.Sprintf("%s-%s", sanitizeName(suite.Name), timestamp))
	if err := os.MkdirAll(filepath.Join(suiteDir, "screenshots"), 0755); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to create suite results directory")
	}

	cmd := exec.Command("go", "test", "-v", "-count=1", "./"+filepath.ToSlash(suite.Path))
	cmd.Env = append(os.Environ(),
		"TEST_RESULTS_DIR="+suiteDir,
		"MANABIE_ENV="+r.config.Environment,
		"MANABIE_UI_TESTS=1",
	)

	var buf bytes.Buffer
	out := io.Writer(&buf)
	if r.logStream != nil {
		out = io.MultiWriter(&buf, r.logStream)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	duration := time.Since(start)

	logPath := filepath.Join(suiteDir, "test.log")
	if writeErr := os.WriteFile(logPath, buf.Bytes(), 0644); writeErr != nil {
		r.logger.Warn().Err(writeErr).Msg("Failed to write suite log")
	}

	return SuiteResult{
		Suite:    suite.Name,
		Success:  err == nil,
		Output:   buf.String(),
		Duration: duration,
		Dir:      suiteDir,
	}
}

// collectResults parses the captured `go test -v` output into per-case
// results.
func (r *Runner) collectResults(run *models.RunRecord, suites []SuiteResult) []*models.CaseResult {
	var results []*models.CaseResult
	for _, suite := range suites {
		cases := ParseTestOutput(suite.Output)
		if len(cases) == 0 {
			// The suite produced no per-test lines (build failure, panic);
			// record the suite itself as one failing case.
			status := models.StatusPassed
			if !suite.Success {
				status = models.StatusFailed
			}
			cases = []ParsedCase{{Name: suite.Suite, Status: status, Elapsed: suite.Duration, Detail: truncate(suite.Output, 2000)}}
		}

		for _, c := range cases {
			results = append(results, &models.CaseResult{
				ID:         common.NewResultID(),
				RunID:      run.ID,
				Suite:      suite.Suite,
				Name:       c.Name,
				Status:     c.Status,
				StartedAt:  run.StartedAt,
				DurationMs: c.Elapsed.Milliseconds(),
				Error:      c.Detail,
			})
		}
	}
	return results
}

func (r *Runner) persist(ctx context.Context, run *models.RunRecord, results []*models.CaseResult) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to persist run record")
	}
	for _, result := range results {
		if err := r.store.SaveResult(ctx, result); err != nil {
			r.logger.Warn().Err(err).Str("case", result.Name).Msg("Failed to persist case result")
		}
	}
}

func (r *Runner) report(ctx context.Context, run *models.RunRecord, results []*models.CaseResult) {
	if r.reporter == nil || run.QaseRunID == 0 {
		return
	}
	for _, result := range results {
		if err := r.reporter.ReportResult(ctx, run.QaseRunID, result); err != nil {
			r.logger.Warn().Err(err).Str("case", result.Name).Msg("Failed to upload case result")
		}
	}
	if err := r.reporter.CompleteRun(ctx, run.QaseRunID); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to complete reporting run")
	}
}

func (r *Runner) writeArtifacts(run *models.RunRecord, results []*models.CaseResult) {
	summary := report.Summary(run, results)
	run.ResultsDir = r.config.Runner.ResultsBaseDir

	summaryPath := filepath.Join(r.config.Runner.ResultsBaseDir, fmt.Sprintf("summary-%s.md", run.StartedAt.Format("20060102-150405")))
	if err := os.WriteFile(summaryPath, []byte(summary), 0644); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to write summary markdown")
	}

	if r.config.Runner.PDFReport {
		data, err := report.PDF(summary)
		if err != nil {
			r.logger.Warn().Err(err).Msg("Failed to render PDF summary")
			return
		}
		pdfPath := strings.TrimSuffix(summaryPath, ".md") + ".pdf"
		if err := os.WriteFile(pdfPath, data, 0644); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to write PDF summary")
		}
	}
}

func (r *Runner) broadcastStatus(run *models.RunRecord) {
	if r.server != nil {
		r.server.BroadcastStatus(run)
	}
}

func sanitizeName(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")
	return strings.ToLower(replacer.Replace(name))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
