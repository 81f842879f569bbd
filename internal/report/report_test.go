package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

func testRun() (*models.RunRecord, []*models.CaseResult) {
	started := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)
	run := &models.RunRecord{
		ID:          "run_1",
		Title:       "Nightly regression",
		Environment: "staging",
		StartedAt:   started,
		CompletedAt: started.Add(10 * time.Minute),
		Status:      models.StatusFailed,
		Passed:      2,
		Failed:      1,
		QaseRunID:   42,
	}
	results := []*models.CaseResult{
		{Suite: "ui", Name: "TestLogin", Status: models.StatusPassed, DurationMs: 3200},
		{Suite: "ui", Name: "TestCreateEvent_Q12", Status: models.StatusPassed, DurationMs: 8100},
		{
			Suite: "ui", Name: "TestDeleteEvent_Q14", Status: models.StatusFailed, DurationMs: 15000,
			Error:     "confirmation toast never appeared",
			Artifacts: []string{"results/delete_failed.png"},
		},
	}
	return run, results
}

func TestSummary(t *testing.T) {
	run, results := testRun()
	got := Summary(run, results)

	for _, want := range []string{
		"# Test Run: Nightly regression",
		"**Environment**: staging",
		"**Passed**: 2 / **Failed**: 1",
		"**Qase run**: 42",
		"| ui | TestLogin | passed | 3200ms |",
		"## Failures",
		"### TestDeleteEvent_Q14",
		"confirmation toast never appeared",
		"results/delete_failed.png",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\n%s", want, got)
		}
	}
}

func TestSummary_NoResults(t *testing.T) {
	run, _ := testRun()
	got := Summary(run, nil)
	if strings.Contains(got, "## Results") || strings.Contains(got, "## Failures") {
		t.Errorf("empty run rendered result sections:\n%s", got)
	}
}

func TestExtractErrorText(t *testing.T) {
	html := `
		<html><body>
			<div class="slds-notify__content"><span class="toastMessage">Error: Required field missing</span></div>
			<ul class="errorsList"><li>Event Code must be unique</li></ul>
			<div class="unrelated">Dashboard</div>
		</body></html>`

	got := ExtractErrorText(html)
	if !strings.Contains(got, "Required field missing") {
		t.Errorf("toast text missing from %q", got)
	}
	if !strings.Contains(got, "Event Code must be unique") {
		t.Errorf("form error missing from %q", got)
	}
	if strings.Contains(got, "Dashboard") {
		t.Errorf("unrelated text leaked into %q", got)
	}
}

func TestExtractErrorText_CleanPage(t *testing.T) {
	if got := ExtractErrorText("<html><body><h1>Event Master</h1></body></html>"); got != "" {
		t.Errorf("clean page produced error text %q", got)
	}
}

func TestSaveFailureArtifacts(t *testing.T) {
	dir := t.TempDir()
	capture := FailureCapture{
		Screenshot: []byte("fake-png"),
		HTML:       `<html><body><span class="toastMessage">Error: save failed</span><p>Some page body</p></body></html>`,
		URL:        "https://example.lightning.force.com",
	}

	paths, err := SaveFailureArtifacts(dir, "delete_failed", capture)
	if err != nil {
		t.Fatalf("SaveFailureArtifacts() error = %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v, want png+html+md", paths)
	}

	mdPath := filepath.Join(dir, "delete_failed.md")
	data, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("markdown artifact missing: %v", err)
	}
	if !strings.Contains(string(data), "save failed") {
		t.Errorf("markdown artifact lacks the extracted error:\n%s", data)
	}
}

func TestPDF(t *testing.T) {
	run, results := testRun()
	data, err := PDF(Summary(run, results))
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("output does not look like a PDF (%d bytes)", len(data))
	}
}
