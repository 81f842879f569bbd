// Package report produces the end-of-run artifacts: markdown summary,
// failure captures, and the PDF rendition.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// Summary renders the run summary as markdown.
func Summary(run *models.RunRecord, results []*models.CaseResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Test Run: %s\n\n", run.Title)
	fmt.Fprintf(&b, "- **Environment**: %s\n", run.Environment)
	fmt.Fprintf(&b, "- **Started**: %s\n", run.StartedAt.Format(time.RFC3339))
	if !run.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "- **Completed**: %s\n", run.CompletedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "- **Duration**: %s\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Second))
	}
	fmt.Fprintf(&b, "- **Status**: %s\n", run.Status)
	fmt.Fprintf(&b, "- **Passed**: %d / **Failed**: %d\n", run.Passed, run.Failed)
	if run.QaseRunID > 0 {
		fmt.Fprintf(&b, "- **Qase run**: %d\n", run.QaseRunID)
	}

	if len(results) == 0 {
		return b.String()
	}

	b.WriteString("\n## Results\n\n")
	b.WriteString("| Suite | Test | Status | Duration |\n")
	b.WriteString("|-------|------|--------|----------|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %dms |\n", r.Suite, r.Name, r.Status, r.DurationMs)
	}

	var failures []*models.CaseResult
	for _, r := range results {
		if r.Status == models.StatusFailed {
			failures = append(failures, r)
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n## Failures\n")
		for _, r := range failures {
			fmt.Fprintf(&b, "\n### %s\n\n", r.Name)
			if r.Error != "" {
				fmt.Fprintf(&b, "```\n%s\n```\n", r.Error)
			}
			for _, a := range r.Artifacts {
				fmt.Fprintf(&b, "- `%s`\n", a)
			}
		}
	}

	return b.String()
}
