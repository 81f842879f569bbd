package runner

import (
	"bufio"
	"regexp"
	"strings"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// ParsedCase is one test outcome extracted from `go test -v` output.
type ParsedCase struct {
	Name    string
	Status  string
	Elapsed time.Duration
	Detail  string
}

var (
	testRunPattern    = regexp.MustCompile(`^=== RUN\s+(\S+)$`)
	testResultPattern = regexp.MustCompile(`^--- (PASS|FAIL|SKIP): (\S+) \(([0-9.]+)s\)$`)
)

// ParseTestOutput extracts per-test results from verbose go test output.
// Log lines between a test's RUN marker and its result marker become the
// failure detail. Indented markers (subtests) fold into their parent.
func ParseTestOutput(output string) []ParsedCase {
	var cases []ParsedCase
	details := make(map[string]*strings.Builder)
	var current string

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if m := testRunPattern.FindStringSubmatch(trimmed); m != nil {
			name := m[1]
			// Subtest output accrues to its top-level parent, since only
			// the parent result is emitted.
			if i := strings.IndexByte(name, '/'); i >= 0 {
				name = name[:i]
			}
			current = name
			if _, ok := details[name]; !ok {
				details[name] = &strings.Builder{}
			}
			continue
		}

		if m := testResultPattern.FindStringSubmatch(trimmed); m != nil {
			// Indented markers are subtest results; the top-level line
			// carries the aggregate.
			if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
				continue
			}

			name := m[2]
			elapsed, _ := time.ParseDuration(m[3] + "s")

			status := models.StatusPassed
			switch m[1] {
			case "FAIL":
				status = models.StatusFailed
			case "SKIP":
				status = models.StatusSkipped
			}

			c := ParsedCase{Name: name, Status: status, Elapsed: elapsed}
			if status == models.StatusFailed {
				if b, ok := details[name]; ok {
					c.Detail = strings.TrimSpace(b.String())
				}
			}
			cases = append(cases, c)
			continue
		}

		if current != "" {
			if b, ok := details[current]; ok {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	return cases
}
