package runner

import (
	"strings"
	"testing"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

const sampleOutput = `=== RUN   TestLogin
=== RUN   TestCreateEvent_Q12
    event_master_test.go:42: creating event "Sprint Review"
--- PASS: TestLogin (3.20s)
=== RUN   TestDeleteEvent_Q14
    event_master_test.go:88: opening row action menu
    event_master_test.go:91: confirmation toast never appeared
--- PASS: TestCreateEvent_Q12 (8.10s)
--- FAIL: TestDeleteEvent_Q14 (15.00s)
=== RUN   TestSearch
--- SKIP: TestSearch (0.00s)
FAIL
FAIL    github.com/tongthuyhang/manabie-auto-testing/test/ui    26.400s
`

func TestParseTestOutput(t *testing.T) {
	cases := ParseTestOutput(sampleOutput)
	if len(cases) != 4 {
		t.Fatalf("parsed %d cases, want 4: %+v", len(cases), cases)
	}

	byName := make(map[string]ParsedCase)
	for _, c := range cases {
		byName[c.Name] = c
	}

	if got := byName["TestLogin"]; got.Status != models.StatusPassed || got.Elapsed != 3200*time.Millisecond {
		t.Errorf("TestLogin = %+v", got)
	}
	if got := byName["TestSearch"]; got.Status != models.StatusSkipped {
		t.Errorf("TestSearch = %+v", got)
	}

	failed := byName["TestDeleteEvent_Q14"]
	if failed.Status != models.StatusFailed {
		t.Fatalf("TestDeleteEvent_Q14 status = %q", failed.Status)
	}
	if !strings.Contains(failed.Detail, "confirmation toast never appeared") {
		t.Errorf("failure detail missing log line: %q", failed.Detail)
	}
}

func TestParseTestOutput_PassedCasesCarryNoDetail(t *testing.T) {
	for _, c := range ParseTestOutput(sampleOutput) {
		if c.Status != models.StatusFailed && c.Detail != "" {
			t.Errorf("%s carries detail %q", c.Name, c.Detail)
		}
	}
}

func TestParseTestOutput_SubtestsFoldIntoParent(t *testing.T) {
	output := `=== RUN   TestNormalize
=== RUN   TestNormalize/css_passthrough
=== RUN   TestNormalize/unknown_kind
--- PASS: TestNormalize (0.01s)
    --- PASS: TestNormalize/css_passthrough (0.00s)
    --- PASS: TestNormalize/unknown_kind (0.00s)
PASS
`
	cases := ParseTestOutput(output)
	if len(cases) != 1 {
		t.Fatalf("parsed %d cases, want only the parent: %+v", len(cases), cases)
	}
	if cases[0].Name != "TestNormalize" {
		t.Errorf("name = %q", cases[0].Name)
	}
}

func TestParseTestOutput_SubtestLogsReachParentDetail(t *testing.T) {
	output := `=== RUN   TestNormalize
=== RUN   TestNormalize/xpath_union
    locator_test.go:31: union selector returned no nodes
--- FAIL: TestNormalize (0.02s)
    --- FAIL: TestNormalize/xpath_union (0.01s)
FAIL
`
	cases := ParseTestOutput(output)
	if len(cases) != 1 {
		t.Fatalf("parsed %d cases, want only the parent: %+v", len(cases), cases)
	}
	if cases[0].Status != models.StatusFailed {
		t.Fatalf("status = %q", cases[0].Status)
	}
	if !strings.Contains(cases[0].Detail, "union selector returned no nodes") {
		t.Errorf("subtest log line missing from parent detail: %q", cases[0].Detail)
	}
}

func TestParseTestOutput_Empty(t *testing.T) {
	if cases := ParseTestOutput("# build failed\nexit status 2\n"); len(cases) != 0 {
		t.Errorf("non-test output produced cases: %+v", cases)
	}
}
