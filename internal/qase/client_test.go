package qase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("test-token", "EM", WithBaseURL(server.URL))
	return server, client
}

func TestCreateRun(t *testing.T) {
	var gotPath, gotToken string
	var gotBody map[string]any

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("Token")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"result": map[string]any{"id": 42},
		})
	})

	runID, err := client.CreateRun(context.Background(), "Nightly regression")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if runID != 42 {
		t.Errorf("runID = %d, want 42", runID)
	}
	if gotPath != "/run/EM" {
		t.Errorf("path = %q", gotPath)
	}
	if gotToken != "test-token" {
		t.Errorf("token header = %q", gotToken)
	}
	if gotBody["title"] != "Nightly regression" {
		t.Errorf("title = %v", gotBody["title"])
	}
}

func TestAddResults(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Results []Result `json:"results"`
	}

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"status": true})
	})

	results := []Result{
		{CaseID: 12, Status: "passed", TimeMs: 3200},
		{Status: "failed", Comment: "toast never appeared"},
	}
	if err := client.AddResults(context.Background(), 42, results); err != nil {
		t.Fatalf("AddResults() error = %v", err)
	}
	if gotPath != "/result/EM/42/bulk" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotBody.Results) != 2 || gotBody.Results[0].CaseID != 12 {
		t.Errorf("results payload = %+v", gotBody.Results)
	}
}

func TestAddResults_EmptyBatchSkipsRequest(t *testing.T) {
	called := false
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if err := client.AddResults(context.Background(), 42, nil); err != nil {
		t.Fatalf("AddResults() error = %v", err)
	}
	if called {
		t.Error("empty batch still hit the API")
	}
}

func TestCompleteRun(t *testing.T) {
	var gotPath string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"status": true})
	})

	if err := client.CompleteRun(context.Background(), 42); err != nil {
		t.Fatalf("CompleteRun() error = %v", err)
	}
	if gotPath != "/run/EM/42/complete" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestClient_APIRejection(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":       false,
			"errorMessage": "Project not found",
		})
	})

	_, err := client.CreateRun(context.Background(), "x")
	if err == nil {
		t.Fatal("CreateRun() error = nil, want API rejection")
	}
}

func TestClient_HTTPError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	if err := client.CompleteRun(context.Background(), 42); err == nil {
		t.Fatal("CompleteRun() error = nil, want HTTP error")
	}
}

func TestReporter_DisabledIsNoOp(t *testing.T) {
	reporter := NewReporter(nil, nil)

	if reporter.Enabled() {
		t.Error("Enabled() = true with no client")
	}

	runID, err := reporter.StartRun(context.Background(), "x")
	if err != nil || runID != 0 {
		t.Errorf("StartRun() = (%d, %v), want (0, nil)", runID, err)
	}
	if err := reporter.ReportResult(context.Background(), 0, &models.CaseResult{Status: models.StatusPassed}); err != nil {
		t.Errorf("ReportResult() error = %v", err)
	}
	if err := reporter.CompleteRun(context.Background(), 0); err != nil {
		t.Errorf("CompleteRun() error = %v", err)
	}
}

func TestReporter_CaseIDFromTestName(t *testing.T) {
	var gotResults []Result
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Results []Result `json:"results"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotResults = body.Results
		json.NewEncoder(w).Encode(map[string]any{"status": true})
	})

	reporter := NewReporter(client, nil)
	result := &models.CaseResult{
		Name:       "TestCreateEvent_Q12",
		Status:     models.StatusFailed,
		DurationMs: 5100,
		Error:      "save toast missing",
	}
	if err := reporter.ReportResult(context.Background(), 42, result); err != nil {
		t.Fatalf("ReportResult() error = %v", err)
	}

	if len(gotResults) != 1 {
		t.Fatalf("results = %+v", gotResults)
	}
	if gotResults[0].CaseID != 12 {
		t.Errorf("CaseID = %d, want 12", gotResults[0].CaseID)
	}
	if gotResults[0].Status != "failed" || gotResults[0].Comment != "save toast missing" {
		t.Errorf("result = %+v", gotResults[0])
	}
}
