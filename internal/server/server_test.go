package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kumar-cmd/syngenta-ai/internal/classify"
	"github.com/kumar-cmd/syngenta-ai/internal/config"
	"github.com/kumar-cmd/syngenta-ai/internal/docquery"
	"github.com/kumar-cmd/syngenta-ai/internal/importer"
)

type stubClassifier struct {
	label classify.Label
	err   error
}

func (s *stubClassifier) Classify(ctx context.Context, query string) (classify.Label, error) {
	return s.label, s.err
}

type stubEngine struct {
	result *docquery.Result
	err    error
}

func (s *stubEngine) Query(ctx context.Context, query string) (*docquery.Result, error) {
	return s.result, s.err
}

type stubImporter struct {
	summary importer.Summary
	err     error
	path    string
}

func (s *stubImporter) ImportFile(ctx context.Context, path string) (importer.Summary, error) {
	s.path = path
	return s.summary, s.err
}

const testOrigin = "https://syngent-ai.vercel.app"

func newTestServer(cl QueryClassifier, eng DocumentEngine, imp CSVImporter) *Server {
	return New(Options{
		Config: config.ServerConfig{
			CORSOrigin: testOrigin,
		},
		CSVPath:    "testdata/table.csv",
		Classifier: cl,
		Engine:     eng,
		Importer:   imp,
	})
}

func postQuery(s *Server, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestQueryDocumentFlow(t *testing.T) {
	eng := &stubEngine{result: &docquery.Result{
		Answer: "Section 2 describes shipping delays.",
		Sources: []docquery.Source{
			{Text: "chunk text", Metadata: map[string]string{"page": "2"}},
		},
	}}
	s := newTestServer(&stubClassifier{label: classify.LabelDocument}, eng, &stubImporter{})

	w := postQuery(s, "application/json", `{"query":"summarize section 2 of the report"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Answer  string `json:"answer"`
		Sources []struct {
			Text     string            `json:"text"`
			Metadata map[string]string `json:"metadata"`
		} `json:"sources"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.Answer == "" || resp.Type != "document" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Text == "" || resp.Sources[0].Metadata == nil {
		t.Errorf("sources missing text/metadata: %+v", resp.Sources)
	}
}

func TestQueryRejectsNonJSONContentType(t *testing.T) {
	s := newTestServer(&stubClassifier{label: classify.LabelDocument}, &stubEngine{}, &stubImporter{})

	w := postQuery(s, "text/plain", `query=hello`)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp["error"] != "Unsupported Content-Type" {
		t.Errorf("unexpected error body: %v", resp)
	}
}

func TestQueryUnhandledLabels(t *testing.T) {
	for _, label := range []classify.Label{classify.LabelSQL, classify.LabelHybrid} {
		t.Run(string(label), func(t *testing.T) {
			s := newTestServer(&stubClassifier{label: label}, &stubEngine{}, &stubImporter{})
			w := postQuery(s, "application/json", `{"query":"how many orders per region"}`)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var resp map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid response json: %v", err)
			}
			if resp["error"] != "Unrecognized query type" {
				t.Errorf("unexpected error body: %v", resp)
			}
		})
	}
}

func TestQueryClassifierUpstreamFailure(t *testing.T) {
	cl := &stubClassifier{err: fmt.Errorf("%w: connection refused", classify.ErrUpstream)}
	s := newTestServer(cl, &stubEngine{}, &stubImporter{})

	w := postQuery(s, "application/json", `{"query":"anything"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestQueryUnrecognizedClassification(t *testing.T) {
	cl := &stubClassifier{err: fmt.Errorf("%w: %q", classify.ErrUnrecognized, "spreadsheet")}
	s := newTestServer(cl, &stubEngine{}, &stubImporter{})

	w := postQuery(s, "application/json", `{"query":"anything"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestQueryEngineFailure(t *testing.T) {
	eng := &stubEngine{err: errors.New("index search failed")}
	s := newTestServer(&stubClassifier{label: classify.LabelDocument}, eng, &stubImporter{})

	w := postQuery(s, "application/json", `{"query":"anything"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestUpdateDataSummary(t *testing.T) {
	imp := &stubImporter{summary: importer.Summary{Inserted: 42, Errors: 3, Skipped: 7}}
	s := newTestServer(&stubClassifier{}, &stubEngine{}, imp)

	req := httptest.NewRequest(http.MethodGet, "/update_data", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "Successfully inserted: 42, Errors: 3" {
		t.Errorf("unexpected summary text: %q", got)
	}
	if imp.path != "testdata/table.csv" {
		t.Errorf("importer called with wrong path: %q", imp.path)
	}
}

func TestUpdateDataFileFailure(t *testing.T) {
	imp := &stubImporter{err: errors.New("no such file")}
	s := newTestServer(&stubClassifier{}, &stubEngine{}, imp)

	req := httptest.NewRequest(http.MethodGet, "/update_data", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if got := w.Body.String(); got != "Successfully inserted: 0, Errors: 1" {
		t.Errorf("unexpected summary text: %q", got)
	}
}

func TestCORSRestrictedToConfiguredOrigin(t *testing.T) {
	s := newTestServer(&stubClassifier{label: classify.LabelDocument}, &stubEngine{result: &docquery.Result{Answer: "ok"}}, &stubImporter{})

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", testOrigin)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("expected allow-origin %q, got %q", testOrigin, got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin for foreign origin: %q", got)
	}
}

func TestPreflightRequest(t *testing.T) {
	s := newTestServer(&stubClassifier{}, &stubEngine{}, &stubImporter{})

	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
	req.Header.Set("Origin", testOrigin)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("preflight missing allow-methods: %q", got)
	}
}

func TestAPITokenRequiredWhenConfigured(t *testing.T) {
	s := New(Options{
		Config: config.ServerConfig{
			CORSOrigin: testOrigin,
			APIToken:   "sekrit",
		},
		Classifier: &stubClassifier{label: classify.LabelDocument},
		Engine:     &stubEngine{result: &docquery.Result{Answer: "ok"}},
		Importer:   &stubImporter{},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}
