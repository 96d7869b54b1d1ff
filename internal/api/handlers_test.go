package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgallion1/mdsplice/doctree"
	"github.com/dgallion1/mdsplice/internal/config"
	"github.com/dgallion1/mdsplice/parser"
	"github.com/dgallion1/mdsplice/writer"
)

const testKey = "test-key"

func newTestServer() *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(log, config.Config{APIKey: testKey, MaxBodyBytes: 1 << 20})
}

func postJSON(t *testing.T, s *Server, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("got body %q", got)
	}
}

func TestRewriteEndpoint(t *testing.T) {
	s := newTestServer()
	original := "# Title\n\nOld paragraph.\n"
	after := parser.Parse(original)
	after.Blocks[1].Inlines = []*doctree.Inline{{Kind: doctree.Text, Text: "New paragraph."}}

	w := postJSON(t, s, "/api/rewrite", testKey, rewriteRequest{Original: original, Document: after})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp rewriteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "# Title\n\nNew paragraph.\n" {
		t.Errorf("text: got %q", resp.Text)
	}
	if resp.Stats.Kept != 1 || resp.Stats.Replaced != 1 {
		t.Errorf("stats: got %+v", resp.Stats)
	}
}

func TestRewriteRequiresAuth(t *testing.T) {
	s := newTestServer()
	body := rewriteRequest{Original: "x\n", Document: parser.Parse("x\n")}

	if w := postJSON(t, s, "/api/rewrite", "", body); w.Code != http.StatusUnauthorized {
		t.Errorf("no key: got status %d, want 401", w.Code)
	}
	if w := postJSON(t, s, "/api/rewrite", "wrong-key", body); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: got status %d, want 401", w.Code)
	}
}

func TestRewriteRequiresDocument(t *testing.T) {
	s := newTestServer()
	w := postJSON(t, s, "/api/rewrite", testKey, map[string]string{"original": "x\n"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestRewriteRejectsMalformedJSON(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+testKey)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestEditsEndpoint(t *testing.T) {
	s := newTestServer()
	original := "One.\n\nTwo.\n\nThree.\n"
	after := parser.Parse(original)
	after.Blocks[1].Inlines = []*doctree.Inline{{Kind: doctree.Text, Text: "Changed."}}

	w := postJSON(t, s, "/api/edits", testKey, rewriteRequest{Original: original, Document: after})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp editsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Edits) != 1 {
		t.Fatalf("got %d edits, want 1: %+v", len(resp.Edits), resp.Edits)
	}
	if got := writer.Apply(original, resp.Edits); got != "One.\n\nChanged.\n\nThree.\n" {
		t.Errorf("applied edits: got %q", got)
	}
}

func TestEditsEmptyForUnchangedDocument(t *testing.T) {
	s := newTestServer()
	original := "Same.\n"
	w := postJSON(t, s, "/api/edits", testKey, rewriteRequest{Original: original, Document: parser.Parse(original)})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp editsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Edits == nil || len(resp.Edits) != 0 {
		t.Errorf("expected empty non-nil edit list, got %+v", resp.Edits)
	}
}
