package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/mdsplice/doctree"
	"github.com/dgallion1/mdsplice/parser"
	"github.com/dgallion1/mdsplice/reconcile"
	"github.com/dgallion1/mdsplice/writer"
)

// rewriteRequest carries the original source text and the modified tree.
type rewriteRequest struct {
	Original string            `json:"original"`
	Document *doctree.Document `json:"document"`
}

type rewriteResponse struct {
	Text        string              `json:"text"`
	Stats       reconcile.Stats     `json:"stats"`
	Diagnostics []writer.Diagnostic `json:"diagnostics,omitempty"`
}

type editsResponse struct {
	Edits       []writer.TextEdit   `json:"edits"`
	Stats       reconcile.Stats     `json:"stats"`
	Diagnostics []writer.Diagnostic `json:"diagnostics,omitempty"`
}

func (s *Server) decodeRewrite(w http.ResponseWriter, r *http.Request) (*rewriteRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req rewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
		} else {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		}
		return nil, false
	}
	if req.Document == nil {
		jsonError(w, "document is required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRewrite(w, r)
	if !ok {
		return
	}

	before := parser.Parse(req.Original)
	plan := reconcile.Reconcile(before, req.Document)
	text, diags, err := writer.IncrementalWrite(req.Original, before, req.Document, plan)
	if err != nil {
		s.log.Error("rewrite failed", "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, rewriteResponse{Text: text, Stats: plan.Stats, Diagnostics: diags})
}

func (s *Server) handleEdits(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRewrite(w, r)
	if !ok {
		return
	}

	before := parser.Parse(req.Original)
	plan := reconcile.Reconcile(before, req.Document)
	edits, diags, err := writer.ComputeIncrementalEdits(req.Original, before, req.Document, plan)
	if err != nil {
		s.log.Error("edit computation failed", "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if edits == nil {
		edits = []writer.TextEdit{}
	}

	writeJSON(w, editsResponse{Edits: edits, Stats: plan.Stats, Diagnostics: diags})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
