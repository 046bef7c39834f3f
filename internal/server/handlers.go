package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nao1215/textsieve/internal/badness"
	"github.com/nao1215/textsieve/internal/cleaner"
	"github.com/nao1215/textsieve/internal/script"
	"github.com/nao1215/textsieve/internal/table"
)

// textRequest is the body of the clean and analyze endpoints.
type textRequest struct {
	Text    *string  `json:"text"`
	Scripts []string `json:"scripts,omitempty"`
}

// tablesRequest is the body of the tables endpoint.
type tablesRequest struct {
	Text               *string `json:"text"`
	OrphansAsMalformed bool    `json:"orphans_as_malformed,omitempty"`
}

// scriptInfo describes one selectable script in the scripts listing.
type scriptInfo struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Baseline    bool   `json:"baseline"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScripts(w http.ResponseWriter, _ *http.Request) {
	codes := script.Codes()
	infos := make([]scriptInfo, 0, len(codes))
	for _, code := range codes {
		infos = append(infos, scriptInfo{
			Code:        code,
			Description: script.Describe(code),
			Baseline:    script.IsBaseline(code),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, ErrMissingText)
		return
	}

	result, err := cleaner.Clean(*req.Text, s.scriptsFor(req.Scripts))
	if err != nil {
		writeAnalyzerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, ErrMissingText)
		return
	}

	report, err := badness.Analyze(*req.Text, s.scriptsFor(req.Scripts))
	if err != nil {
		writeAnalyzerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	var req tablesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, ErrMissingText)
		return
	}

	writeJSON(w, http.StatusOK, table.Analyze(*req.Text, table.WithOrphansAsMalformed(req.OrphansAsMalformed)))
}

// scriptsFor returns the requested scripts or the server default.
func (s *Server) scriptsFor(requested []string) []string {
	if len(requested) == 0 {
		return s.scripts
	}
	return requested
}

// decode reads a JSON body of at most maxBodyBytes into v.
// On failure it writes the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeAnalyzerError(w http.ResponseWriter, err error) {
	if errors.Is(err, script.ErrUnknownScript) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
