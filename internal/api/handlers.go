package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/leapgrid/internal/dataset"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	id, ok := s.databaseID(w, r)
	if !ok {
		return
	}

	var req MaterializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	report, err := s.adapter.Materialize(r.Context(), id, dataset.Specs(req.Tables))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respond(w, http.StatusOK, newMaterializeResponse(report))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := s.databaseID(w, r)
	if !ok {
		return
	}

	req, ok := s.statement(w, r)
	if !ok {
		return
	}

	result, err := s.adapter.Execute(r.Context(), id, req.SQL)
	if err != nil {
		s.respondAdapterError(w, err)
		return
	}

	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.databaseID(w, r)
	if !ok {
		return
	}

	req, ok := s.statement(w, r)
	if !ok {
		return
	}

	outcome, err := s.adapter.RunUpdate(r.Context(), id, req.SQL)
	if err != nil {
		s.respondAdapterError(w, err)
		return
	}

	s.respond(w, http.StatusOK, outcome)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.databaseID(w, r)
	if !ok {
		return
	}

	req, ok := s.statement(w, r)
	if !ok {
		return
	}

	outcome, err := s.adapter.RunDelete(r.Context(), id, req.SQL)
	if err != nil {
		s.respondAdapterError(w, err)
		return
	}

	s.respond(w, http.StatusOK, outcome)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	id, ok := s.databaseID(w, r)
	if !ok {
		return
	}

	tables, err := s.adapter.Catalog(r.Context(), id)
	if err != nil {
		s.respondAdapterError(w, err)
		return
	}

	s.respond(w, http.StatusOK, TablesResponse{Tables: tables})
}

func (s *Server) handleEvict(w http.ResponseWriter, r *http.Request) {
	id, ok := s.databaseID(w, r)
	if !ok {
		return
	}

	if !s.adapter.Evict(id) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("database %d: %v", id, core.ErrNotInitialized))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// databaseID parses the path parameter and answers the request itself when
// the id is unusable.
func (s *Server) databaseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "databaseID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid database id %q", raw))
		return 0, false
	}
	return id, true
}

func (s *Server) statement(w http.ResponseWriter, r *http.Request) (StatementRequest, bool) {
	var req StatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return req, false
	}
	return req, true
}

// respondAdapterError maps the adapter error taxonomy onto status codes:
// unknown database 404, statement the reporter cannot parse 422, engine
// rejection 400 with the engine's message verbatim.
func (s *Server) respondAdapterError(w http.ResponseWriter, err error) {
	var malformed *core.MalformedStatementError
	var engineErr *core.EngineError

	switch {
	case errors.Is(err, core.ErrNotInitialized):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &malformed):
		s.respondError(w, http.StatusUnprocessableEntity, malformed.Error())
	case errors.As(err, &engineErr):
		s.respondError(w, http.StatusBadRequest, engineErr.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, ErrorResponse{Error: message})
}
