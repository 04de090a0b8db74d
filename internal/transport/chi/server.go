// Package chi exposes the pagedex backend over a hand-routed chi HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagedex/internal/backend"
	"github.com/kailas-cloud/pagedex/internal/domain"
	"github.com/kailas-cloud/pagedex/internal/domain/record"
	"github.com/kailas-cloud/pagedex/internal/domain/schema"
	"github.com/kailas-cloud/pagedex/internal/domain/schema/field"
)

// Backend is the facade surface the HTTP layer drives.
type Backend interface {
	AddType(t schema.ContentType) error
	Add(ctx context.Context, rec record.Record) error
	AddBulk(ctx context.Context, label string, recs []record.Record) error
	Delete(ctx context.Context, rec record.Record) error
	SearchWithCount(ctx context.Context, queryText, label string, opts ...backend.SearchOption) ([]record.Record, int, error)
	AutocompleteWithCount(ctx context.Context, queryText, label string, opts ...backend.SearchOption) ([]record.Record, int, error)
	RebuildIndex(ctx context.Context, label string) error
	RefreshIndex(ctx context.Context) error
}

// Records persists canonical record bodies alongside index submissions.
type Records interface {
	Save(ctx context.Context, rec record.Map) error
	SaveBulk(ctx context.Context, recs []record.Map) error
	Delete(ctx context.Context, pk string) error
}

// Pinger reports liveness of one dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes the HTTP API onto the backend facade.
type Server struct {
	backend       Backend
	records       Records
	index         Pinger
	store         Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(b Backend, records Records, index, store Pinger, logger *zap.Logger) *Server {
	s := &Server{
		backend: b,
		records: records,
		index:   index,
		store:   store,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTypeNotRegistered, http.StatusNotFound, codeTypeNotRegistered),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrAutocompleteNotSupported, http.StatusNotImplemented, codeNotImplemented),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, codeNotImplemented),
	}
	return s
}

// CreateType handles POST /api/v1/types.
func (s *Server) CreateType(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Label == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Type label is required")
		return
	}

	fields, err := fieldsFromRequest(req.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	var t schema.ContentType
	if req.Parent != "" {
		t, err = schema.NewChild(req.Label, req.Parent, fields)
	} else {
		t, err = schema.New(req.Label, fields)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if err := s.backend.AddType(t); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, typeResponse{
		Label:      t.Label(),
		Parent:     req.Parent,
		IndexLabel: t.IndexLabel(),
	})
}

// UpsertRecord handles PUT /api/v1/types/{type}/records/{id}.
func (s *Server) UpsertRecord(w http.ResponseWriter, r *http.Request, label, id string) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec := record.NewMap(label, id, req.Values)
	if err := s.records.Save(r.Context(), rec); err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.backend.Add(r.Context(), rec); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordResponse{Type: label, ID: id})
}

// BulkUpsertRecords handles POST /api/v1/types/{type}/records/bulk.
func (s *Server) BulkUpsertRecords(w http.ResponseWriter, r *http.Request, label string) {
	var req bulkRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "records must not be empty")
		return
	}

	maps := make([]record.Map, len(req.Records))
	recs := make([]record.Record, len(req.Records))
	for i, item := range req.Records {
		if item.ID == "" {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "record id is required")
			return
		}
		maps[i] = record.NewMap(label, item.ID, item.Values)
		recs[i] = maps[i]
	}

	if err := s.records.SaveBulk(r.Context(), maps); err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.backend.AddBulk(r.Context(), label, recs); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bulkRecordResponse{Type: label, Count: len(recs)})
}

// DeleteRecord handles DELETE /api/v1/types/{type}/records/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request, label, id string) {
	rec := record.NewMap(label, id, nil)
	if err := s.backend.Delete(r.Context(), rec); err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.records.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, s.backend.SearchWithCount)
}

// Autocomplete handles POST /api/v1/autocomplete.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, s.backend.AutocompleteWithCount)
}

// runSearch answers one search-shaped request. The page and its total come
// from a single pipeline run; re-counting would fan out to the remote
// indexes a second time.
func (s *Server) runSearch(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, queryText, label string, opts ...backend.SearchOption) ([]record.Record, int, error),
) {
	req, opts, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	recs, total, err := run(r.Context(), req.Query, req.Type, opts...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(recs))
	for i, rec := range recs {
		items[i] = searchResultItem{
			Type:   rec.TypeLabel(),
			ID:     rec.PK(),
			Values: recordValues(rec),
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items: items,
		Total: total,
	})
}

// RebuildIndex handles POST /api/v1/types/{type}/index/rebuild.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request, label string) {
	if err := s.backend.RebuildIndex(r.Context(), label); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshIndexes handles POST /api/v1/indexes/refresh.
func (s *Server) RefreshIndexes(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.RefreshIndex(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if err := s.index.Ping(r.Context()); err != nil {
		checks["index"] = "down"
		healthy = false
	} else {
		checks["index"] = "up"
	}
	if err := s.store.Ping(r.Context()); err != nil {
		checks["records"] = "down"
		healthy = false
	} else {
		checks["records"] = "up"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: status, Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (searchRequest, []backend.SearchOption, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return searchRequest{}, nil, false
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Type label is required")
		return searchRequest{}, nil, false
	}
	if req.Offset < 0 || req.Limit < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "offset and limit must be non-negative")
		return searchRequest{}, nil, false
	}

	var opts []backend.SearchOption
	if req.Offset > 0 {
		opts = append(opts, backend.WithOffset(req.Offset))
	}
	if req.Limit > 0 {
		opts = append(opts, backend.WithLimit(req.Limit))
	}
	if req.PlainOrder {
		opts = append(opts, backend.WithoutRelevanceOrder())
	}
	return req, opts, true
}

func fieldsFromRequest(ff []fieldDefinition) ([]field.Field, error) {
	fields := make([]field.Field, 0, len(ff))
	for _, f := range ff {
		built, err := fieldFromDefinition(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, built)
	}
	return fields, nil
}

func fieldFromDefinition(f fieldDefinition) (field.Field, error) {
	kind, err := field.ParseKind(f.Kind)
	if err != nil {
		return field.Field{}, err
	}

	if kind == field.Related {
		subs := make([]field.Field, 0, len(f.SubFields))
		for _, sf := range f.SubFields {
			subKind, err := field.ParseKind(sf.Kind)
			if err != nil {
				return field.Field{}, err
			}
			sub, err := field.New(sf.Name, subKind)
			if err != nil {
				return field.Field{}, err
			}
			subs = append(subs, sub)
		}
		return field.NewRelated(f.Name, subs)
	}
	return field.New(f.Name, kind)
}

func recordValues(rec record.Record) map[string]any {
	if m, ok := rec.(record.Map); ok {
		return m.Values()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrTypeNotRegistered,
		domain.ErrInvalidSchema,
		domain.ErrRecordNotFound,
		domain.ErrAutocompleteNotSupported,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
