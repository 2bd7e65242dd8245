// Package transport provides HTTP handlers for the registry domain.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roeezolantz/errdex/internal/auth"
	"github.com/roeezolantz/errdex/internal/observability/metrics"
	"github.com/roeezolantz/errdex/internal/registry/domain"
)

// Handler handles HTTP requests for error databases.
type Handler struct {
	svc domain.Service
}

// NewHandler creates a new registry HTTP handler.
func NewHandler(svc domain.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterReadRoutes registers read-only routes (no auth required).
func (h *Handler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{name}", h.handleGetVersions)
	r.Get("/{name}/{version}", h.handleGet)
	r.Get("/{name}/{version}/records", h.handleGetRecords)
	r.Get("/{name}/{version}/selectors/{selector}", h.handleLookup)
	r.Get("/{name}/{version}/search", h.handleSearch)
	r.Get("/{name}/{version}/sources", h.handleSummary)
}

// RegisterWriteRoutes registers write routes (auth required).
func (h *Handler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/{name}", h.handlePublish)
	r.Delete("/{name}/{version}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	result, err := h.svc.List(r.Context(), domain.ListFilter{
		Query: r.URL.Query().Get("q"),
	}, domain.PaginationParams{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list databases")
		return
	}

	data := make([]map[string]any, len(result.Databases))
	for i, d := range result.Databases {
		data[i] = map[string]any{
			"name":        d.Name,
			"versions":    d.Versions,
			"recordCount": d.RecordCount,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"pagination": map[string]any{
			"limit":      limit,
			"hasMore":    result.HasMore,
			"nextCursor": result.NextCursor,
		},
	})
}

func (h *Handler) handleGetVersions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	result, err := h.svc.GetVersions(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Database not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get database")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":     result.Name,
		"versions": result.Versions,
		"latest":   result.Latest,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")

	db, err := h.svc.Get(r.Context(), name, version)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Database version not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get database")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":        db.Name,
		"version":     db.Version,
		"description": db.Description,
		"recordCount": db.RecordCount,
		"createdAt":   db.CreatedAt,
	})
}

func (h *Handler) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")

	records, err := h.svc.GetRecords(r.Context(), name, version)
	if err != nil {
		metrics.RecordRetrieve("error")
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Database version not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get records")
		return
	}

	metrics.RecordRetrieve("success")
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
	})
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")
	sel := chi.URLParam(r, "selector")

	record, err := h.svc.Lookup(r.Context(), name, version, sel)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSelector):
			metrics.RecordLookup("invalid")
			writeError(w, http.StatusBadRequest, "INVALID_SELECTOR", "Selector must be 4 bytes of hex with optional 0x prefix")
		case errors.Is(err, domain.ErrSelectorMiss):
			metrics.RecordLookup("miss")
			writeError(w, http.StatusNotFound, "SELECTOR_NOT_FOUND", "No error matches this selector")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Database version not found")
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up selector")
		}
		return
	}

	metrics.RecordLookup("hit")
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")
	query := r.URL.Query().Get("q")

	if query == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Query parameter q is required")
		return
	}

	records, err := h.svc.Search(r.Context(), name, version, query)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Database version not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search records")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")

	summary, err := h.svc.Summary(r.Context(), name, version)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Database version not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to summarize database")
		return
	}

	data := make([]map[string]any, len(summary))
	for i, s := range summary {
		data[i] = map[string]any{
			"source": s.Source,
			"count":  s.Count,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sources": data,
	})
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// Check size limit (50MB)
	r.Body = http.MaxBytesReader(w, r.Body, 50*1024*1024)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
		return
	}

	var req domain.PublishRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	ownerID := auth.GetOwnerIDFromContext(r.Context())

	result, err := h.svc.Publish(r.Context(), name, ownerID, req)
	if err != nil {
		metrics.RecordPublish("error")
		switch {
		case errors.Is(err, domain.ErrInvalidName):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		case errors.Is(err, domain.ErrInvalidVersion):
			writeError(w, http.StatusBadRequest, "INVALID_VERSION", err.Error())
		case errors.Is(err, domain.ErrVersionExists):
			writeError(w, http.StatusConflict, "VERSION_EXISTS", "Version already exists and is immutable")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Database owned by another user")
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to publish database")
		}
		return
	}

	metrics.RecordPublish("success")
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")

	ownerID := auth.GetOwnerIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), name, version, ownerID); err != nil {
		metrics.RecordDelete("error")
		if errors.Is(err, domain.ErrForbidden) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Database owned by another user")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete database")
		return
	}

	metrics.RecordDelete("success")
	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
