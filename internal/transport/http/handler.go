// Package httptransport exposes the pipeline manager over HTTP.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"propflow/internal/ingest/pipeline"
	"propflow/internal/ingest/sources"
	"propflow/internal/property"
)

// Manager is the slice of the pipeline manager the transport needs.
type Manager interface {
	RunPipeline(ctx context.Context, name sources.SourceName) (property.RunSummary, error)
	RunAll(ctx context.Context) []property.RunSummary
	Sources() []sources.SourceName
}

// Handler wires ingest endpoints to the pipeline manager.
type Handler struct {
	manager Manager
	logger  *slog.Logger
}

// NewHandler constructs the ingest HTTP handler.
func NewHandler(manager Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{manager: manager, logger: logger}
}

// Register mounts the ingest endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/pipelines", h.handleList)
	r.Post("/v1/pipelines/run", h.handleRunAll)
	r.Post("/v1/pipelines/{source}/run", h.handleRun)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": h.manager.Sources(),
	})
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := sources.SourceName(chi.URLParam(r, "source"))

	summary, err := h.manager.RunPipeline(ctx, name)
	if err != nil {
		if errors.Is(err, pipeline.ErrPipelineNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		h.logger.ErrorContext(ctx, "pipeline run failed to start",
			"source", name,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleRunAll(w http.ResponseWriter, r *http.Request) {
	summaries := h.manager.RunAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"runs": summaries,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
