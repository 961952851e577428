package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"gdra/internal/config"
	apierrors "gdra/internal/errors"
	"gdra/internal/infrastructure"
	"gdra/internal/services"
)

// ArtifactHandler serves persisted pipeline artifacts with RFC 7807 compliance
type ArtifactHandler struct {
	service      ArtifactServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewArtifactHandler creates a new artifact handler with RFC 7807 error handling
func NewArtifactHandler(service ArtifactServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ArtifactHandler {
	return &ArtifactHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "artifact_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the artifact routes with proper Chi patterns
func (h *ArtifactHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dataset", h.DownloadDataset)
	r.Get("/dataset/records", h.ListRecords)
	r.Get("/coverage", h.GetCoverage)
	r.Get("/validation", h.GetValidationReport)
	r.Get("/manifest", h.GetManifest)

	return r
}

// DownloadDataset handles GET /api/v1/dataset, streaming the unified
// dataset CSV as an attachment. The manifest digest doubles as the
// ETag so unchanged datasets revalidate without a transfer.
func (h *ArtifactHandler) DownloadDataset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "downloading unified dataset",
		slog.String("request_id", reqID))

	path, info, err := h.service.DatasetFile(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to resolve unified dataset",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.renderArtifactError(w, r, err)
		return
	}

	if info.Digest != "" {
		w.Header().Set("ETag", fmt.Sprintf("%q", info.Digest))
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", config.UnifiedDatasetFile))
	http.ServeFile(w, r, path)
}

// ListRecords handles GET /api/v1/dataset/records with pagination
func (h *ArtifactHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("page", "page must be a positive integer"))
			return
		}
		page = parsed
	}

	perPage := services.DefaultRecordsPerPage
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > services.MaxRecordsPerPage {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("per_page",
				fmt.Sprintf("per_page must be between 1 and %d", services.MaxRecordsPerPage)))
			return
		}
		perPage = parsed
	}

	h.logger.InfoContext(r.Context(), "listing dataset records",
		slog.String("request_id", reqID),
		slog.Int("page", page),
		slog.Int("per_page", perPage))

	recordPage, err := h.service.Records(r.Context(), page, perPage)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list dataset records",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.renderArtifactError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"columns":    recordPage.Columns,
		"data":       recordPage.Records,
		"page":       recordPage.Page,
		"per_page":   recordPage.PerPage,
		"total_rows": recordPage.TotalRows,
		"count":      len(recordPage.Records),
	})
}

// GetCoverage handles GET /api/v1/coverage
func (h *ArtifactHandler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching coverage matrix",
		slog.String("request_id", reqID))

	rows, err := h.service.CoverageMatrix(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get coverage matrix",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.renderArtifactError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetValidationReport handles GET /api/v1/validation, serving the
// report as plain text
func (h *ArtifactHandler) GetValidationReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching validation report",
		slog.String("request_id", reqID))

	report, err := h.service.ValidationReport(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get validation report",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.renderArtifactError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report)); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write validation report",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
	}
}

// GetManifest handles GET /api/v1/manifest. Unlike the artifact
// endpoints it reports failed and in-flight runs too. With
// ?verify=true the response carries freshly recomputed digests.
func (h *ArtifactHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	verify := r.URL.Query().Get("verify") == "true"

	h.logger.InfoContext(r.Context(), "fetching run manifest",
		slog.String("request_id", reqID),
		slog.Bool("verify", verify))

	manifest, err := h.service.Manifest(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get run manifest",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.renderArtifactError(w, r, err)
		return
	}

	response := map[string]interface{}{
		"status": "success",
		"data":   manifest,
	}

	if verify {
		verifications, err := h.service.VerifyArtifacts(r.Context())
		if err != nil {
			h.logger.ErrorContext(r.Context(), "failed to verify artifacts",
				slog.String("error", err.Error()),
				slog.String("request_id", reqID))
			h.renderArtifactError(w, r, err)
			return
		}
		response["verification"] = verifications
	}

	render.JSON(w, r, response)
}

// renderArtifactError maps service errors onto RFC 7807 problem responses
func (h *ArtifactHandler) renderArtifactError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := infrastructure.GetTraceID(r.Context())
	if renderErr := render.Render(w, r, apierrors.MapArtifactError(err, traceID)); renderErr != nil {
		h.errorHandler.HandleError(w, r, err)
	}
}
