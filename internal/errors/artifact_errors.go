package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/render"
)

// Artifact and run errors (sentinel errors for errors.Is checks)
var (
	ErrArtifactMissing   = errors.New("artifact missing")
	ErrNoCompletedRun    = errors.New("no completed run")
	ErrRunActive         = errors.New("pipeline run active")
	ErrManifestCorrupted = errors.New("manifest corrupted")
)

// ArtifactDetails provides additional context for artifact errors
type ArtifactDetails struct {
	Artifact    string     `json:"artifact,omitempty"`
	Path        string     `json:"path,omitempty"`
	RunID       string     `json:"run_id,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	SizeBytes   int64      `json:"size_bytes,omitempty"`
}

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// RetryAfter, when set, is emitted as a Retry-After header rather
	// than a body field.
	RetryAfter int `json:"-"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	if pd.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(pd.RetryAfter))
	}
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	// Add standard fields
	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	// Add extensions
	for k, v := range pd.Extensions {
		data[k] = v
	}

	// Use standard JSON marshaling
	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// NewArtifactMissingError creates an enhanced error for a missing pipeline artifact
func NewArtifactMissingError(details *ArtifactDetails, traceID string) *ProblemDetails {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeArtifactNotFound,
		"Artifact Not Found",
		"The requested artifact has not been generated yet. Run the pipeline to produce it.",
		fmt.Sprintf("/api/v1/artifacts#%s", traceID),
	)

	problem.WithExtension("error_type", "artifact_missing").
		WithExtension("trace_id", traceID)

	if details != nil {
		if details.Artifact != "" {
			problem.WithExtension("artifact", details.Artifact)
		}
		if details.Path != "" {
			problem.WithExtension("expected_path", details.Path)
		}
		if details.RunID != "" {
			problem.WithExtension("last_run_id", details.RunID)
		}
		if details.GeneratedAt != nil {
			problem.WithExtension("last_generated_at", details.GeneratedAt.Format(time.RFC3339))
		}
	}

	return problem
}

// NewRunActiveError creates an error for requests made while a pipeline run is active
func NewRunActiveError(traceID string) *ProblemDetails {
	problem := NewProblemDetails(
		http.StatusConflict,
		TypeRunInProgress,
		"Run In Progress",
		"A pipeline run is currently in progress. Artifacts are only served for completed runs.",
		fmt.Sprintf("/api/v1/artifacts#%s", traceID),
	).WithExtension("error_type", "run_active").
		WithExtension("trace_id", traceID).
		WithExtension("retry_after", 60)
	problem.RetryAfter = 60
	return problem
}

// MapArtifactError maps domain errors to HTTP problem details
func MapArtifactError(err error, traceID string) render.Renderer {
	instance := fmt.Sprintf("/api/v1/artifacts#trace-%s", traceID)

	// Check if it's an APIError from errors.go
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode == "ARTIFACT_NOT_FOUND" {
			return NewProblemDetails(
				http.StatusNotFound,
				TypeArtifactNotFound,
				"Artifact Not Found",
				apiErr.Message,
				instance,
			).WithExtension("trace_id", traceID).
				WithExtension("error_code", "ARTIFACT_NOT_FOUND")
		}
	}

	switch {
	case errors.Is(err, ErrArtifactMissing), errors.Is(err, os.ErrNotExist):
		return NewArtifactMissingError(nil, traceID)

	case errors.Is(err, ErrNoCompletedRun):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeRunNotFound,
			"No Completed Run",
			"No pipeline run has completed yet. Nothing to serve.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "RUN_NOT_FOUND")

	case errors.Is(err, ErrRunActive):
		return NewRunActiveError(traceID)

	case errors.Is(err, ErrManifestCorrupted):
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeDataCorrupted,
			"Manifest Corrupted",
			"The run manifest could not be parsed. Re-run the pipeline to regenerate it.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "MANIFEST_CORRUPTED")

	default:
		// Generic error
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INTERNAL_ERROR")
	}
}
