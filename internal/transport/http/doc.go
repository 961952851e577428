// Package http implements HTTP request handlers for the resilience
// artifacts web service. It provides a thin layer between HTTP
// transport and the artifact read services, following the clean
// architecture principle of keeping handlers focused solely on HTTP
// concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. Read-only surface - handlers never trigger pipeline work
//	5. Consistent patterns - standardized request/response handling
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → ArtifactService → Output Directory
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// The service layer reads persisted pipeline artifacts from disk and
// gates every read on the run manifest, so handlers surface a stale or
// in-flight run as an error response rather than partial data.
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Parse and validate request
//	    page, err := parsePage(r)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, errors.ErrValidation(...))
//	        return
//	    }
//
//	    // 2. Call service layer
//	    result, err := h.service.Records(r.Context(), page, perPage)
//	    if err != nil {
//	        h.renderArtifactError(w, r, err)
//	        return
//	    }
//
//	    // 3. Format and send response
//	    render.JSON(w, r, formatResponse(result))
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/run/not-found",
//	    "title": "No Completed Run",
//	    "status": 404,
//	    "detail": "no completed pipeline run is available",
//	    "instance": "/api/v1/dataset"
//	}
//
// Sentinel errors from the service layer map onto fixed problem types:
// a run in flight yields 409 with a retry hint, a missing or failed run
// yields 404, and an unreadable manifest yields 500.
//
// # Middleware Integration
//
// Handlers work with these middleware:
//
//	- RequestID: Adds unique request ID for tracing
//	- Logger: Structured logging with slog
//	- Recovery: Handles panics gracefully
//	- CORS: Configures cross-origin requests
//	- RateLimiter: Per-client request throttling
//
// # Testing
//
// Handlers are tested using httptest:
//
//	- Mock service dependencies
//	- Test various HTTP scenarios
//	- Verify error responses
//	- Check middleware integration
package http
