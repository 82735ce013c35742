// Package respond writes JSON responses and maps the fault taxonomy to
// HTTP statuses.
//
// Error bodies have the shape
//
//	{ "error": { "kind": "conflict", "message": "already a member" } }
//
// so callers can branch on the kind without parsing prose. Unclassified
// errors become a generic 500; the cause is logged, never sent.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"go.uber.org/zap"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Err writes err as a JSON error response. Server-side failures (Transient
// and unclassified errors) are logged with their cause; everything else is
// a deliberate outcome and is not logged here.
func Err(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := fault.KindOf(err)
	status := StatusOf(kind)

	msg := fault.MessageOf(err)
	if kind == fault.Unknown {
		msg = "internal error"
	}

	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	JSON(w, status, errorBody{Error: errorDetail{Kind: kind.String(), Message: msg}})
}

// StatusOf maps a fault kind to its HTTP status.
func StatusOf(kind fault.Kind) int {
	switch kind {
	case fault.Validation:
		return http.StatusBadRequest
	case fault.Unauthenticated:
		return http.StatusUnauthorized
	case fault.Forbidden:
		return http.StatusForbidden
	case fault.NotFound:
		return http.StatusNotFound
	case fault.Conflict:
		return http.StatusConflict
	case fault.InvalidOperation:
		return http.StatusUnprocessableEntity
	case fault.Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
