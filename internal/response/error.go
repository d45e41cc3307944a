package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	}); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch e := err.(type) {
	case *errs.NotFoundError:
		log.Warn("resource not found", "error", e.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", e.Message)

	case *errs.AccessDeniedError:
		log.Warn("access denied", "error", e.Message)
		h.WriteError(w, r, http.StatusForbidden, "access_denied", e.Message)

	case *errs.ValidationError:
		log.Warn("validation failed", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", e.Message)

	case *errs.RateLimitedError:
		log.Warn("sync rate limited", "hours_remaining", e.HoursRemaining)
		h.WriteError(w, r, http.StatusTooManyRequests, "rate_limited", e.Message)

	case *errs.ParseError:
		log.Warn("upstream record unparseable", "error", e.Message)
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", e.Message)

	case *errs.DatabaseError:
		log.Error("database error", "operation", e.Operation, "error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error", "An error occurred")

	case *errs.ExternalServiceError:
		level := slog.LevelError
		if e.Transient {
			level = slog.LevelWarn
		}
		log.Log(r.Context(), level, "external service error",
			"service", e.Service,
			"status_code", e.StatusCode,
			"transient", e.Transient,
			"error", e.Message)

		status := http.StatusBadGateway
		if e.Transient {
			status = http.StatusServiceUnavailable
		}
		h.WriteError(w, r, status, "service_unavailable", "Upstream provider unavailable")

	case *errs.EncryptionError:
		log.Error("encryption error", "error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error", "An error occurred")

	case *errs.ConfigError:
		log.Error("configuration error", "error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error", "An error occurred")

	default:
		log.Error("unexpected error", "error", err, "type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
