package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/pkg/logger"
)

// BaseHandler provides the response envelope and token extraction shared by
// every HTTP handler.
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// envelope is the uniform response shape: success plus either data or a
// message. Clients branch on the success flag, not the status code.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteSuccess writes a success envelope. data may be nil for ack-only
// responses.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	h.writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

// WriteError translates any error into the failure envelope. AppErrors keep
// their status and message; everything else collapses to a generic 500 so no
// internal detail leaks.
func (h *BaseHandler) WriteError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("request failed", "type", appErr.Type, "code", appErr.Code, "error", appErr.Error())
		} else {
			h.Logger.Warn("request denied", "type", appErr.Type, "code", appErr.Code, "message", appErr.Message)
		}
		h.writeJSON(w, appErr.StatusCode, envelope{Success: false, Message: appErr.Message})
		return
	}

	h.Logger.Error("unhandled error", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "internal server error"})
}

func (h *BaseHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// ExtractTokenFromHeader pulls the Bearer token out of the Authorization
// header, or returns empty.
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

// ClientIP resolves the originating address, honoring proxy headers in the
// order the reverse proxy sets them.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}
