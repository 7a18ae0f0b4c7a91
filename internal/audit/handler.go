package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/locpham246/task-manager/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

// List serves GET /admin/audit-logs. The router guards it with the
// super_admin middleware.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, entries, "")
}
