package whitelist

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/auth"
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

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, auth.ErrInvalidCredential)
	}
	return principal, ok
}

func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, internal.NewValidationError("invalid whitelist entry id", internal.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	entries, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, entries, "")
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	dto, err := ParseAddEntryDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	entry, err := h.service.Add(r.Context(), principal, dto.Email, dto.Notes)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, entry, "email whitelisted")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	dto, err := ParseUpdateEntryDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	entry, err := h.service.Update(r.Context(), principal, id, dto.Notes, dto.IsActive)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, entry, "whitelist entry updated")
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), principal, id); err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "whitelist entry removed")
}
