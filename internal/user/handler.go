package user

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

func (h *Handler) targetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, internal.NewValidationError("invalid user id", internal.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	users, err := h.service.ListUsers(r.Context(), principal)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, users, "")
}

func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	activities, err := h.service.ListActivities(r.Context(), principal)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, activities, "")
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), principal, id)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, user, "")
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), principal, id)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, profile, "")
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}

	dto, err := ParseUpdateRoleDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	user, err := h.service.ChangeRole(r.Context(), principal, id, dto.Role)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, user, "role updated")
}

func (h *Handler) InviteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	dto, err := ParseInviteUserDTO(r.Body, h.service.InviteDomain())
	if err != nil {
		h.WriteError(w, err)
		return
	}

	result, err := h.service.InviteUser(r.Context(), principal, dto.Email)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	message := "invitation sent to " + dto.Email
	switch {
	case result.Exists:
		message = "user already has an account"
	case !result.EmailSent:
		message = "invitation recorded but the email could not be delivered"
	}
	h.WriteSuccess(w, http.StatusOK, result, message)
}
