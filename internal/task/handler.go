package task

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/auth"
	"github.com/locpham246/task-manager/internal/transport"
)

const defaultPageSize = 50

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

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, auth.ErrInvalidCredential)
	}
	return principal, ok
}

func (h *Handler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, internal.NewValidationError("invalid task id", internal.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}

func parseFilter(r *http.Request) (Filter, error) {
	query := r.URL.Query()
	filter := Filter{Limit: defaultPageSize}

	if status := query.Get("status"); status != "" {
		if !Status(status).Valid() {
			return filter, internal.NewValidationError("status must be pending, in_progress or done", internal.ErrCodeInvalidStatus)
		}
		filter.Status = Status(status)
	}
	if priority := query.Get("priority"); priority != "" {
		if !Priority(priority).Valid() {
			return filter, internal.NewValidationError("priority must be low, medium or high", internal.ErrCodeInvalidPriority)
		}
		filter.Priority = Priority(priority)
	}
	if assignee := query.Get("assignee"); assignee != "" {
		id, err := strconv.ParseInt(assignee, 10, 64)
		if err != nil || id <= 0 {
			return filter, internal.NewValidationError("invalid assignee filter", internal.ErrCodeValidationFailed)
		}
		filter.AssigneeID = id
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 && limit <= 200 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	tasks, err := h.service.List(r.Context(), principal, filter)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, tasks, "")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, t, "")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	dto, err := ParseCreateTaskDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	t, err := h.service.Create(r.Context(), principal, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, t, "task created")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	dto, err := ParseUpdateTaskDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	t, err := h.service.Update(r.Context(), principal, id, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, t, "task updated")
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	dto, err := ParseUpdateStatusDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	t, err := h.service.UpdateStatus(r.Context(), principal, id, dto.Status)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, t, "status updated")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "task deleted")
}
