package document

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

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Share)
		r.Put("/{id}/shares", h.UpdateShares)
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

func (h *Handler) docID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, internal.NewValidationError("invalid document id", internal.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	docs, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, docs, "")
}

func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	dto, err := ParseShareDocumentDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	doc, err := h.service.Share(r.Context(), principal, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, doc, "document shared")
}

func (h *Handler) UpdateShares(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.docID(w, r)
	if !ok {
		return
	}

	dto, err := ParseUpdateSharesDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	doc, err := h.service.UpdateShares(r.Context(), principal, id, dto.SharedWith)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, doc, "shares updated")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.docID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "document deleted")
}
