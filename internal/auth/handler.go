package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/locpham246/task-manager/internal/transport"
)

// SessionService is the handler's view of the authentication service.
type SessionService interface {
	LoginWithGoogle(ctx context.Context, rawToken, ipAddress, deviceInfo string) (*Session, error)
	Me(ctx context.Context, principal *User) (*Account, error)
	Refresh(ctx context.Context, principal *User) (*Session, error)
	TrackActivity(ctx context.Context, principal *User) error
	Logout(ctx context.Context, principal *User) error
	DecodeCredential(rawToken string) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	service SessionService
}

func NewHandler(service SessionService, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes mounts the session endpoints. Everything except login sits
// behind the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/google", h.GoogleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.Middleware)
		r.Get("/auth/me", h.Me)
		r.Post("/auth/refresh", h.Refresh)
		r.Post("/auth/logout", h.Logout)
		r.Post("/auth/track-activity", h.TrackActivity)
	})
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseGoogleLoginDTO(r.Body)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	session, err := h.service.LoginWithGoogle(r.Context(), dto.Token, transport.ClientIP(r), r.UserAgent())
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, toLoginResponseDTO(session), "login successful")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, ErrInvalidCredential)
		return
	}

	account, err := h.service.Me(r.Context(), principal)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, toSessionUserDTO(account), "")
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	principal, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, ErrInvalidCredential)
		return
	}

	session, err := h.service.Refresh(r.Context(), principal)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, toLoginResponseDTO(session), "session refreshed")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, ErrInvalidCredential)
		return
	}

	if err := h.service.Logout(r.Context(), principal); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, nil, "logged out")
}

func (h *Handler) TrackActivity(w http.ResponseWriter, r *http.Request) {
	principal, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, ErrInvalidCredential)
		return
	}

	if err := h.service.TrackActivity(r.Context(), principal); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, nil, "")
}

// Middleware resolves the session credential into a principal and stores it
// in the request context. The principal's role is whatever the credential was
// minted with; it is not re-read from storage per request.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, ErrInvalidCredential)
			return
		}

		principal, err := h.service.DecodeCredential(token)
		if err != nil {
			h.WriteError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), principal)))
	})
}
