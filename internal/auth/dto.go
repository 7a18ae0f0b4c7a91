package auth

import (
	"encoding/json"
	"io"
	"time"

	"github.com/locpham246/task-manager/internal"
)

// GoogleLoginDTO is the login request body: the raw Google ID token.
type GoogleLoginDTO struct {
	Token string `json:"token"`
}

func ParseGoogleLoginDTO(body io.Reader) (*GoogleLoginDTO, error) {
	var dto GoogleLoginDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}
	if dto.Token == "" {
		return nil, ErrMissingToken
	}
	return &dto, nil
}

// SessionUserDTO is the account shape returned by login, refresh and me.
// name/picture duplicate full_name/avatar for older clients.
type SessionUserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

type LoginResponseDTO struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      SessionUserDTO `json:"user"`
}

func toSessionUserDTO(account *Account) SessionUserDTO {
	return SessionUserDTO{
		ID:       account.ID,
		Email:    account.Email,
		FullName: account.FullName,
		Name:     account.FullName,
		Role:     account.Role,
		Avatar:   account.Avatar,
		Picture:  account.Avatar,
	}
}

func toLoginResponseDTO(session *Session) LoginResponseDTO {
	return LoginResponseDTO{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toSessionUserDTO(session.Account),
	}
}
