package whitelist

import (
	"encoding/json"
	"io"
	"net/mail"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/auth"
)

type AddEntryDTO struct {
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func ParseAddEntryDTO(body io.Reader) (*AddEntryDTO, error) {
	var dto AddEntryDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}

	dto.Email = auth.NormalizeEmail(dto.Email)
	if dto.Email == "" {
		return nil, internal.NewValidationError("email is required", internal.ErrCodeInvalidEmail)
	}
	if _, err := mail.ParseAddress(dto.Email); err != nil {
		return nil, internal.NewValidationError("invalid email address", internal.ErrCodeInvalidEmail)
	}
	return &dto, nil
}

type UpdateEntryDTO struct {
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"is_active"`
}

func ParseUpdateEntryDTO(body io.Reader) (*UpdateEntryDTO, error) {
	var dto UpdateEntryDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}
	if dto.Notes == nil && dto.IsActive == nil {
		return nil, internal.NewValidationError("no fields to update", internal.ErrCodeValidationFailed)
	}
	return &dto, nil
}
