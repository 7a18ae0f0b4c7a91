package document

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/locpham246/task-manager/internal"
)

// allowed Google hosts for shared links; drive.google.com covers folders and
// uploaded files.
var allowedDocHosts = map[string]bool{
	"docs.google.com":  true,
	"drive.google.com": true,
}

func validateDocURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "https" || !allowedDocHosts[parsed.Host] {
		return internal.NewValidationError("url must be a docs.google.com or drive.google.com link", internal.ErrCodeInvalidDocLink)
	}
	return nil
}

type ShareDocumentDTO struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	SharedWith  []int64 `json:"shared_with"`
}

func ParseShareDocumentDTO(body io.Reader) (*ShareDocumentDTO, error) {
	var dto ShareDocumentDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}

	dto.Title = strings.TrimSpace(dto.Title)
	if dto.Title == "" {
		return nil, internal.NewValidationError("title is required", internal.ErrCodeValidationFailed)
	}
	if dto.URL == "" {
		return nil, internal.NewValidationError("url is required", internal.ErrCodeValidationFailed)
	}
	if err := validateDocURL(dto.URL); err != nil {
		return nil, err
	}
	return &dto, nil
}

type UpdateSharesDTO struct {
	SharedWith []int64 `json:"shared_with"`
}

func ParseUpdateSharesDTO(body io.Reader) (*UpdateSharesDTO, error) {
	var dto UpdateSharesDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}
	return &dto, nil
}
