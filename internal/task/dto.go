package task

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/auth"
)

// docLinkPaths are the Google Docs product paths accepted as documentation
// links.
var docLinkPaths = []string{"/document/", "/spreadsheets/", "/presentation/", "/forms/"}

func validateDocLinks(links []string) error {
	for _, link := range links {
		parsed, err := url.Parse(link)
		if err != nil || parsed.Scheme != "https" || parsed.Host != "docs.google.com" {
			return internal.NewValidationError("documentation links must be docs.google.com URLs", internal.ErrCodeInvalidDocLink)
		}
		ok := false
		for _, prefix := range docLinkPaths {
			if strings.HasPrefix(parsed.Path, prefix) {
				ok = true
				break
			}
		}
		if !ok {
			return internal.NewValidationError("documentation links must point to a document, spreadsheet, presentation or form", internal.ErrCodeInvalidDocLink)
		}
	}
	return nil
}

type CreateTaskDTO struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Assignees   []int64    `json:"assignees"`
	DueDate     *time.Time `json:"due_date"`
	DocLinks    []string   `json:"documentation_links"`
}

func ParseCreateTaskDTO(body io.Reader) (*CreateTaskDTO, error) {
	var dto CreateTaskDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}

	dto.Title = strings.TrimSpace(dto.Title)
	if dto.Title == "" {
		return nil, internal.NewValidationError("title is required", internal.ErrCodeValidationFailed)
	}
	if dto.Status == "" {
		dto.Status = StatusPending
	}
	if !dto.Status.Valid() {
		return nil, internal.NewValidationError("status must be pending, in_progress or done", internal.ErrCodeInvalidStatus)
	}
	if dto.Priority == "" {
		dto.Priority = PriorityMedium
	}
	if !dto.Priority.Valid() {
		return nil, internal.NewValidationError("priority must be low, medium or high", internal.ErrCodeInvalidPriority)
	}
	if err := validateDocLinks(dto.DocLinks); err != nil {
		return nil, err
	}
	return &dto, nil
}

// UpdateTaskDTO is a partial update: only present fields are applied, and
// only after the field-level policy filters them.
type UpdateTaskDTO struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *Status    `json:"status"`
	Priority    *Priority  `json:"priority"`
	Assignees   *[]int64   `json:"assignees"`
	DueDate     *time.Time `json:"due_date"`
	DocLinks    *[]string  `json:"documentation_links"`
}

func ParseUpdateTaskDTO(body io.Reader) (*UpdateTaskDTO, error) {
	var dto UpdateTaskDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}

	if dto.Title != nil && strings.TrimSpace(*dto.Title) == "" {
		return nil, internal.NewValidationError("title cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Status != nil && !dto.Status.Valid() {
		return nil, internal.NewValidationError("status must be pending, in_progress or done", internal.ErrCodeInvalidStatus)
	}
	if dto.Priority != nil && !dto.Priority.Valid() {
		return nil, internal.NewValidationError("priority must be low, medium or high", internal.ErrCodeInvalidPriority)
	}
	if dto.DocLinks != nil {
		if err := validateDocLinks(*dto.DocLinks); err != nil {
			return nil, err
		}
	}
	if len(dto.RequestedFields()) == 0 {
		return nil, internal.NewValidationError("no fields to update", internal.ErrCodeValidationFailed)
	}
	return &dto, nil
}

// RequestedFields lists the fields present in the payload, in policy
// vocabulary.
func (dto *UpdateTaskDTO) RequestedFields() []string {
	var fields []string
	if dto.Title != nil {
		fields = append(fields, auth.TaskFieldTitle)
	}
	if dto.Description != nil {
		fields = append(fields, auth.TaskFieldDescription)
	}
	if dto.Status != nil {
		fields = append(fields, auth.TaskFieldStatus)
	}
	if dto.Priority != nil {
		fields = append(fields, auth.TaskFieldPriority)
	}
	if dto.Assignees != nil {
		fields = append(fields, auth.TaskFieldAssignees)
	}
	if dto.DueDate != nil {
		fields = append(fields, auth.TaskFieldDueDate)
	}
	if dto.DocLinks != nil {
		fields = append(fields, auth.TaskFieldDocLinks)
	}
	return fields
}

type UpdateStatusDTO struct {
	Status Status `json:"status"`
}

func ParseUpdateStatusDTO(body io.Reader) (*UpdateStatusDTO, error) {
	var dto UpdateStatusDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}
	if !dto.Status.Valid() {
		return nil, internal.NewValidationError("status must be pending, in_progress or done", internal.ErrCodeInvalidStatus)
	}
	return &dto, nil
}
