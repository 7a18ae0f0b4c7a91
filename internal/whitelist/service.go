package whitelist

import (
	"context"
	"errors"
	"log/slog"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/audit"
	"github.com/locpham246/task-manager/internal/auth"
)

type Service struct {
	repo    Repository
	auditor audit.Recorder
	policy  auth.Policy
	logger  *slog.Logger
}

func NewService(repo Repository, auditor audit.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		auditor: auditor,
		policy:  auth.NewPolicy(),
		logger:  logger,
	}
}

// IsActive implements the login-time whitelist check. A missing entry is not
// an error, just inactive.
func (s *Service) IsActive(ctx context.Context, email string) (bool, error) {
	entry, err := s.repo.FindByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	return entry.IsActive, nil
}

// List returns every entry, active or not. Super admin only.
func (s *Service) List(ctx context.Context, actor *auth.User) ([]Entry, error) {
	if !s.policy.CanManageWhitelist(actor.Role) {
		return nil, auth.ErrRoleDenied
	}
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewDependencyError("failed to list whitelist", err)
	}
	return entries, nil
}

// Add whitelists an email. A previously removed entry is reactivated in
// place; an already active one is a conflict.
func (s *Service) Add(ctx context.Context, actor *auth.User, email, notes string) (*Entry, error) {
	if !s.policy.CanManageWhitelist(actor.Role) {
		return nil, auth.ErrRoleDenied
	}

	email = auth.NormalizeEmail(email)
	if email == "" {
		return nil, internal.NewValidationError("email is required", internal.ErrCodeInvalidEmail)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsActive:
		return nil, ErrEntryExists
	case err == nil:
		existing.IsActive = true
		existing.AddedBy = actor.ID
		if notes != "" {
			existing.Notes = notes
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, internal.NewDependencyError("failed to reactivate whitelist entry", err)
		}
		s.recordChange(ctx, actor.ID, audit.ActionAddWhitelist, existing, "reactivated")
		return existing, nil
	case !errors.Is(err, ErrEntryNotFound):
		return nil, internal.NewDependencyError("failed to check whitelist", err)
	}

	entry := &Entry{
		Email:    email,
		AddedBy:  actor.ID,
		Notes:    notes,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, internal.NewDependencyError("failed to add whitelist entry", err)
	}
	s.recordChange(ctx, actor.ID, audit.ActionAddWhitelist, entry, "created")
	return entry, nil
}

// Update edits the notes or active flag of an entry.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, notes *string, isActive *bool) (*Entry, error) {
	if !s.policy.CanManageWhitelist(actor.Role) {
		return nil, auth.ErrRoleDenied
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notes != nil {
		entry.Notes = *notes
	}
	if isActive != nil {
		entry.IsActive = *isActive
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, internal.NewDependencyError("failed to update whitelist entry", err)
	}

	s.recordChange(ctx, actor.ID, audit.ActionUpdateWhitelist, entry, "updated")
	return entry, nil
}

// Remove deactivates an entry. The email immediately stops passing the login
// gate; existing sessions are unaffected until they expire.
func (s *Service) Remove(ctx context.Context, actor *auth.User, id int64) error {
	if !s.policy.CanManageWhitelist(actor.Role) {
		return auth.ErrRoleDenied
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.IsActive {
		entry.IsActive = false
		if err := s.repo.Update(ctx, entry); err != nil {
			return internal.NewDependencyError("failed to remove whitelist entry", err)
		}
	}

	s.recordChange(ctx, actor.ID, audit.ActionRemoveWhitelist, entry, "deactivated")
	return nil
}

func (s *Service) recordChange(ctx context.Context, actorID int64, action string, entry *Entry, change string) {
	s.auditor.Record(ctx, actorID, action, audit.Details{
		"entry_id": entry.ID,
		"email":    entry.Email,
		"change":   change,
	})
}
