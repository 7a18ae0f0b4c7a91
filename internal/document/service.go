package document

import (
	"context"
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

// List returns documents visible to the actor: admins see all, members see
// only their own shares and documents shared with them.
func (s *Service) List(ctx context.Context, actor *auth.User) ([]SharedDocument, error) {
	docs, err := s.repo.ListVisible(ctx, actor.ID, actor.Role.IsAdmin())
	if err != nil {
		return nil, internal.NewDependencyError("failed to list documents", err)
	}
	return docs, nil
}

// Share publishes a new document link owned by the actor.
func (s *Service) Share(ctx context.Context, actor *auth.User, dto *ShareDocumentDTO) (*SharedDocument, error) {
	doc := &SharedDocument{
		Title:       dto.Title,
		URL:         dto.URL,
		Description: dto.Description,
		SharedBy:    actor.ID,
		SharedWith:  dto.SharedWith,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, internal.NewDependencyError("failed to share document", err)
	}

	s.auditor.Record(ctx, actor.ID, audit.ActionShareDocument, audit.Details{
		"document_id":    doc.ID,
		"document_title": doc.Title,
		"shared_with":    dto.SharedWith,
	})
	return doc, nil
}

// UpdateShares replaces the share list. Only the original sharer or an admin
// may touch it.
func (s *Service) UpdateShares(ctx context.Context, actor *auth.User, docID int64, userIDs []int64) (*SharedDocument, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanManageDocument(actor.Role, actor.ID, doc.SharedBy) {
		return nil, auth.ErrNotOwner
	}

	if err := s.repo.ReplaceShares(ctx, docID, userIDs); err != nil {
		return nil, internal.NewDependencyError("failed to update document shares", err)
	}
	doc.SharedWith = userIDs

	s.auditor.Record(ctx, actor.ID, audit.ActionUpdateDocumentShares, audit.Details{
		"document_id":    doc.ID,
		"document_title": doc.Title,
		"shared_with":    userIDs,
	})
	return doc, nil
}

// Delete removes a shared document under the same ownership rule.
func (s *Service) Delete(ctx context.Context, actor *auth.User, docID int64) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !s.policy.CanManageDocument(actor.Role, actor.ID, doc.SharedBy) {
		return auth.ErrNotOwner
	}

	if err := s.repo.Delete(ctx, docID); err != nil {
		return internal.NewDependencyError("failed to delete document", err)
	}

	s.auditor.Record(ctx, actor.ID, audit.ActionDeleteDocument, audit.Details{
		"document_id":    doc.ID,
		"document_title": doc.Title,
	})
	return nil
}
