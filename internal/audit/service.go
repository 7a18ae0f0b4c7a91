package audit

import (
	"context"
	"log/slog"

	"github.com/locpham246/task-manager/internal"
)

// DefaultListLimit caps the audit log listing; the admin UI pages by
// re-querying, not by offset.
const DefaultListLimit = 100

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Record writes one entry. Failures are logged and swallowed.
func (s *Service) Record(ctx context.Context, actorID int64, action string, details Details) {
	entry := &Entry{
		UserID:  actorID,
		Action:  action,
		Details: details,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("audit entry dropped",
			"actor_id", actorID,
			"action", action,
			"error", err)
	}
}

// ListRecent returns the newest entries with actor identity attached.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]EntryView, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, internal.NewDependencyError("failed to read audit log", err)
	}
	return entries, nil
}
