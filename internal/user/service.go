package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/audit"
	"github.com/locpham246/task-manager/internal/auth"
)

const activityFeedLimit = 50

type Service struct {
	repo         Repository
	auditor      audit.Recorder
	mailer       Mailer
	policy       auth.Policy
	inviteDomain string
	now          func() time.Time
	logger       *slog.Logger
}

func NewService(repo Repository, auditor audit.Recorder, mailer Mailer, inviteDomain string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		auditor:      auditor,
		mailer:       mailer,
		policy:       auth.NewPolicy(),
		inviteDomain: inviteDomain,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock overrides the presence clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) InviteDomain() string {
	return s.inviteDomain
}

// ListUsers returns every account with derived presence. Admin and above.
func (s *Service) ListUsers(ctx context.Context, actor *auth.User) ([]UserDTO, error) {
	if !s.policy.CanListUsers(actor.Role) {
		return nil, auth.ErrRoleDenied
	}

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewDependencyError("failed to list users", err)
	}

	now := s.now()
	dtos := make([]UserDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, toUserDTO(&accounts[i], now))
	}
	return dtos, nil
}

// ListActivities returns the presence feed ordered by most recent activity.
// Admin and above.
func (s *Service) ListActivities(ctx context.Context, actor *auth.User) ([]ActivityDTO, error) {
	if !s.policy.CanViewActivity(actor.Role) {
		return nil, auth.ErrRoleDenied
	}

	accounts, err := s.repo.ListByActivity(ctx, activityFeedLimit)
	if err != nil {
		return nil, internal.NewDependencyError("failed to list activities", err)
	}

	now := s.now()
	dtos := make([]ActivityDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, toActivityDTO(&accounts[i], now))
	}
	return dtos, nil
}

// GetUser returns one account. Super admin only.
func (s *Service) GetUser(ctx context.Context, actor *auth.User, targetID int64) (*UserDTO, error) {
	if !s.policy.CanViewUser(actor.Role) {
		return nil, auth.ErrRoleDenied
	}

	account, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	dto := toUserDTO(account, s.now())
	return &dto, nil
}

// GetProfile returns the extended profile: the account itself or super_admin.
func (s *Service) GetProfile(ctx context.Context, actor *auth.User, targetID int64) (*ProfileDTO, error) {
	if !s.policy.CanViewProfile(actor.Role, actor.ID, targetID) {
		return nil, auth.ErrRoleDenied
	}

	account, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	dto := toProfileDTO(account, s.now())
	return &dto, nil
}

// ChangeRole updates a user's role. Super admin only; self-demotion is
// rejected. Sessions minted before the change keep the old role until they
// expire or refresh.
func (s *Service) ChangeRole(ctx context.Context, actor *auth.User, targetID int64, newRole auth.Role) (*UserDTO, error) {
	if err := s.policy.CanChangeRole(actor.Role, actor.ID, targetID, newRole); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	oldRole := account.Role
	if err := s.repo.UpdateRole(ctx, targetID, newRole); err != nil {
		return nil, internal.NewDependencyError("failed to update role", err)
	}
	account.Role = newRole

	s.auditor.Record(ctx, actor.ID, audit.ActionUpdateUserRole, audit.Details{
		"target_id": targetID,
		"email":     account.Email,
		"old_role":  string(oldRole),
		"new_role":  string(newRole),
	})
	s.logger.Info("role changed", "actor_id", actor.ID, "target_id", targetID, "old_role", oldRole, "new_role", newRole)

	dto := toUserDTO(account, s.now())
	return &dto, nil
}

// InviteUser sends an invitation email. An email that already has an account
// short-circuits to a success response instead of sending mail. Delivery is
// best-effort: a failing mailer is logged and audited, never surfaced as an
// error. The invitation does not whitelist the address; that stays a separate
// super_admin action.
func (s *Service) InviteUser(ctx context.Context, actor *auth.User, email string) (*InviteResultDTO, error) {
	if !s.policy.CanInviteUsers(actor.Role) {
		return nil, auth.ErrRoleDenied
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.auditor.Record(ctx, actor.ID, audit.ActionInviteUser, audit.Details{
			"invited_email":   email,
			"invited_user_id": existing.ID,
			"status":          "already_exists",
		})
		return &InviteResultDTO{Email: existing.Email, Role: existing.Role, Exists: true}, nil
	case !errors.Is(err, ErrUserNotFound):
		return nil, internal.NewDependencyError("failed to check existing account", err)
	}

	inviter, err := s.repo.FindByID(ctx, actor.ID)
	inviterName := actor.Email
	if err == nil && inviter.FullName != "" {
		inviterName = inviter.FullName
	}

	emailSent := false
	if s.mailer != nil {
		if err := s.mailer.SendInvitation(email, inviterName); err != nil {
			s.logger.Error("invitation email failed", "email", email, "error", err)
		} else {
			emailSent = true
		}
	}

	s.auditor.Record(ctx, actor.ID, audit.ActionInviteUser, audit.Details{
		"invited_email": email,
		"email_sent":    emailSent,
	})
	s.logger.Info("invitation recorded", "actor_id", actor.ID, "email", email, "email_sent", emailSent)
	return &InviteResultDTO{Email: email, EmailSent: emailSent}, nil
}
