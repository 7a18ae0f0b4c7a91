package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/core/events"
)

// AccountStore is what the authentication flow needs from account storage.
// The user package's repository implements it.
type AccountStore interface {
	UpsertOnLogin(ctx context.Context, profile LoginProfile) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	TouchActivity(ctx context.Context, id int64) error
	SetOffline(ctx context.Context, id int64) error
}

// WhitelistChecker answers whether an email currently holds an active
// whitelist entry.
type WhitelistChecker interface {
	IsActive(ctx context.Context, email string) (bool, error)
}

// EventPublisher decouples the login flow from audit bookkeeping.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Session is the result of a successful login or refresh.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

type Service struct {
	verifier          IdentityVerifier
	tokens            TokenGenerator
	policy            Policy
	accounts          AccountStore
	whitelist         WhitelistChecker
	events            EventPublisher
	whitelistEnforced bool
	logger            *slog.Logger
}

func NewService(
	verifier IdentityVerifier,
	tokens TokenGenerator,
	accounts AccountStore,
	whitelist WhitelistChecker,
	publisher EventPublisher,
	whitelistEnforced bool,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		verifier:          verifier,
		tokens:            tokens,
		policy:            NewPolicy(),
		accounts:          accounts,
		whitelist:         whitelist,
		events:            publisher,
		whitelistEnforced: whitelistEnforced,
		logger:            logger,
	}
}

// LoginWithGoogle runs the full login pipeline: verify the Google ID token,
// gate on the whitelist, upsert the account, mint a session credential. The
// whitelist check happens before any write so a rejected email leaves no
// account row behind.
func (s *Service) LoginWithGoogle(ctx context.Context, rawToken, ipAddress, deviceInfo string) (*Session, error) {
	identity, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(identity.Email)
	if email == "" {
		return nil, internal.NewValidationError("Google token carries no email", internal.ErrCodeInvalidEmail)
	}

	if s.whitelistEnforced {
		active, err := s.whitelist.IsActive(ctx, email)
		if err != nil {
			return nil, internal.NewDependencyError("whitelist lookup failed", err)
		}
		if !s.policy.CanAuthenticate(s.whitelistEnforced, active) {
			s.logger.Warn("login rejected: email not whitelisted", "email", email)
			return nil, ErrNotWhitelisted
		}
	}

	account, err := s.accounts.UpsertOnLogin(ctx, LoginProfile{
		Email:      email,
		FullName:   identity.Name,
		Avatar:     identity.Picture,
		IPAddress:  ipAddress,
		DeviceInfo: deviceInfo,
	})
	if err != nil {
		return nil, internal.NewDependencyError("account upsert failed", err)
	}

	session, err := s.issueFor(account)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewLoginEvent(account.ID, account.Email, ipAddress, deviceInfo)); err != nil {
			s.logger.Error("failed to publish login event", "account_id", account.ID, "error", err)
		}
	}

	s.logger.Info("login succeeded", "account_id", account.ID, "email", account.Email, "role", account.Role)
	return session, nil
}

// Me returns the current account for the authenticated principal.
func (s *Service) Me(ctx context.Context, principal *User) (*Account, error) {
	account, err := s.accounts.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Refresh mints a fresh credential from the stored account, picking up any
// role change since the old credential was issued. The old credential stays
// valid until its own expiry.
func (s *Service) Refresh(ctx context.Context, principal *User) (*Session, error) {
	account, err := s.accounts.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return s.issueFor(account)
}

// TrackActivity bumps the account's last-activity timestamp; presence is
// derived from it.
func (s *Service) TrackActivity(ctx context.Context, principal *User) error {
	if err := s.accounts.TouchActivity(ctx, principal.ID); err != nil {
		return internal.NewDependencyError("activity update failed", err)
	}
	return nil
}

// Logout marks the account offline and publishes the logout event. The
// session credential itself cannot be revoked; the client discards it.
func (s *Service) Logout(ctx context.Context, principal *User) error {
	if err := s.accounts.SetOffline(ctx, principal.ID); err != nil {
		s.logger.Error("failed to mark account offline", "account_id", principal.ID, "error", err)
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewLogoutEvent(principal.ID, principal.Email)); err != nil {
			s.logger.Error("failed to publish logout event", "account_id", principal.ID, "error", err)
		}
	}
	return nil
}

// DecodeCredential resolves a session credential into a principal. Fails
// closed on any defect.
func (s *Service) DecodeCredential(rawToken string) (*User, error) {
	claims, err := s.tokens.Decode(rawToken)
	if err != nil {
		return nil, err
	}
	return &User{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func (s *Service) issueFor(account *Account) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(User{ID: account.ID, Email: account.Email, Role: account.Role})
	if err != nil {
		return nil, internal.NewInternalError("failed to issue session credential", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}
