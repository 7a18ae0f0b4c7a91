package user

import (
	"encoding/json"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/auth"
)

// UserDTO is the listing shape. is_online is the derived presence, not the
// raw column.
type UserDTO struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Avatar       string     `json:"avatar,omitempty"`
	Role         auth.Role  `json:"role"`
	IsOnline     bool       `json:"is_online"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ProfileDTO adds the login metadata only the owner or a super_admin may see.
type ProfileDTO struct {
	UserDTO
	IPAddress  string `json:"ip_address,omitempty"`
	DeviceInfo string `json:"device_info,omitempty"`
}

// ActivityDTO is the presence feed entry.
type ActivityDTO struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	IsOnline     bool       `json:"is_online"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

func toUserDTO(account *Account, now time.Time) UserDTO {
	return UserDTO{
		ID:           account.ID,
		Email:        account.Email,
		FullName:     account.FullName,
		Avatar:       account.Avatar,
		Role:         account.Role,
		IsOnline:     account.Online(now),
		LastActivity: account.LastActivity,
		LastLoginAt:  account.LastLoginAt,
		CreatedAt:    account.CreatedAt,
	}
}

func toProfileDTO(account *Account, now time.Time) ProfileDTO {
	return ProfileDTO{
		UserDTO:    toUserDTO(account, now),
		IPAddress:  account.IPAddress,
		DeviceInfo: account.DeviceInfo,
	}
}

func toActivityDTO(account *Account, now time.Time) ActivityDTO {
	return ActivityDTO{
		ID:           account.ID,
		Email:        account.Email,
		FullName:     account.FullName,
		IsOnline:     account.Online(now),
		LastActivity: account.LastActivity,
	}
}

type UpdateRoleDTO struct {
	Role auth.Role `json:"role"`
}

func ParseUpdateRoleDTO(body io.Reader) (*UpdateRoleDTO, error) {
	var dto UpdateRoleDTO
	if err := json.NewDecoder(body).Decode(&dto); err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}
	if !dto.Role.Valid() {
		return nil, internal.NewValidationError("role must be member, admin or super_admin", internal.ErrCodeInvalidRole)
	}
	return &dto, nil
}

type InviteUserDTO struct {
	Email string `json:"email"`
}

// InviteResultDTO reports what the invitation did. Exists means the address
// already had an account; EmailSent reports the best-effort delivery outcome.
type InviteResultDTO struct {
	Email     string    `json:"email"`
	Role      auth.Role `json:"role,omitempty"`
	Exists    bool      `json:"exists"`
	EmailSent bool      `json:"email_sent"`
}

// ParseInviteUserDTO validates the address and, when an organization domain
// is configured, restricts invitations to it.
func ParseInviteUserDTO(body io.Reader, requiredDomain string) (*InviteUserDTO, error) {
	var dto InviteUserDTO
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
	if requiredDomain != "" && !strings.HasSuffix(dto.Email, "@"+requiredDomain) {
		return nil, internal.NewValidationError("only "+requiredDomain+" addresses can be invited", internal.ErrCodeInvalidEmail)
	}
	return &dto, nil
}
