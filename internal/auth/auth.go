package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/locpham246/task-manager/internal"
)

// Role is the single authority level attached to an account. Roles are
// strictly ordered: member < admin < super_admin.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries admin authority (admin or above).
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// IdentityClaims is the verified payload of an external Google ID token.
// It lives for a single login attempt and is never persisted.
type IdentityClaims struct {
	Email     string
	Name      string
	Picture   string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	NotBefore *time.Time
}

// User is the authenticated principal resolved from a session credential.
// The role here is whatever the credential was minted with; it goes stale
// after an administrative role change until the client calls refresh or the
// credential expires.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// SessionClaims is the JWT claim set of a session credential.
type SessionClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Account is the authentication layer's view of a stored account. The full
// account model (presence, device info, timestamps) lives in the user package.
type Account struct {
	ID       int64
	Email    string
	FullName string
	Avatar   string
	Role     Role
}

// LoginProfile carries the verified identity plus request metadata captured
// at login time.
type LoginProfile struct {
	Email      string
	FullName   string
	Avatar     string
	IPAddress  string
	DeviceInfo string
}

// NormalizeEmail trims and lowercases an address. Every comparison and every
// write of an email goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Verification and session errors. Each maps to a distinct user-facing
// message; none leaks internal detail beyond its category.
var (
	ErrMissingToken     = internal.NewValidationError("token is required", internal.ErrCodeMissingToken)
	ErrMalformedToken   = internal.NewUnauthorizedError("Google token is malformed", internal.ErrCodeMalformedToken)
	ErrAudienceMismatch = internal.NewUnauthorizedError("Google token was issued for a different application", internal.ErrCodeAudienceMismatch)
	ErrTokenExpired     = internal.NewUnauthorizedError("Google token has expired, please sign in again", internal.ErrCodeTokenExpired)
	ErrSignatureInvalid = internal.NewUnauthorizedError("Google token signature could not be verified", internal.ErrCodeSignatureInvalid)

	ErrInvalidCredential = internal.NewUnauthorizedError("invalid or expired session", internal.ErrCodeInvalidCredential)
	ErrNotWhitelisted    = internal.NewForbiddenError("access denied: your email has not been approved, contact an administrator", internal.ErrCodeNotWhitelisted)
	ErrAccountNotFound   = internal.NewNotFoundError("account not found", internal.ErrCodeUserNotFound)
)
