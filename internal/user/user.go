// Package user owns account records: identity fields synced from Google at
// login, the authority role, and presence bookkeeping.
package user

import (
	"context"
	"time"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/auth"
)

// PresenceWindow is how long after the last tracked activity an account still
// counts as online.
const PresenceWindow = 5 * time.Minute

// Account is the stored account row. Profile fields mirror whatever Google
// reported at the most recent login; Role is managed locally and survives
// re-login.
type Account struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex"`
	FullName     string     `json:"full_name"`
	Avatar       string     `json:"avatar"`
	Role         auth.Role  `json:"role"`
	IsOnline     bool       `json:"is_online"`
	LastActivity *time.Time `json:"last_activity"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	IPAddress    string     `json:"ip_address"`
	DeviceInfo   string     `json:"device_info"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Account) TableName() string { return "users" }

// Online derives effective presence: the flag alone is not trusted because a
// closed browser never sends a logout.
func (a *Account) Online(now time.Time) bool {
	if !a.IsOnline || a.LastActivity == nil {
		return false
	}
	return now.Sub(*a.LastActivity) < PresenceWindow
}

var (
	ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
)

// Repository is the account store. It also backs auth.AccountStore so the
// login flow and the admin surface share one implementation.
type Repository interface {
	UpsertOnLogin(ctx context.Context, profile auth.LoginProfile) (*auth.Account, error)
	GetByID(ctx context.Context, id int64) (*auth.Account, error)
	TouchActivity(ctx context.Context, id int64) error
	SetOffline(ctx context.Context, id int64) error

	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	ListByActivity(ctx context.Context, limit int) ([]Account, error)
	UpdateRole(ctx context.Context, id int64, role auth.Role) error
}

// Mailer sends invitation emails. A nil mailer disables invitations' email
// side effect without disabling the endpoint.
type Mailer interface {
	SendInvitation(toEmail, inviterName string) error
}
