// Package whitelist gates login on an approved-email list maintained by
// super admins. Removal deactivates the entry rather than deleting it so the
// approval history stays intact.
package whitelist

import (
	"context"
	"time"

	"github.com/locpham246/task-manager/internal"
)

type Entry struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	AddedBy   int64     `json:"added_by"`
	Notes     string    `json:"notes"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AddedByName is populated on listings only.
	AddedByName string `json:"added_by_name,omitempty" gorm:"-"`
}

func (Entry) TableName() string { return "email_whitelist" }

var (
	ErrEntryNotFound = internal.NewNotFoundError("whitelist entry not found", internal.ErrCodeWhitelistNotFound)
	ErrEntryExists   = internal.NewConflictError("email is already whitelisted", internal.ErrCodeDuplicateWhitelist)
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Entry, error)
	FindByID(ctx context.Context, id int64) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Create(ctx context.Context, entry *Entry) error
	Update(ctx context.Context, entry *Entry) error
}
