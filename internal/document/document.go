// Package document implements shared document links: a member shares a Google
// Docs URL with specific accounts, and only the sharer or an admin may later
// change or remove it.
package document

import (
	"context"
	"time"

	"github.com/locpham246/task-manager/internal"
)

// SharedDocument is one shared link. Visibility is the sharer plus the
// accounts in SharedWith; admins see everything.
type SharedDocument struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	SharedBy    int64     `json:"shared_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	SharedWith []int64 `json:"shared_with" gorm:"-"`

	// SharedByName is populated on listings only.
	SharedByName string `json:"shared_by_name,omitempty" gorm:"-"`
}

func (SharedDocument) TableName() string { return "shared_documents" }

var ErrDocumentNotFound = internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)

type Repository interface {
	Create(ctx context.Context, doc *SharedDocument) error
	GetByID(ctx context.Context, id int64) (*SharedDocument, error)
	ListVisible(ctx context.Context, viewerID int64, all bool) ([]SharedDocument, error)
	ReplaceShares(ctx context.Context, docID int64, userIDs []int64) error
	Delete(ctx context.Context, id int64) error
}
