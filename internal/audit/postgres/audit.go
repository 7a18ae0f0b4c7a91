package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/locpham246/task-manager/internal/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *audit.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListRecent joins the actor so the admin UI does not resolve names
// client-side.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]audit.EntryView, error) {
	var entries []audit.EntryView
	err := r.db.WithContext(ctx).
		Table("audit_logs").
		Select("audit_logs.*, users.full_name AS user_name, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Order("audit_logs.created_at DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}
