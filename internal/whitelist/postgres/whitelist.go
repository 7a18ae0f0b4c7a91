package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/locpham246/task-manager/internal/whitelist"
)

type WhitelistRepository struct {
	db *gorm.DB
}

func NewWhitelistRepository(db *gorm.DB) whitelist.Repository {
	return &WhitelistRepository{db: db}
}

func (r *WhitelistRepository) FindByEmail(ctx context.Context, email string) (*whitelist.Entry, error) {
	var entry whitelist.Entry
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, whitelist.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *WhitelistRepository) FindByID(ctx context.Context, id int64) (*whitelist.Entry, error) {
	var entry whitelist.Entry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, whitelist.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *WhitelistRepository) List(ctx context.Context) ([]whitelist.Entry, error) {
	var entries []whitelist.Entry
	err := r.db.WithContext(ctx).
		Table("email_whitelist").
		Select("email_whitelist.*, users.full_name AS added_by_name").
		Joins("LEFT JOIN users ON users.id = email_whitelist.added_by").
		Order("email_whitelist.created_at DESC").
		Scan(&entries).Error
	return entries, err
}

func (r *WhitelistRepository) Create(ctx context.Context, entry *whitelist.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *WhitelistRepository) Update(ctx context.Context, entry *whitelist.Entry) error {
	entry.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(entry).Error
}
