package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/locpham246/task-manager/internal/auth"
	"github.com/locpham246/task-manager/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

// UpsertOnLogin inserts the account on first login and refreshes the Google
// profile fields on every later one, in a single conflict-on-email statement
// so concurrent first logins cannot race into a unique-constraint failure.
// The role column is deliberately left out of the update set: an admin
// promotion must survive the next login.
func (r *UserRepository) UpsertOnLogin(ctx context.Context, profile auth.LoginProfile) (*auth.Account, error) {
	now := time.Now()

	account := user.Account{
		Email:        profile.Email,
		FullName:     profile.FullName,
		Avatar:       profile.Avatar,
		Role:         auth.RoleMember,
		IsOnline:     true,
		LastActivity: &now,
		LastLoginAt:  &now,
		IPAddress:    profile.IPAddress,
		DeviceInfo:   profile.DeviceInfo,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"full_name":     profile.FullName,
			"avatar":        profile.Avatar,
			"is_online":     true,
			"last_activity": now,
			"last_login_at": now,
			"ip_address":    profile.IPAddress,
			"device_info":   profile.DeviceInfo,
			"updated_at":    now,
		}),
	}).Create(&account).Error
	if err != nil {
		return nil, err
	}

	// The conflict path does not report the stored role; re-read the row.
	var stored user.Account
	if err := r.db.WithContext(ctx).Where("email = ?", profile.Email).First(&stored).Error; err != nil {
		return nil, err
	}
	return toAuthAccount(&stored), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.Account, error) {
	account, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAuthAccount(account), nil
}

func (r *UserRepository) TouchActivity(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&user.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online":     true,
			"last_activity": now,
			"updated_at":    now,
		}).Error
}

func (r *UserRepository) SetOffline(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&user.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online":  false,
			"updated_at": time.Now(),
		}).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.Account, error) {
	var account user.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.Account, error) {
	var account user.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.Account, error) {
	var accounts []user.Account
	err := r.db.WithContext(ctx).Order("full_name ASC").Find(&accounts).Error
	return accounts, err
}

func (r *UserRepository) ListByActivity(ctx context.Context, limit int) ([]user.Account, error) {
	var accounts []user.Account
	err := r.db.WithContext(ctx).
		Where("last_activity IS NOT NULL").
		Order("last_activity DESC").
		Limit(limit).
		Find(&accounts).Error
	return accounts, err
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	result := r.db.WithContext(ctx).Model(&user.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func toAuthAccount(account *user.Account) *auth.Account {
	return &auth.Account{
		ID:       account.ID,
		Email:    account.Email,
		FullName: account.FullName,
		Avatar:   account.Avatar,
		Role:     account.Role,
	}
}
