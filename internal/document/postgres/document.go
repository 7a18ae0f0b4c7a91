package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/locpham246/task-manager/internal/document"
)

type documentShare struct {
	DocumentID int64 `gorm:"primaryKey"`
	UserID     int64 `gorm:"primaryKey"`
}

func (documentShare) TableName() string { return "document_shares" }

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) document.Repository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *document.SharedDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		return insertShares(tx, doc.ID, doc.SharedWith)
	})
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*document.SharedDocument, error) {
	var doc document.SharedDocument
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrDocumentNotFound
		}
		return nil, err
	}

	shares, err := r.loadShares(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.SharedWith = shares
	return &doc, nil
}

// ListVisible returns every document for admins. Members see only documents
// they shared and documents explicitly shared with them.
func (r *DocumentRepository) ListVisible(ctx context.Context, viewerID int64, all bool) ([]document.SharedDocument, error) {
	query := r.db.WithContext(ctx).
		Table("shared_documents").
		Select("shared_documents.*, users.full_name AS shared_by_name").
		Joins("LEFT JOIN users ON users.id = shared_documents.shared_by")

	if !all {
		query = query.Where(
			`shared_documents.shared_by = ?
			OR shared_documents.id IN (SELECT document_id FROM document_shares WHERE user_id = ?)`,
			viewerID, viewerID)
	}

	var docs []document.SharedDocument
	if err := query.Order("shared_documents.created_at DESC").Scan(&docs).Error; err != nil {
		return nil, err
	}

	for i := range docs {
		shares, err := r.loadShares(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].SharedWith = shares
	}
	return docs, nil
}

func (r *DocumentRepository) ReplaceShares(ctx context.Context, docID int64, userIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&documentShare{}).Error; err != nil {
			return err
		}
		if err := insertShares(tx, docID, userIDs); err != nil {
			return err
		}
		return tx.Model(&document.SharedDocument{}).
			Where("id = ?", docID).
			Update("updated_at", time.Now()).Error
	})
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&documentShare{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&document.SharedDocument{}).Error
	})
}

func (r *DocumentRepository) loadShares(ctx context.Context, docID int64) ([]int64, error) {
	var userIDs []int64
	err := r.db.WithContext(ctx).
		Model(&documentShare{}).
		Where("document_id = ?", docID).
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

func insertShares(tx *gorm.DB, docID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]documentShare, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, documentShare{DocumentID: docID, UserID: userID})
	}
	return tx.Create(&rows).Error
}
