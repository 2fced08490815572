package repositories

import (
	"context"

	"gorm.io/gorm"

	"feedback-ai/models"
)

// SQLFeedbackRepository stores feedback in PostgreSQL or SQLite through GORM.
type SQLFeedbackRepository struct {
	db *gorm.DB
}

func NewSQLFeedbackRepository(db *gorm.DB) *SQLFeedbackRepository {
	return &SQLFeedbackRepository{db: db}
}

// Insert runs the insert in its own transaction; any error rolls it back.
func (r *SQLFeedbackRepository) Insert(ctx context.Context, rec *models.FeedbackRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
}

func (r *SQLFeedbackRepository) ListAll(ctx context.Context) ([]models.FeedbackRecord, error) {
	records := []models.FeedbackRecord{}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return normalizeActions(records), nil
}
