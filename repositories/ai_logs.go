package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"feedback-ai/models"
)

type AILogRepository struct {
	col *mongo.Collection
}

func NewAILogRepository(db *mongo.Database) *AILogRepository {
	return &AILogRepository{col: db.Collection("ai_logs")}
}

func (r *AILogRepository) Insert(ctx context.Context, log models.AILog) error {
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, log)
	return err
}

type SQLAILogRepository struct {
	db *gorm.DB
}

func NewSQLAILogRepository(db *gorm.DB) *SQLAILogRepository {
	return &SQLAILogRepository{db: db}
}

func (r *SQLAILogRepository) Insert(ctx context.Context, log models.AILog) error {
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

// ListByFeedback returns the attempts recorded for one submission, oldest first.
func (r *SQLAILogRepository) ListByFeedback(ctx context.Context, feedbackID string) ([]models.AILog, error) {
	var logs []models.AILog
	err := r.db.WithContext(ctx).
		Where("feedback_id = ?", feedbackID).
		Order("attempt ASC").
		Find(&logs).Error
	return logs, err
}
