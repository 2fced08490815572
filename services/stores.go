package services

import (
	"context"

	"feedback-ai/models"
)

// FeedbackStore is the durable sink for submissions. Implemented by the Mongo
// and SQL repositories.
type FeedbackStore interface {
	Insert(ctx context.Context, rec *models.FeedbackRecord) error
	ListAll(ctx context.Context) ([]models.FeedbackRecord, error)
}

// AILogStore receives one entry per upstream attempt.
type AILogStore interface {
	Insert(ctx context.Context, log models.AILog) error
}
