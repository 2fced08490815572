package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"feedback-ai/models"
)

type FeedbackRepository struct {
	col *mongo.Collection
}

func NewFeedbackRepository(db *mongo.Database) *FeedbackRepository {
	return &FeedbackRepository{col: db.Collection("feedback")}
}

// Insert writes the record as a single document; a single-document insert is atomic.
func (r *FeedbackRepository) Insert(ctx context.Context, rec *models.FeedbackRecord) error {
	_, err := r.col.InsertOne(ctx, rec)
	return err
}

// ListAll returns every record newest first (created_at desc, _id desc).
func (r *FeedbackRepository) ListAll(ctx context.Context) ([]models.FeedbackRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	records := []models.FeedbackRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return normalizeActions(records), nil
}

// normalizeActions guarantees ai_actions is never null in listings.
func normalizeActions(records []models.FeedbackRecord) []models.FeedbackRecord {
	for i := range records {
		if records[i].AIActions == nil {
			records[i].AIActions = []string{}
		}
	}
	return records
}
