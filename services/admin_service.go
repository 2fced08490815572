package services

import (
	"context"
	"fmt"

	"feedback-ai/models"
)

// AdminService encapsulates read-only admin operations.
type AdminService struct {
	store FeedbackStore
}

func NewAdminService(store FeedbackStore) *AdminService {
	return &AdminService{store: store}
}

// ListAll returns every stored record, newest first (created_at desc, id desc).
func (s *AdminService) ListAll(ctx context.Context) ([]models.FeedbackRecord, error) {
	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if items == nil {
		items = []models.FeedbackRecord{}
	}
	return items, nil
}
