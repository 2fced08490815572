package dto

import (
	"time"

	"feedback-ai/models"
)

type SubmitFeedbackRequestDTO struct {
	Rating     int    `json:"rating" binding:"required,min=1,max=5" example:"4"`
	ReviewText string `json:"review_text" binding:"required,max=2000" example:"Smooth checkout, but the app crashed once."`
}

type SubmitFeedbackResponseDTO struct {
	Status         string `json:"status" enums:"success,partial_success" example:"success"`
	AIUserResponse string `json:"ai_user_response" example:"Thank you for your feedback!"`
}

// AdminFeedbackDTO is one row of the admin listing. The user-facing reply is
// not part of it.
type AdminFeedbackDTO struct {
	ID             string    `json:"id" example:"0195b3a4-7c1e-7d3a-9f1e-2b7c8d9e0f11"`
	Rating         int       `json:"rating" example:"2"`
	ReviewText     string    `json:"review_text"`
	AISummary      string    `json:"ai_summary" example:"User reports a crash during checkout."`
	AIActions      []string  `json:"ai_actions"`
	AnalysisStatus string    `json:"analysis_status" example:"enriched"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewAdminFeedbackDTO(rec models.FeedbackRecord) AdminFeedbackDTO {
	actions := rec.AIActions
	if actions == nil {
		actions = []string{}
	}
	return AdminFeedbackDTO{
		ID:             rec.ID,
		Rating:         rec.Rating,
		ReviewText:     rec.ReviewText,
		AISummary:      rec.AISummary,
		AIActions:      actions,
		AnalysisStatus: string(rec.AnalysisStatus),
		CreatedAt:      rec.CreatedAt,
	}
}
