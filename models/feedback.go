package models

import (
	"time"
)

// AnalysisStatus records which branch of the submission workflow produced a record.
type AnalysisStatus string

const (
	AnalysisEnriched                 AnalysisStatus = "enriched"
	AnalysisDegradedRateLimited      AnalysisStatus = "degraded_rate_limited"
	AnalysisDegradedInvalidResponse  AnalysisStatus = "degraded_invalid_response"
	AnalysisDegradedTransportFailure AnalysisStatus = "degraded_transport_failure"
)

// Degraded reports whether the AI fields hold fallback values.
func (s AnalysisStatus) Degraded() bool {
	return s != AnalysisEnriched
}

// FeedbackRecord is one accepted submission and its derived analysis.
// Created exactly once per submission and never updated.
// Collection / table: feedback
type FeedbackRecord struct {
	ID             string         `bson:"_id" json:"id" gorm:"primaryKey;size:36"`
	Rating         int            `bson:"rating" json:"rating" gorm:"not null"`
	ReviewText     string         `bson:"review_text" json:"review_text" gorm:"type:text;not null"`
	AIUserResponse string         `bson:"ai_user_response" json:"ai_user_response" gorm:"type:text;not null"`
	AISummary      string         `bson:"ai_summary" json:"ai_summary" gorm:"type:text;not null"`
	AIActions      []string       `bson:"ai_actions" json:"ai_actions" gorm:"type:json;serializer:json;not null"`
	AnalysisStatus AnalysisStatus `bson:"analysis_status" json:"analysis_status" gorm:"size:32;not null"`
	ModelName      string         `bson:"model_name" json:"model_name" gorm:"size:128"`
	Attempts       int            `bson:"attempts" json:"attempts"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at" gorm:"index:idx_feedback_created_at,sort:desc;not null"`
}

func (FeedbackRecord) TableName() string { return "feedback" }
