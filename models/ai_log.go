package models

import (
	"time"
)

// AILog stores one upstream analysis attempt (system monitoring purpose).
// Collection / table: ai_logs
type AILog struct {
	ID            string    `bson:"_id" json:"id" gorm:"primaryKey;size:36"`
	FeedbackID    string    `bson:"feedback_id" json:"feedback_id" gorm:"index;size:36"`
	Attempt       int       `bson:"attempt" json:"attempt"`
	Outcome       string    `bson:"outcome" json:"outcome" gorm:"size:32"`
	ModelName     string    `bson:"model_name" json:"model_name" gorm:"size:128"`
	ModelVersion  string    `bson:"model_version" json:"model_version" gorm:"size:128"`
	InputTokens   int64     `bson:"input_tokens" json:"input_tokens"`
	OutputTokens  int64     `bson:"output_tokens" json:"output_tokens"`
	TotalTokens   int64     `bson:"total_tokens" json:"total_tokens"`
	DurationMs    int64     `bson:"duration_ms" json:"duration_ms"`
	ErrorMessage  *string   `bson:"error_message,omitempty" json:"error_message,omitempty" gorm:"type:text"`
	OutputExcerpt string    `bson:"output_excerpt" json:"output_excerpt" gorm:"type:text"`
	RequestedAt   time.Time `bson:"requested_at" json:"requested_at"`
	CompletedAt   time.Time `bson:"completed_at" json:"completed_at"`
}

func (AILog) TableName() string { return "ai_logs" }
