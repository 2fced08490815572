package dto

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Error   string   `json:"error" example:"invalid_request"`
	Details []string `json:"details,omitempty" example:"rating: must be between 1 and 5"`
}

// MessageResponseDTO는 단순 메시지 응답 형식을 통일하기 위한 DTO이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"AI Feedback API running"`
}

type HealthResponseDTO struct {
	Status  string `json:"status" example:"ok"`
	Storage string `json:"storage,omitempty" example:"down"`
	Error   string `json:"error,omitempty"`
}
