package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"feedback-ai/cmd/api/dto"
	"feedback-ai/logger"
	"feedback-ai/services"
	"feedback-ai/trace"
)

// SubmitFeedbackHandler godoc
// @Summary      피드백 제출
// @Description  별점과 리뷰를 받아 AI 분석 후 저장한다. AI 분석이 실패해도 레코드는 저장되며 status 가 partial_success 가 된다.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SubmitFeedbackRequestDTO  true  "feedback"
// @Success      200   {object}  dto.SubmitFeedbackResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO  "레코드 저장 실패"
// @Router       /api/submit [post]
func SubmitFeedbackHandler(svc *services.SubmissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.SubmitFeedbackRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{
				Error:   "invalid_request",
				Details: validationDetails(err),
			})
			return
		}

		result, err := svc.Submit(c.Request.Context(), services.SubmitInput{
			Rating:     req.Rating,
			ReviewText: req.ReviewText,
		})
		if err != nil {
			code := "internal_error"
			if errors.Is(err, services.ErrStorageFailure) {
				code = "storage_failure"
			}
			logger.ErrorWithFields("submit feedback failed", logger.Fields{
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
				"error":      err.Error(),
			})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: code})
			return
		}

		c.JSON(http.StatusOK, dto.SubmitFeedbackResponseDTO{
			Status:         result.Status,
			AIUserResponse: result.AIUserResponse,
		})
	}
}
