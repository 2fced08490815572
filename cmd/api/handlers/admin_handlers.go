package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"feedback-ai/cmd/api/dto"
	"feedback-ai/logger"
	"feedback-ai/services"
	"feedback-ai/trace"
)

// @Summary List feedback for admin
// @Description List every stored feedback record, newest first. No pagination.
// @Tags admin
// @Produce json
// @Success 200 {array} dto.AdminFeedbackDTO
// @Failure 500 {object} dto.ErrorResponseDTO
// @Router /api/admin/list [get]
func AdminListFeedbackHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListAll(c.Request.Context())
		if err != nil {
			logger.ErrorWithFields("list feedback failed", logger.Fields{
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
				"error":      err.Error(),
			})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "storage_failure"})
			return
		}

		out := make([]dto.AdminFeedbackDTO, 0, len(items))
		for _, rec := range items {
			out = append(out, dto.NewAdminFeedbackDTO(rec))
		}
		c.JSON(http.StatusOK, out)
	}
}
