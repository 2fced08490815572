package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feedback-ai/cmd/api/dto"
)

// RootHandler godoc
// @Summary      Service banner
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Router       / [get]
func RootHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "AI Feedback API running"})
	}
}

// HealthHandler godoc
// @Summary      Health check
// @Description  Pings the feedback store.
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Failure      503  {object}  dto.HealthResponseDTO
// @Router       /health [get]
func HealthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping == nil {
			c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponseDTO{Status: "degraded", Storage: "down", Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok"})
	}
}
