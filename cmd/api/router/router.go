package router

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"feedback-ai/cmd/api/handlers"
	"feedback-ai/cmd/api/middleware"
	_ "feedback-ai/docs"
	"feedback-ai/services"
)

// Deps 는 라우터가 사용하는 서비스 묶음이다.
type Deps struct {
	Submission *services.SubmissionService
	Admin      *services.AdminService
	// HealthCheck 는 저장소 ping. nil 이면 항상 ok.
	HealthCheck func(ctx context.Context) error
}

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), middleware.RequestTrace())

	r.GET("/", handlers.RootHandler())
	r.GET("/health", handlers.HealthHandler(deps.HealthCheck))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.POST("/submit", handlers.SubmitFeedbackHandler(deps.Submission))
		api.GET("/admin/list", handlers.AdminListFeedbackHandler(deps.Admin))
	}

	return r
}
