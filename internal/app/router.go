package app

import (
	"edu_tutor_backend/docs"
	"edu_tutor_backend/internal/config"
	"edu_tutor_backend/internal/middleware"
	"edu_tutor_backend/internal/model"
	"edu_tutor_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 辅导会话
		tutoring := authGroup.Group("/tutoring")
		{
			tutoring.POST("/sessions", c.tutoring.StartSession)
			tutoring.GET("/sessions", c.tutoring.ListSessions)
			tutoring.GET("/sessions/:id", c.tutoring.GetSession)
			tutoring.POST("/sessions/:id/steps/:stepNumber", c.tutoring.SubmitStep)
			tutoring.POST("/sessions/:id/hints", c.tutoring.RequestHint)
			tutoring.POST("/sessions/:id/abandon", c.tutoring.Abandon)
			tutoring.GET("/preferences", c.tutoring.GetPreference)
			tutoring.PUT("/preferences", c.tutoring.SetPreference)
		}

		// 题目模板：读取对所有登录用户开放，维护仅教师/管理员
		authGroup.GET("/templates", c.template.List)
		authGroup.GET("/templates/:id", c.template.Get)

		teacherGroup := authGroup.Group("/templates")
		teacherGroup.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
		{
			teacherGroup.POST("", c.template.Create)
			teacherGroup.PUT("/:id/active", c.template.SetActive)
		}

		// AI 提供方管理：仅管理员
		adminGroup := authGroup.Group("/admin")
		adminGroup.Use(middleware.RoleMiddleware(model.Admin))
		{
			adminGroup.GET("/ai/provider", c.ai.ProviderStatus)
			adminGroup.POST("/ai/provider", c.ai.SwitchProvider)
		}
	}
}
