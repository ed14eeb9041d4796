package controller

import (
	"net/http"

	"edu_tutor_backend/internal/provider"
	"edu_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB           *gorm.DB
	Orchestrator *provider.Orchestrator
}

func NewHealthController(db *gorm.DB, orchestrator *provider.Orchestrator) *HealthController {
	return &HealthController{DB: db, Orchestrator: orchestrator}
}

// @Summary 健康检查
// @Description 检查数据库与文本生成提供方的可用状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	ai := c.Orchestrator.HealthCheck(ctx.Request.Context())
	aiState := "up"
	if !ai.Healthy {
		aiState = "down"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
			"ai":       aiState,
		},
		"activeProvider": ai.Active,
	})
}
