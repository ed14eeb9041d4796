package controller

import (
	"edu_tutor_backend/internal/provider"
	"edu_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AIController struct {
	Orchestrator *provider.Orchestrator
}

func NewAIController(orchestrator *provider.Orchestrator) *AIController {
	return &AIController{Orchestrator: orchestrator}
}

// SwitchProviderRequest 切换活跃提供方请求
// swagger:model SwitchProviderRequest
type SwitchProviderRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// SwitchProvider godoc
// @Summary 切换活跃文本生成提供方
// @Description 管理员将活跃提供方切换为已注册的另一个；进行中的调用不受影响
// @Tags AI管理
// @Accept  json
// @Produce  json
// @Param   body body SwitchProviderRequest true "目标提供方"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "提供方未注册"
// @Security BearerAuth
// @Router /api/admin/ai/provider [post]
func (c *AIController) SwitchProvider(ctx *gin.Context) {
	var req SwitchProviderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Orchestrator.SwitchProvider(req.Provider); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{
		"active":   c.Orchestrator.ActiveID(),
		"fallback": c.Orchestrator.FallbackID(),
	})
}

// ProviderStatus godoc
// @Summary 查询提供方状态
// @Description 返回各提供方的健康状况与当前活跃/兜底标识
// @Tags AI管理
// @Produce  json
// @Success 200 {object} util.Response{data=provider.OverallHealth}
// @Security BearerAuth
// @Router /api/admin/ai/provider [get]
func (c *AIController) ProviderStatus(ctx *gin.Context) {
	util.Success(ctx, c.Orchestrator.HealthCheck(ctx.Request.Context()))
}
