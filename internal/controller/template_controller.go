package controller

import (
	"errors"
	"strconv"

	"edu_tutor_backend/internal/service"
	"edu_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TemplateController struct {
	Templates *service.TemplateService
}

func NewTemplateController(templates *service.TemplateService) *TemplateController {
	return &TemplateController{Templates: templates}
}

// Create godoc
// @Summary 创建题目模板
// @Description 教师/管理员录入题目及其步骤序列
// @Tags 模板
// @Accept  json
// @Produce  json
// @Param   body body service.CreateTemplateRequest true "模板内容"
// @Success 201 {object} util.Response{data=model.ProblemTemplate}
// @Failure 400 {object} util.Response "请求参数错误"
// @Security BearerAuth
// @Router /api/templates [post]
func (c *TemplateController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tpl, err := c.Templates.Create(req, claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, tpl)
}

// Get godoc
// @Summary 查询模板详情
// @Tags 模板
// @Produce  json
// @Param   id path int true "模板 id"
// @Success 200 {object} util.Response{data=model.ProblemTemplate}
// @Failure 404 {object} util.Response "模板不存在"
// @Security BearerAuth
// @Router /api/templates/{id} [get]
func (c *TemplateController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid template id")
		return
	}

	tpl, err := c.Templates.Get(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.FromError(ctx, err)
		}
		return
	}
	util.Success(ctx, tpl)
}

// List godoc
// @Summary 查询模板列表
// @Tags 模板
// @Produce  json
// @Param   subject query string false "按学科过滤"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=object}
// @Security BearerAuth
// @Router /api/templates [get]
func (c *TemplateController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	templates, total, err := c.Templates.List(ctx.Query("subject"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"items": templates,
		"total": total,
		"page":  page,
	})
}

// SetActiveRequest 模板上下架请求
// swagger:model SetActiveRequest
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive godoc
// @Summary 启用/停用模板
// @Description 停用后无法基于该模板开始新会话
// @Tags 模板
// @Accept  json
// @Produce  json
// @Param   id path int true "模板 id"
// @Param   body body SetActiveRequest true "启用状态"
// @Success 200 {object} util.Response
// @Security BearerAuth
// @Router /api/templates/{id}/active [put]
func (c *TemplateController) SetActive(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid template id")
		return
	}

	var req SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Templates.SetActive(uint(id), *req.Active); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id, "active": *req.Active})
}
