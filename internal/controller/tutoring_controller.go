package controller

import (
	"strconv"

	"edu_tutor_backend/internal/model"
	"edu_tutor_backend/internal/service"
	"edu_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutoringController struct {
	Sessions *service.TutorSessionService
}

func NewTutoringController(sessions *service.TutorSessionService) *TutoringController {
	return &TutoringController{Sessions: sessions}
}

// StartSessionRequest 开始辅导会话请求
// swagger:model StartSessionRequest
type StartSessionRequest struct {
	TemplateID uint   `json:"templateId" binding:"required"`
	Emotion    string `json:"emotion" binding:"omitempty,oneof=frustrated confused anxious confident excited"`
}

// StartSession godoc
// @Summary 开始辅导会话
// @Description 基于题目模板创建会话并返回第一步引导
// @Tags 辅导
// @Accept  json
// @Produce  json
// @Param   body body StartSessionRequest true "会话参数"
// @Success 201 {object} util.Response{data=service.StartSessionResult}
// @Failure 404 {object} util.Response "模板不存在或未启用"
// @Security BearerAuth
// @Router /api/tutoring/sessions [post]
func (c *TutoringController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Sessions.Start(ctx.Request.Context(), claims.UserID, req.TemplateID, req.Emotion)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// SubmitStep godoc
// @Summary 提交步骤作答
// @Description 提交当前步骤的作答；答错返回错误分类与纠错引导，答对推进游标
// @Tags 辅导
// @Accept  json
// @Produce  json
// @Param   id path string true "会话 id"
// @Param   stepNumber path int true "步骤号"
// @Param   body body service.SubmitStepRequest true "作答内容"
// @Success 200 {object} util.Response{data=service.SubmitStepResult}
// @Failure 409 {object} util.Response "会话非活跃或步骤乱序"
// @Security BearerAuth
// @Router /api/tutoring/sessions/{id}/steps/{stepNumber} [post]
func (c *TutoringController) SubmitStep(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stepNumber, err := strconv.Atoi(ctx.Param("stepNumber"))
	if err != nil || stepNumber < 1 {
		util.BadRequest(ctx, "invalid step number")
		return
	}

	var req service.SubmitStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Sessions.SubmitStepResponse(ctx.Request.Context(), ctx.Param("id"), claims.UserID, stepNumber, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// HintRequest 提示请求
// swagger:model HintRequest
type HintRequest struct {
	HintLevel string `json:"hintLevel" binding:"omitempty,oneof=gentle moderate direct"`
	Emotion   string `json:"emotion" binding:"omitempty,oneof=frustrated confused anxious confident excited"`
}

// RequestHint godoc
// @Summary 请求提示
// @Description 按提示强度返回引导文本并累计提示次数
// @Tags 辅导
// @Accept  json
// @Produce  json
// @Param   id path string true "会话 id"
// @Param   body body HintRequest true "提示参数"
// @Success 200 {object} util.Response{data=service.HintResult}
// @Failure 409 {object} util.Response "会话非活跃"
// @Security BearerAuth
// @Router /api/tutoring/sessions/{id}/hints [post]
func (c *TutoringController) RequestHint(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req HintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Sessions.RequestHint(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.HintLevel, req.Emotion)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// Abandon godoc
// @Summary 放弃会话
// @Description 将活跃会话转入 abandoned；重复调用幂等
// @Tags 辅导
// @Produce  json
// @Param   id path string true "会话 id"
// @Success 200 {object} util.Response{data=model.TutorSession}
// @Security BearerAuth
// @Router /api/tutoring/sessions/{id}/abandon [post]
func (c *TutoringController) Abandon(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.Sessions.Abandon(ctx.Request.Context(), ctx.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// GetSession godoc
// @Summary 查询会话状态
// @Description 返回会话及步骤进度的当前快照
// @Tags 辅导
// @Produce  json
// @Param   id path string true "会话 id"
// @Success 200 {object} util.Response{data=service.SessionSnapshot}
// @Failure 404 {object} util.Response "会话不存在"
// @Security BearerAuth
// @Router /api/tutoring/sessions/{id} [get]
func (c *TutoringController) GetSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	snap, err := c.Sessions.Snapshot(ctx.Request.Context(), ctx.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// ListSessions godoc
// @Summary 查询我的会话列表
// @Tags 辅导
// @Produce  json
// @Param   limit query int false "返回条数"
// @Success 200 {object} util.Response{data=[]model.TutorSession}
// @Security BearerAuth
// @Router /api/tutoring/sessions [get]
func (c *TutoringController) ListSessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	sessions, err := c.Sessions.ListSessions(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// GetPreference godoc
// @Summary 查询难度偏好
// @Tags 辅导
// @Produce  json
// @Param   subject query string true "学科"
// @Success 200 {object} util.Response{data=model.DifficultyPreference}
// @Security BearerAuth
// @Router /api/tutoring/preferences [get]
func (c *TutoringController) GetPreference(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	subject := ctx.Query("subject")
	if subject == "" {
		util.BadRequest(ctx, "subject is required")
		return
	}

	pref, err := c.Sessions.GetPreference(claims.UserID, subject)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, pref)
}

// SetPreferenceRequest 手动固定难度请求
// swagger:model SetPreferenceRequest
type SetPreferenceRequest struct {
	Subject string `json:"subject" binding:"required"`
	Tier    string `json:"tier" binding:"required,oneof=very_easy easy medium hard very_hard"`
}

// SetPreference godoc
// @Summary 手动固定难度偏好
// @Description 手动设置后自动调整只提议不生效
// @Tags 辅导
// @Accept  json
// @Produce  json
// @Param   body body SetPreferenceRequest true "偏好设置"
// @Success 200 {object} util.Response{data=model.DifficultyPreference}
// @Security BearerAuth
// @Router /api/tutoring/preferences [put]
func (c *TutoringController) SetPreference(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SetPreferenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pref, err := c.Sessions.SetManualDifficulty(claims.UserID, req.Subject, model.DifficultyTier(req.Tier))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, pref)
}
