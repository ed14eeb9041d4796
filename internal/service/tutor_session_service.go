package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"edu_tutor_backend/internal/config"
	"edu_tutor_backend/internal/difficulty"
	"edu_tutor_backend/internal/mistake"
	"edu_tutor_backend/internal/model"
	"edu_tutor_backend/internal/provider"
	"edu_tutor_backend/internal/repository"
	"edu_tutor_backend/internal/scaffolding"
	"edu_tutor_backend/internal/util"
	"edu_tutor_backend/pkg/logger"
	"edu_tutor_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// TutorSessionService 辅导会话状态机：
// active -> completed | abandoned。所有修改路径按会话 id 加锁串行化，
// 作答记录与游标推进在单个存储事务内完成。
type TutorSessionService struct {
	Sessions     repository.SessionRepo
	Templates    repository.TemplateRepo
	Preferences  repository.PreferenceRepo
	Cache        repository.SnapshotCache
	Orchestrator *provider.Orchestrator
	Selector     *scaffolding.Selector
	Classifier   *mistake.Classifier
	Difficulty   *difficulty.Adapter
	Cfg          *config.Config

	locks *sessionLocks

	cfgMu    sync.RWMutex
	strategy difficulty.Strategy
}

func NewTutorSessionService(
	sessions repository.SessionRepo,
	templates repository.TemplateRepo,
	preferences repository.PreferenceRepo,
	cache repository.SnapshotCache,
	orchestrator *provider.Orchestrator,
	selector *scaffolding.Selector,
	classifier *mistake.Classifier,
	adapter *difficulty.Adapter,
	cfg *config.Config,
) *TutorSessionService {
	return &TutorSessionService{
		Sessions:     sessions,
		Templates:    templates,
		Preferences:  preferences,
		Cache:        cache,
		Orchestrator: orchestrator,
		Selector:     selector,
		Classifier:   classifier,
		Difficulty:   adapter,
		Cfg:          cfg,
		locks:        newSessionLocks(),
		strategy:     difficulty.ParseStrategy(cfg.Tutoring.DifficultyStrategy),
	}
}

// ApplyConfig 热更新难度策略，配置文件变化时由配置监听器调用
func (s *TutorSessionService) ApplyConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	s.strategy = difficulty.ParseStrategy(cfg.Tutoring.DifficultyStrategy)
	s.cfgMu.Unlock()
	logger.Log.Info("辅导配置已热更新",
		zap.String("difficultyStrategy", cfg.Tutoring.DifficultyStrategy))
}

func (s *TutorSessionService) currentStrategy() difficulty.Strategy {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.strategy
}

// Guidance 面向学员的指导文本及其来源信息
type Guidance struct {
	Text                string             `json:"text"`
	Purpose             scaffolding.Purpose `json:"purpose"`
	Style               scaffolding.Style   `json:"style"`
	Personalized        bool               `json:"personalized"`
	EmotionAcknowledged bool               `json:"emotionAcknowledged"`
	Provider            string             `json:"provider,omitempty"`
	UsedFallback        bool               `json:"usedFallback"`
}

type StartSessionResult struct {
	SessionID   string   `json:"sessionId"`
	Subject     string   `json:"subject"`
	TotalSteps  int      `json:"totalSteps"`
	CurrentStep int      `json:"currentStep"`
	Guidance    Guidance `json:"guidance"`
}

type SubmitStepRequest struct {
	ResponseText     string `json:"responseText" binding:"required"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	Emotion          string `json:"emotion"`
}

type SubmitStepResult struct {
	Accepted      bool                    `json:"accepted"`
	SessionStatus model.SessionStatus     `json:"sessionStatus"`
	CurrentStep   int                     `json:"currentStep"`
	Mistake       *mistake.Classification `json:"mistake,omitempty"`
	Guidance      *Guidance               `json:"guidance,omitempty"`
}

type HintResult struct {
	Guidance  Guidance `json:"guidance"`
	HintsUsed int      `json:"hintsUsed"`
}

// SessionSnapshot 会话及其步骤的只读视图
type SessionSnapshot struct {
	Session model.TutorSession  `json:"session"`
	Steps   []model.SessionStep `json:"steps"`
}

// Start 校验模板、建立步骤序列并直接给出第一步的引导
func (s *TutorSessionService) Start(ctx context.Context, studentID, templateID uint, emotion string) (*StartSessionResult, error) {
	tpl, err := s.Templates.GetActive(templateID)
	if err != nil {
		return nil, err
	}
	// 接口层约束步骤至少一条，但种子或迁移数据可能绕过
	if len(tpl.Steps) == 0 {
		return nil, util.ErrTemplateNotFound
	}

	session := &model.TutorSession{
		UUIDBase:    model.UUIDBase{ID: model.GenerateUUID()},
		StudentID:   studentID,
		TemplateID:  tpl.ID,
		Subject:     tpl.Subject,
		Status:      model.SessionActive,
		CurrentStep: 1,
		TotalSteps:  tpl.TotalSteps,
		StartedAt:   time.Now(),
	}

	steps := make([]model.SessionStep, 0, len(tpl.Steps))
	for _, def := range tpl.Steps {
		steps = append(steps, model.SessionStep{
			SessionID:      session.ID,
			StepNumber:     def.StepNumber,
			Title:          def.Title,
			Type:           def.Type,
			Instruction:    def.Instruction,
			ExpectedAnswer: def.ExpectedAnswer,
			ExpectedShape:  def.ExpectedShape,
			Understanding:  model.UnderstandingPartial,
		})
	}

	if err := s.Sessions.Create(session, steps); err != nil {
		return nil, err
	}
	monitoring.SessionsStarted.Inc()

	sctx := s.scaffoldContext(studentID, tpl.Subject, emotion)
	guidance := s.guide(ctx, scaffolding.PurposeProblemSolving, sctx, steps[0].Instruction)

	return &StartSessionResult{
		SessionID:   session.ID,
		Subject:     session.Subject,
		TotalSteps:  session.TotalSteps,
		CurrentStep: session.CurrentStep,
		Guidance:    guidance,
	}, nil
}

// SubmitStepResponse 接受一次作答：记录作答、判定错误，错误时返回
// 纠错引导且游标不动，正确时标记完成并推进游标。作答记录与游标推进
// 是同一个原子更新，中途取消不会留下半前进状态。
func (s *TutorSessionService) SubmitStepResponse(ctx context.Context, sessionID string, studentID uint, stepNumber int, req SubmitStepRequest) (*SubmitStepResult, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(session, studentID); err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, util.ErrSessionNotActive
	}
	if stepNumber != session.CurrentStep {
		return nil, util.ErrStepOutOfOrder
	}

	steps, err := s.Sessions.GetSteps(sessionID)
	if err != nil {
		return nil, err
	}
	step := findStep(steps, stepNumber)
	if step == nil {
		return nil, util.ErrStepOutOfOrder
	}

	// 会话锁已持有，事务外读取先前同类错误计数是安全的
	priorCounts, err := s.Sessions.MistakeCountByKind(sessionID, step.Type)
	if err != nil {
		return nil, err
	}

	classification, mistaken := s.Classifier.Classify(req.ResponseText, mistake.StepContext{
		StepType:       step.Type,
		ExpectedAnswer: step.ExpectedAnswer,
		ExpectedShape:  step.ExpectedShape,
		Subject:        session.Subject,
	}, func(k model.MistakeKind) int { return priorCounts[k] })
	if mistaken && classification == nil {
		// 分类器无法给出判定时降级为一般性支持引导，不让作答失败
		mistaken = false
	}

	result := &SubmitStepResult{Accepted: true}

	err = s.Sessions.Update(sessionID, func(tx *repository.SessionTx) error {
		if tx.Session.Status != model.SessionActive {
			return util.ErrSessionNotActive
		}
		if stepNumber != tx.Session.CurrentStep {
			return util.ErrStepOutOfOrder
		}
		cur := findStep(tx.Steps, stepNumber)
		if cur == nil {
			return util.ErrStepOutOfOrder
		}

		tx.RecordResponse(&model.StepResponse{
			SessionID:        sessionID,
			StepNumber:       stepNumber,
			ResponseText:     req.ResponseText,
			TimeSpentSeconds: req.TimeSpentSeconds,
		})
		cur.AttemptCount++

		if mistaken {
			tx.Session.MistakesMade++
			followUps, _ := json.Marshal(classification.FollowUps)
			tx.RecordMistake(&model.MistakeRecord{
				SessionID:   sessionID,
				StepType:    cur.Type,
				Kind:        classification.Kind,
				Severity:    classification.Severity,
				Repeated:    classification.Repeated,
				Explanation: classification.Explanation,
				Remediation: classification.Remediation,
				FollowUps:   string(followUps),
			})
			return nil
		}

		cur.Completed = true
		cur.AccuracyScore = accuracyFor(cur.AttemptCount)
		cur.Understanding = understandingFor(cur.AttemptCount)
		if tx.Session.CurrentStep >= tx.Session.TotalSteps {
			now := time.Now()
			tx.Session.Status = model.SessionCompleted
			tx.Session.CompletedAt = &now
		} else {
			tx.Session.CurrentStep++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	result.SessionStatus = updated.Status
	result.CurrentStep = updated.CurrentStep

	if mistaken {
		monitoring.MistakesClassified.WithLabelValues(string(classification.Kind)).Inc()
		sctx := s.scaffoldContext(updated.StudentID, updated.Subject, req.Emotion)
		g := s.guide(ctx, scaffolding.PurposeMistakeAnalysis, sctx, classification.Remediation)
		result.Mistake = classification
		result.Guidance = &g
	}

	if updated.Status == model.SessionCompleted {
		monitoring.SessionsEnded.WithLabelValues(string(model.SessionCompleted)).Inc()
		go s.updateDifficulty(updated.StudentID, updated.Subject)
	}

	s.invalidateSnapshot(ctx, sessionID)
	return result, nil
}

// RequestHint 提示不设硬性上限，计数暴露给上层策略
func (s *TutorSessionService) RequestHint(ctx context.Context, sessionID string, studentID uint, hintLevel, emotion string) (*HintResult, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(session, studentID); err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, util.ErrSessionNotActive
	}

	sctx := s.scaffoldContext(session.StudentID, session.Subject, emotion)
	res := s.Selector.SelectHint(hintStyle(hintLevel), sctx)
	guidance, err := s.elaborate(ctx, res, s.stepInstruction(sessionID, session.CurrentStep))
	if err != nil {
		return nil, err
	}

	var hintsUsed int
	err = s.Sessions.Update(sessionID, func(tx *repository.SessionTx) error {
		if tx.Session.Status != model.SessionActive {
			return util.ErrSessionNotActive
		}
		tx.Session.HintsUsed++
		hintsUsed = tx.Session.HintsUsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx, sessionID)
	return &HintResult{Guidance: guidance, HintsUsed: hintsUsed}, nil
}

// Abandon 将活跃会话转入 abandoned；已终态时幂等返回
func (s *TutorSessionService) Abandon(ctx context.Context, sessionID string, studentID uint) (*model.TutorSession, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(session, studentID); err != nil {
		return nil, err
	}
	return s.abandonLocked(ctx, sessionID)
}

// abandonLocked 执行终态迁移，调用方必须已持有会话锁
func (s *TutorSessionService) abandonLocked(ctx context.Context, sessionID string) (*model.TutorSession, error) {
	transitioned := false
	err := s.Sessions.Update(sessionID, func(tx *repository.SessionTx) error {
		if tx.Session.Terminal() {
			return nil
		}
		now := time.Now()
		tx.Session.Status = model.SessionAbandoned
		tx.Session.CompletedAt = &now
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	session, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if transitioned {
		monitoring.SessionsEnded.WithLabelValues(string(model.SessionAbandoned)).Inc()
		go s.updateDifficulty(session.StudentID, session.Subject)
		s.invalidateSnapshot(ctx, sessionID)
	}
	return session, nil
}

// Snapshot 返回会话与步骤的当前视图，带 Redis 读缓存
func (s *TutorSessionService) Snapshot(ctx context.Context, sessionID string, studentID uint) (*SessionSnapshot, error) {
	if s.Cache != nil {
		if data, ok := s.Cache.GetSnapshot(ctx, sessionID); ok {
			var snap SessionSnapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				if err := ownedBy(&snap.Session, studentID); err != nil {
					return nil, err
				}
				return &snap, nil
			}
		}
	}

	session, err := s.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(session, studentID); err != nil {
		return nil, err
	}
	steps, err := s.Sessions.GetSteps(sessionID)
	if err != nil {
		return nil, err
	}

	snap := &SessionSnapshot{Session: *session, Steps: steps}
	if s.Cache != nil {
		if data, err := json.Marshal(snap); err == nil {
			s.Cache.SetSnapshot(ctx, sessionID, data)
		}
	}
	return snap, nil
}

// ListSessions 按学生返回最近会话
func (s *TutorSessionService) ListSessions(studentID uint, limit int) ([]model.TutorSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Sessions.ListByStudent(studentID, limit)
}

// SetManualDifficulty 手动固定某 (学生, 学科) 的难度偏好
func (s *TutorSessionService) SetManualDifficulty(studentID uint, subject string, tier model.DifficultyTier) (*model.DifficultyPreference, error) {
	if model.TierAt(model.TierIndex(tier)) != tier {
		return nil, util.NewError(util.KindInvalidInput, "unknown difficulty tier")
	}

	pref, err := s.Preferences.Get(studentID, subject)
	if err != nil {
		return nil, err
	}

	decision := difficulty.ManualDecision(tier)
	pref.Tier = decision.Tier
	pref.Confidence = decision.Confidence
	pref.LastReason = decision.Reason
	pref.AdjustmentCount++
	pref.Manual = true
	if err := s.Preferences.Save(pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// GetPreference 读取难度偏好（缺省为 medium）
func (s *TutorSessionService) GetPreference(studentID uint, subject string) (*model.DifficultyPreference, error) {
	return s.Preferences.Get(studentID, subject)
}

// AbandonStale 将长期未活动的会话批量转入 abandoned（后台任务调用）
func (s *TutorSessionService) AbandonStale(ctx context.Context) int {
	ids, err := s.Sessions.StaleActiveSessions(s.Cfg.Tutoring.StaleSessionHours)
	if err != nil {
		logger.Log.Error("查询过期会话失败", zap.Error(err))
		return 0
	}

	n := 0
	for _, id := range ids {
		unlock := s.locks.Lock(id)
		_, err := s.abandonLocked(ctx, id)
		unlock()
		if err != nil {
			logger.Log.Warn("过期会话回收失败", zap.String("sessionId", id), zap.Error(err))
			continue
		}
		n++
	}
	if n > 0 {
		logger.Log.Info("过期会话已回收", zap.Int("count", n))
	}
	return n
}

// updateDifficulty 会话终态后的难度自适应，异步执行，失败只记录不上抛
func (s *TutorSessionService) updateDifficulty(studentID uint, subject string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("难度自适应 panic", zap.Any("recover", r))
		}
	}()

	outcomes, err := s.Sessions.RecentOutcomes(studentID, subject, s.Cfg.Tutoring.OutcomeWindowSize)
	if err != nil {
		logger.Log.Error("读取历史会话结果失败",
			zap.Uint("studentId", studentID), zap.String("subject", subject), zap.Error(err))
		return
	}

	pref, err := s.Preferences.Get(studentID, subject)
	if err != nil {
		logger.Log.Error("读取难度偏好失败",
			zap.Uint("studentId", studentID), zap.String("subject", subject), zap.Error(err))
		return
	}

	decision := s.Difficulty.Adapt(*pref, outcomes, s.currentStrategy())
	if !decision.Applied {
		// 样本不足或偏好被手动固定：仅记录，不触碰已存偏好
		logger.Log.Info("难度偏好未调整",
			zap.Uint("studentId", studentID),
			zap.String("subject", subject),
			zap.String("proposedTier", string(decision.Tier)),
			zap.String("reason", decision.Reason))
		return
	}

	if decision.Changed {
		pref.AdjustmentCount++
	}
	pref.Tier = decision.Tier
	pref.Confidence = decision.Confidence
	pref.LastReason = decision.Reason
	if err := s.Preferences.Save(pref); err != nil {
		logger.Log.Error("保存难度偏好失败",
			zap.Uint("studentId", studentID), zap.String("subject", subject), zap.Error(err))
		return
	}

	logger.Log.Info("难度偏好已更新",
		zap.Uint("studentId", studentID),
		zap.String("subject", subject),
		zap.String("tier", string(decision.Tier)),
		zap.Bool("changed", decision.Changed),
		zap.String("reason", decision.Reason))
}

// scaffoldContext 组装一次性的脚手架选择输入
func (s *TutorSessionService) scaffoldContext(studentID uint, subject, emotion string) scaffolding.Context {
	sctx := scaffolding.Context{
		Subject:    subject,
		Difficulty: 3,
		Emotion:    scaffolding.Emotion(emotion),
	}

	if pref, err := s.Preferences.Get(studentID, subject); err == nil {
		sctx.Difficulty = model.TierIndex(pref.Tier) + 1
	}

	if outcomes, err := s.Sessions.RecentOutcomes(studentID, subject, s.Cfg.Tutoring.OutcomeWindowSize); err == nil && len(outcomes) >= 2 {
		sctx.Performance = performanceFrom(outcomes)
	}
	return sctx
}

// performanceFrom 从结果窗口提取趋势与强弱项：按步骤类型的平均正确率
// 高于 0.85 记为强项，低于 0.6 记为弱项
func performanceFrom(outcomes []model.SessionOutcome) *scaffolding.Performance {
	perf := &scaffolding.Performance{Trend: trendOf(outcomes)}

	typeSum := make(map[model.StepType]float64)
	typeN := make(map[model.StepType]int)
	for _, o := range outcomes {
		for typ, acc := range o.StepTypeAccuracy {
			typeSum[typ] += acc
			typeN[typ]++
		}
	}
	for typ, n := range typeN {
		switch avg := typeSum[typ] / float64(n); {
		case avg >= 0.85:
			perf.Strengths = append(perf.Strengths, stepTypeLabel(typ))
		case avg < 0.6:
			perf.Struggles = append(perf.Struggles, stepTypeLabel(typ))
		}
	}
	// map 遍历无序，输出排序保证措辞可复现
	sort.Strings(perf.Strengths)
	sort.Strings(perf.Struggles)
	return perf
}

func stepTypeLabel(t model.StepType) string {
	switch t {
	case model.StepConceptual:
		return "the conceptual questions"
	case model.StepProcedural:
		return "the procedural steps"
	case model.StepComputational:
		return "the computations"
	default:
		return "the reflection steps"
	}
}

// guide 渲染脚手架并交给提供方展开；提供方失败时退化为模板原文，
// 已记录的进度不因引导生成失败而丢失
func (s *TutorSessionService) guide(ctx context.Context, purpose scaffolding.Purpose, sctx scaffolding.Context, detail string) Guidance {
	res := s.Selector.Select(purpose, sctx)
	g, err := s.elaborate(ctx, res, detail)
	if err != nil {
		logger.Log.Warn("引导生成降级为模板原文",
			zap.String("purpose", string(purpose)), zap.Error(err))
		return Guidance{
			Text:                res.Prompt,
			Purpose:             res.Purpose,
			Style:               res.Style,
			Personalized:        res.Personalized,
			EmotionAcknowledged: res.EmotionAcknowledged,
		}
	}
	return g
}

// elaborate 将脚手架提示词提交给编排器生成最终文本
func (s *TutorSessionService) elaborate(ctx context.Context, res scaffolding.Result, detail string) (Guidance, error) {
	prompt := res.Prompt
	if detail != "" {
		prompt += "\n\n" + detail
	}

	gen, err := s.Orchestrator.GenerateResponse(ctx, prompt, provider.DefaultOptions())
	if err != nil {
		return Guidance{}, wrapProviderError(err)
	}
	return Guidance{
		Text:                gen.Text,
		Purpose:             res.Purpose,
		Style:               res.Style,
		Personalized:        res.Personalized,
		EmotionAcknowledged: res.EmotionAcknowledged,
		Provider:            gen.Provider,
		UsedFallback:        gen.UsedFallback,
	}, nil
}

func (s *TutorSessionService) stepInstruction(sessionID string, stepNumber int) string {
	steps, err := s.Sessions.GetSteps(sessionID)
	if err != nil {
		return ""
	}
	if step := findStep(steps, stepNumber); step != nil {
		return step.Instruction
	}
	return ""
}

func (s *TutorSessionService) invalidateSnapshot(ctx context.Context, sessionID string) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, sessionID)
	}
}

// wrapProviderError 把提供方错误翻译成带类别的业务错误，供 HTTP 层映射
func wrapProviderError(err error) error {
	var (
		invalid  *provider.ErrInvalidInput
		filtered *provider.ErrContentFiltered
		limited  *provider.ErrRateLimited
		malform  *provider.ErrMalformed
	)
	switch {
	case errors.As(err, &invalid):
		return util.WrapError(util.KindInvalidInput, "生成请求不合法", err)
	case errors.As(err, &filtered):
		return util.WrapError(util.KindContentFiltered, "内容被提供方策略拦截", err)
	case errors.As(err, &limited):
		return util.WrapError(util.KindRateLimited, "提供方限流", err)
	case errors.As(err, &malform):
		return util.WrapError(util.KindMalformed, "提供方响应异常", err)
	default:
		return util.WrapError(util.KindUnavailable, "文本生成服务暂不可用", err)
	}
}

// ownedBy 非属主访问一律按不存在处理，会话 id 不可被探测
func ownedBy(session *model.TutorSession, studentID uint) error {
	if session.StudentID != studentID {
		return util.ErrSessionNotFound
	}
	return nil
}

func findStep(steps []model.SessionStep, stepNumber int) *model.SessionStep {
	for i := range steps {
		if steps[i].StepNumber == stepNumber {
			return &steps[i]
		}
	}
	return nil
}

// accuracyFor 按尝试次数折算本步得分
func accuracyFor(attempts int) float64 {
	switch {
	case attempts <= 1:
		return 1.0
	case attempts == 2:
		return 0.75
	case attempts == 3:
		return 0.6
	default:
		return 0.5
	}
}

func understandingFor(attempts int) model.UnderstandingLevel {
	switch {
	case attempts <= 1:
		return model.UnderstandingSolid
	case attempts <= 2:
		return model.UnderstandingPartial
	default:
		return model.UnderstandingLow
	}
}

func hintStyle(level string) scaffolding.Style {
	switch level {
	case "moderate":
		return scaffolding.StyleHintModerate
	case "direct":
		return scaffolding.StyleHintDirect
	default:
		return scaffolding.StyleHintGentle
	}
}

// trendOf 比较窗口内新旧两半的平均正确率得出趋势
func trendOf(outcomes []model.SessionOutcome) scaffolding.Trend {
	half := len(outcomes) / 2
	recent, older := avgAccuracy(outcomes[:half]), avgAccuracy(outcomes[half:])
	switch {
	case recent > older+0.05:
		return scaffolding.TrendImproving
	case recent < older-0.05:
		return scaffolding.TrendDeclining
	default:
		return scaffolding.TrendSteady
	}
}

func avgAccuracy(outcomes []model.SessionOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	var sum float64
	for _, o := range outcomes {
		sum += o.Accuracy
	}
	return sum / float64(len(outcomes))
}
