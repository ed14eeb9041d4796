package service

import (
	"context"
	"testing"
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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

type testEnv struct {
	svc       *TutorSessionService
	sessions  *repository.MemorySessionRepo
	templates *repository.MemoryTemplateRepo
	prefs     *repository.MemoryPreferenceRepo
	stub      *provider.StubAdapter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sessions := repository.NewMemorySessionRepo()
	templates := repository.NewMemoryTemplateRepo()
	prefs := repository.NewMemoryPreferenceRepo()

	stub := provider.NewStubAdapter("stub")
	orch, err := provider.NewOrchestrator([]provider.Adapter{stub}, "stub")
	require.NoError(t, err)

	cfg := &config.Config{
		Tutoring: config.TutoringConfig{
			DifficultyStrategy: "moderate",
			MinSampleSize:      3,
			OutcomeWindowSize:  10,
			StaleSessionHours:  24,
		},
	}

	svc := NewTutorSessionService(
		sessions, templates, prefs, nil,
		orch,
		scaffolding.NewSelector(7),
		mistake.NewClassifier(nil),
		difficulty.NewAdapter(cfg.Tutoring.MinSampleSize),
		cfg,
	)
	return &testEnv{svc: svc, sessions: sessions, templates: templates, prefs: prefs, stub: stub}
}

func (e *testEnv) seedTemplate() {
	e.templates.Put(model.ProblemTemplate{
		BaseModel: model.BaseModel{ID: 1},
		Title:     "一元一次方程",
		Subject:   "math",
		Active:    true,
		Steps: []model.TemplateStep{
			{StepNumber: 1, Title: "审题", Type: model.StepComputational, Instruction: "计算 6 × 7", ExpectedAnswer: "42", ExpectedShape: "number"},
			{StepNumber: 2, Title: "求解", Type: model.StepComputational, Instruction: "解方程 2x = 12", ExpectedAnswer: "6", ExpectedShape: "number"},
			{StepNumber: 3, Title: "反思", Type: model.StepReflective, Instruction: "总结本题的解题思路", ExpectedAnswer: "", ExpectedShape: "text"},
		},
	})
}

func (e *testEnv) start(t *testing.T) *StartSessionResult {
	t.Helper()
	res, err := e.svc.Start(context.Background(), 10, 1, "")
	require.NoError(t, err)
	return res
}

// runWeakSession 跑完一整场会话：两个计算步骤各错三次才改对，
// 反思步骤一次通过，留下计算类正确率 0.5 的历史
func (e *testEnv) runWeakSession(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := e.start(t)

	for _, step := range []struct {
		n      int
		answer string
	}{{1, "42"}, {2, "6"}} {
		for i := 0; i < 3; i++ {
			_, err := e.svc.SubmitStepResponse(ctx, start.SessionID, 10, step.n, SubmitStepRequest{ResponseText: "0"})
			require.NoError(t, err)
		}
		_, err := e.svc.SubmitStepResponse(ctx, start.SessionID, 10, step.n, SubmitStepRequest{ResponseText: step.answer})
		require.NoError(t, err)
	}

	res, err := e.svc.SubmitStepResponse(ctx, start.SessionID, 10, 3, SubmitStepRequest{ResponseText: "总结：先化简再逐步求解"})
	require.NoError(t, err)
	require.Equal(t, model.SessionCompleted, res.SessionStatus)
}

func TestStartSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()

	res := env.start(t)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, 3, res.TotalSteps)
	assert.Equal(t, 1, res.CurrentStep)
	assert.Equal(t, "math", res.Subject)
	assert.NotEmpty(t, res.Guidance.Text)
	assert.Equal(t, scaffolding.PurposeProblemSolving, res.Guidance.Purpose)
}

func TestStartSessionTemplateNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Start(context.Background(), 10, 99, "")
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
}

func TestStartSessionInactiveTemplate(t *testing.T) {
	env := newTestEnv(t)
	env.templates.Put(model.ProblemTemplate{
		BaseModel: model.BaseModel{ID: 2},
		Subject:   "math",
		Active:    false,
		Steps:     []model.TemplateStep{{StepNumber: 1, Type: model.StepComputational}},
	})

	_, err := env.svc.Start(context.Background(), 10, 2, "")
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
}

// 完整三步流程：对 → 错 → 改对 → 对，最后触发难度自适应
func TestSessionEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	// 单次会话即满足样本量，便于验证终态后的异步调整
	env.svc.Difficulty = difficulty.NewAdapter(1)
	start := env.start(t)
	ctx := context.Background()
	id := start.SessionID

	// 第一步答对，游标前进到 2
	res, err := env.svc.SubmitStepResponse(ctx, id, 10, 1, SubmitStepRequest{ResponseText: "42"})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Nil(t, res.Mistake)
	assert.Equal(t, 2, res.CurrentStep)
	assert.Equal(t, model.SessionActive, res.SessionStatus)

	// 第二步答错：返回错误分类与纠错引导，游标不动
	res, err = env.svc.SubmitStepResponse(ctx, id, 10, 2, SubmitStepRequest{ResponseText: "7"})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	require.NotNil(t, res.Mistake)
	assert.Equal(t, model.MistakeComputational, res.Mistake.Kind)
	require.NotNil(t, res.Guidance)
	assert.NotEmpty(t, res.Guidance.Text)
	assert.Equal(t, 2, res.CurrentStep)

	// 改对后前进到 3
	res, err = env.svc.SubmitStepResponse(ctx, id, 10, 2, SubmitStepRequest{ResponseText: "6"})
	require.NoError(t, err)
	assert.Nil(t, res.Mistake)
	assert.Equal(t, 3, res.CurrentStep)
	assert.Equal(t, model.SessionActive, res.SessionStatus)

	// 第三步答对，会话完成
	res, err = env.svc.SubmitStepResponse(ctx, id, 10, 3, SubmitStepRequest{ResponseText: "先审题再逐步化简求解"})
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, res.SessionStatus)

	session, err := env.sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 1, session.MistakesMade)
	assert.NotNil(t, session.CompletedAt)

	// 终态后异步触发难度自适应，偏好被写入
	require.Eventually(t, func() bool {
		pref, err := env.prefs.Get(10, "math")
		return err == nil && pref.LastReason != ""
	}, time.Second, 10*time.Millisecond)
}

// 样本不足时偏好完全不落库，LastReason 不被“样本不足”改写
func TestInsufficientSampleLeavesPreferenceUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	_, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "42"})
	require.NoError(t, err)
	_, err = env.svc.Abandon(ctx, start.SessionID, 10)
	require.NoError(t, err)

	// 同步触发：1 个终态会话 < 最小样本量 3
	env.svc.updateDifficulty(10, "math")

	pref, err := env.prefs.Get(10, "math")
	require.NoError(t, err)
	assert.Equal(t, model.TierMedium, pref.Tier)
	assert.Empty(t, pref.LastReason)
	assert.Equal(t, 0, pref.AdjustmentCount)
}

// 历史会话暴露的弱项让新会话的引导个性化
func TestGuidancePersonalizedFromHistory(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	env.runWeakSession(t)
	env.runWeakSession(t)

	res := env.start(t)
	assert.True(t, res.Guidance.Personalized, "weak computational history should personalize guidance")

	// 降级为模板原文时也能看到弱项被点名
	env.stub.SetDown(true)
	start := env.start(t)
	sub, err := env.svc.SubmitStepResponse(context.Background(), start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "0"})
	require.NoError(t, err)
	require.NotNil(t, sub.Guidance)
	assert.True(t, sub.Guidance.Personalized)
	assert.Contains(t, sub.Guidance.Text, "the computations")
}

// 历史不足两场时不构建表现摘要，引导不个性化
func TestGuidanceNotPersonalizedWithoutHistory(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()

	res := env.start(t)
	assert.False(t, res.Guidance.Personalized)
}

// 会话只能被属主操作，外人访问一律按不存在处理
func TestSessionOwnership(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t) // 属主是学生 10
	ctx := context.Background()
	const intruder = 11

	_, err := env.svc.SubmitStepResponse(ctx, start.SessionID, intruder, 1, SubmitStepRequest{ResponseText: "42"})
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))

	_, err = env.svc.RequestHint(ctx, start.SessionID, intruder, "gentle", "")
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))

	_, err = env.svc.Snapshot(ctx, start.SessionID, intruder)
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))

	_, err = env.svc.Abandon(ctx, start.SessionID, intruder)
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))

	// 会话原封不动，属主仍可正常推进
	session, err := env.sessions.Get(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionActive, session.Status)
	assert.Equal(t, 1, session.CurrentStep)
	assert.Equal(t, 0, session.HintsUsed)
	assert.Empty(t, env.sessions.Responses(start.SessionID))

	res, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "42"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentStep)
}

// 零步骤的模板数据（绕过接口校验写入）不会造成恐慌
func TestStartSessionTemplateWithoutSteps(t *testing.T) {
	env := newTestEnv(t)
	env.templates.Put(model.ProblemTemplate{
		BaseModel: model.BaseModel{ID: 3},
		Subject:   "math",
		Active:    true,
	})

	_, err := env.svc.Start(context.Background(), 10, 3, "")
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
}

// 有效提交时，错误引导与游标前进恰好二选一
func TestSubmitExactlyOneOutcome(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	wrong, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "40"})
	require.NoError(t, err)
	assert.NotNil(t, wrong.Mistake)
	assert.Equal(t, 1, wrong.CurrentStep)

	right, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "42"})
	require.NoError(t, err)
	assert.Nil(t, right.Mistake)
	assert.Nil(t, right.Guidance)
	assert.Equal(t, 2, right.CurrentStep)
}

func TestSubmitOutOfOrderDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	_, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 2, SubmitStepRequest{ResponseText: "6"})
	require.Error(t, err)
	assert.Equal(t, util.KindInvalidStep, util.KindOf(err))

	// 会话状态未被改动，也没有留下作答记录
	session, err := env.sessions.Get(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, session.CurrentStep)
	assert.Equal(t, model.SessionActive, session.Status)
	assert.Empty(t, env.sessions.Responses(start.SessionID))

	// 重复提交已完成的步骤同样拒绝
	_, err = env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "42"})
	require.NoError(t, err)
	_, err = env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "42"})
	require.Error(t, err)
	assert.Equal(t, util.KindInvalidStep, util.KindOf(err))
}

func TestSubmitOnTerminalSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	_, err := env.svc.Abandon(ctx, start.SessionID, 10)
	require.NoError(t, err)

	_, err = env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "42"})
	require.Error(t, err)
	assert.Equal(t, util.KindInvalidState, util.KindOf(err))
}

// 同类错误在会话内重复出现时严重度升级
func TestRepeatedMistakeEscalation(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	first, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "40"})
	require.NoError(t, err)
	assert.Equal(t, model.SeverityLow, first.Mistake.Severity)
	assert.False(t, first.Mistake.Repeated)

	second, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "41"})
	require.NoError(t, err)
	assert.Equal(t, model.SeverityMedium, second.Mistake.Severity)
	assert.True(t, second.Mistake.Repeated)

	records := env.sessions.Mistakes(start.SessionID)
	assert.Len(t, records, 2)
}

func TestRequestHint(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	res, err := env.svc.RequestHint(ctx, start.SessionID, 10, "gentle", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.HintsUsed)
	assert.NotEmpty(t, res.Guidance.Text)
	assert.Equal(t, scaffolding.StyleHintGentle, res.Guidance.Style)

	res, err = env.svc.RequestHint(ctx, start.SessionID, 10, "direct", "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.HintsUsed)
	assert.Equal(t, scaffolding.StyleHintDirect, res.Guidance.Style)
}

func TestRequestHintOnTerminalSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	_, err := env.svc.Abandon(ctx, start.SessionID, 10)
	require.NoError(t, err)

	_, err = env.svc.RequestHint(ctx, start.SessionID, 10, "gentle", "")
	require.Error(t, err)
	assert.Equal(t, util.KindInvalidState, util.KindOf(err))
}

// 提供方内容拦截在提示接口上单独透出，不降级
func TestRequestHintContentFiltered(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)

	env.stub.QueueError(&provider.ErrContentFiltered{Reason: "policy"})
	_, err := env.svc.RequestHint(context.Background(), start.SessionID, 10, "gentle", "")
	require.Error(t, err)
	assert.Equal(t, util.KindContentFiltered, util.KindOf(err))

	// 引导未生成，计数不增加
	session, getErr := env.sessions.Get(start.SessionID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, session.HintsUsed)
}

// 引导生成失败不影响已记录的作答进度
func TestSubmitDegradesWhenProviderDown(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	env.stub.SetDown(true)

	res, err := env.svc.SubmitStepResponse(context.Background(), start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "40"})
	require.NoError(t, err)
	require.NotNil(t, res.Mistake)
	require.NotNil(t, res.Guidance)
	// 降级为脚手架模板原文，依然非空
	assert.NotEmpty(t, res.Guidance.Text)
	assert.Empty(t, res.Guidance.Provider)

	records := env.sessions.Mistakes(start.SessionID)
	assert.Len(t, records, 1)
}

func TestAbandonIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	first, err := env.svc.Abandon(ctx, start.SessionID, 10)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, first.Status)
	assert.NotNil(t, first.CompletedAt)

	second, err := env.svc.Abandon(ctx, start.SessionID, 10)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, second.Status)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())
}

func TestSnapshotReflectsProgress(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	_, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "42"})
	require.NoError(t, err)

	snap, err := env.svc.Snapshot(ctx, start.SessionID, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Session.CurrentStep)
	require.Len(t, snap.Steps, 3)
	assert.True(t, snap.Steps[0].Completed)
	assert.Equal(t, 1.0, snap.Steps[0].AccuracyScore)
	assert.False(t, snap.Steps[1].Completed)
}

func TestSnapshotNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Snapshot(context.Background(), "missing", 10)
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
}

// 并发提交同一步骤时只有一次成功，游标只前进一次
func TestConcurrentSubmitSerialized(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	const workers = 8
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := env.svc.SubmitStepResponse(ctx, start.SessionID, 10, 1, SubmitStepRequest{ResponseText: "42"})
			errs <- err
		}()
	}

	succeeded := 0
	for i := 0; i < workers; i++ {
		if err := <-errs; err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	session, err := env.sessions.Get(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.CurrentStep)
}

func TestSetManualDifficulty(t *testing.T) {
	env := newTestEnv(t)

	pref, err := env.svc.SetManualDifficulty(10, "math", model.TierHard)
	require.NoError(t, err)
	assert.Equal(t, model.TierHard, pref.Tier)
	assert.True(t, pref.Manual)
	assert.Equal(t, 1.0, pref.Confidence)
	assert.Equal(t, "manual", pref.LastReason)

	_, err = env.svc.SetManualDifficulty(10, "math", model.DifficultyTier("impossible"))
	require.Error(t, err)
	assert.Equal(t, util.KindInvalidInput, util.KindOf(err))
}

func TestAbandonStale(t *testing.T) {
	env := newTestEnv(t)
	env.seedTemplate()
	start := env.start(t)
	ctx := context.Background()

	// 未过期时不回收
	assert.Equal(t, 0, env.svc.AbandonStale(ctx))

	// 截止时间推到未来，刚建立的会话立即视为过期
	env.svc.Cfg.Tutoring.StaleSessionHours = -1
	assert.Equal(t, 1, env.svc.AbandonStale(ctx))

	session, err := env.sessions.Get(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, session.Status)

	// 已终态的会话不再出现在回收列表中
	assert.Equal(t, 0, env.svc.AbandonStale(ctx))
}
