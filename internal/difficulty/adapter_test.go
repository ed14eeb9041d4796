package difficulty

import (
	"testing"

	"edu_tutor_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodOutcomes(n int) []model.SessionOutcome {
	out := make([]model.SessionOutcome, n)
	for i := range out {
		out[i] = model.SessionOutcome{Accuracy: 1.0, Completed: true}
	}
	return out
}

func badOutcomes(n int) []model.SessionOutcome {
	out := make([]model.SessionOutcome, n)
	for i := range out {
		out[i] = model.SessionOutcome{Accuracy: 0.1, Completed: false, Hints: 5, Mistakes: 4}
	}
	return out
}

func pref(tier model.DifficultyTier) model.DifficultyPreference {
	return model.DifficultyPreference{Tier: tier, Confidence: 0.5}
}

func TestAdapt_InsufficientSampleReturnsUnchanged(t *testing.T) {
	a := NewAdapter(3)

	d := a.Adapt(pref(model.TierMedium), goodOutcomes(2), StrategyModerate)
	assert.Equal(t, model.TierMedium, d.Tier)
	assert.False(t, d.Changed)
	// 样本不足时偏好不落库，置信度也不受新数据影响
	assert.False(t, d.Applied)
	assert.Equal(t, 0.5, d.Confidence)
	assert.Contains(t, d.Reason, "insufficient sample")
}

func TestAdapt_MovesUpOnStrongPerformance(t *testing.T) {
	a := NewAdapter(3)

	d := a.Adapt(pref(model.TierMedium), goodOutcomes(5), StrategyModerate)
	require.True(t, d.Changed)
	assert.Equal(t, model.TierHard, d.Tier)
	assert.True(t, d.Applied)
	assert.NotEmpty(t, d.Reason)
}

func TestAdapt_MovesDownOnStruggles(t *testing.T) {
	a := NewAdapter(3)

	d := a.Adapt(pref(model.TierMedium), badOutcomes(5), StrategyModerate)
	require.True(t, d.Changed)
	assert.Equal(t, model.TierEasy, d.Tier)
}

func TestAdapt_NeverMovesMoreThanOneTier(t *testing.T) {
	a := NewAdapter(3)

	// 极端好的窗口也只提一档
	d := a.Adapt(pref(model.TierVeryEasy), goodOutcomes(10), StrategyAggressive)
	assert.Equal(t, model.TierEasy, d.Tier)

	// 极端差的窗口也只降一档
	d = a.Adapt(pref(model.TierVeryHard), badOutcomes(10), StrategyAggressive)
	assert.Equal(t, model.TierHard, d.Tier)
}

func TestAdapt_ClampsAtTierBounds(t *testing.T) {
	a := NewAdapter(3)

	d := a.Adapt(pref(model.TierVeryHard), goodOutcomes(5), StrategyModerate)
	assert.Equal(t, model.TierVeryHard, d.Tier)
	assert.False(t, d.Changed)

	d = a.Adapt(pref(model.TierVeryEasy), badOutcomes(5), StrategyModerate)
	assert.Equal(t, model.TierVeryEasy, d.Tier)
	assert.False(t, d.Changed)
}

func TestAdapt_StrategiesShiftThresholds(t *testing.T) {
	a := NewAdapter(3)

	// 不错但不极端的窗口：conservative 不动，aggressive 提档
	mixed := []model.SessionOutcome{
		{Accuracy: 0.8, Completed: true},
		{Accuracy: 0.75, Completed: true},
		{Accuracy: 0.8, Completed: true},
		{Accuracy: 0.7, Completed: true},
	}

	d := a.Adapt(pref(model.TierMedium), mixed, StrategyConservative)
	assert.False(t, d.Changed, "conservative should hold steady: %s", d.Reason)

	d = a.Adapt(pref(model.TierMedium), mixed, StrategyAggressive)
	assert.True(t, d.Changed, "aggressive should move up: %s", d.Reason)
	assert.Equal(t, model.TierHard, d.Tier)
}

func TestAdapt_SameHistorySameDecision(t *testing.T) {
	a := NewAdapter(3)
	window := goodOutcomes(4)

	d1 := a.Adapt(pref(model.TierMedium), window, StrategyModerate)
	d2 := a.Adapt(pref(model.TierMedium), window, StrategyModerate)
	assert.Equal(t, d1, d2, "adaptation must be deterministic")
}

func TestAdapt_ManualPreferenceOnlyProposed(t *testing.T) {
	a := NewAdapter(3)

	p := pref(model.TierEasy)
	p.Manual = true

	d := a.Adapt(p, goodOutcomes(5), StrategyModerate)
	assert.False(t, d.Applied, "manual preference must not be silently overwritten")
	assert.False(t, d.Changed)
	assert.Contains(t, d.Reason, "proposed")
	assert.Equal(t, model.TierMedium, d.Tier, "proposal should name the target tier")
}

func TestManualDecision(t *testing.T) {
	d := ManualDecision(model.TierHard)
	assert.Equal(t, model.TierHard, d.Tier)
	assert.Equal(t, 1.0, d.Confidence)
	assert.Equal(t, "manual", d.Reason)
	assert.True(t, d.Applied)
}

func TestConfidence_GrowsWithSampleAndConsistency(t *testing.T) {
	small := confidenceFrom(goodOutcomes(3))
	large := confidenceFrom(goodOutcomes(10))
	assert.Greater(t, large, small)

	inconsistent := confidenceFrom([]model.SessionOutcome{
		{Accuracy: 1.0}, {Accuracy: 0.0}, {Accuracy: 1.0}, {Accuracy: 0.0},
	})
	consistent := confidenceFrom([]model.SessionOutcome{
		{Accuracy: 0.5}, {Accuracy: 0.5}, {Accuracy: 0.5}, {Accuracy: 0.5},
	})
	assert.Greater(t, consistent, inconsistent)
}
