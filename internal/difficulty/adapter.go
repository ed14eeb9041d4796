package difficulty

import (
	"fmt"
	"math"

	"edu_tutor_backend/internal/model"
)

// Strategy 难度调整策略，作为显式输入而不是隐藏默认值，
// 同一份历史可以在不同策略下确定性重放。
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyModerate     Strategy = "moderate"
	StrategyAggressive   Strategy = "aggressive"
)

type thresholds struct {
	up   float64 // 综合得分高于该值则提档
	down float64 // 低于该值则降档
}

var strategyThresholds = map[Strategy]thresholds{
	StrategyConservative: {up: 0.90, down: 0.30},
	StrategyModerate:     {up: 0.80, down: 0.40},
	StrategyAggressive:   {up: 0.70, down: 0.50},
}

// ParseStrategy 解析配置字符串，未知值回落到 moderate
func ParseStrategy(s string) Strategy {
	switch Strategy(s) {
	case StrategyConservative, StrategyAggressive:
		return Strategy(s)
	default:
		return StrategyModerate
	}
}

// Decision 一次自适应调用的产物。Applied 为 false 时 Tier 仅是提议，
// 例如偏好被手动固定时。
type Decision struct {
	Tier       model.DifficultyTier `json:"tier"`
	Confidence float64              `json:"confidence"`
	Reason     string               `json:"reason"`
	Changed    bool                 `json:"changed"`
	Applied    bool                 `json:"applied"`
}

// Adapter 根据会话结果窗口维护难度偏好
type Adapter struct {
	minSampleSize int
}

func NewAdapter(minSampleSize int) *Adapter {
	if minSampleSize <= 0 {
		minSampleSize = 3
	}
	return &Adapter{minSampleSize: minSampleSize}
}

// Adapt 是纯函数：不修改传入偏好，调用方通过统一的更新路径落库。
// 样本量不足时返回原偏好，置信度不受影响；单次调用最多移动一档。
func (a *Adapter) Adapt(pref model.DifficultyPreference, outcomes []model.SessionOutcome, strategy Strategy) Decision {
	if len(outcomes) < a.minSampleSize {
		// 原偏好原样保留，样本不足连 LastReason 也不改写
		return Decision{
			Tier:       pref.Tier,
			Confidence: pref.Confidence,
			Reason:     fmt.Sprintf("insufficient sample (%d of %d sessions)", len(outcomes), a.minSampleSize),
			Applied:    false,
		}
	}

	th, ok := strategyThresholds[strategy]
	if !ok {
		th = strategyThresholds[StrategyModerate]
	}

	score := compositeScore(outcomes)
	confidence := confidenceFrom(outcomes)

	cur := model.TierIndex(pref.Tier)
	next := cur
	var reason string

	switch {
	case score >= th.up:
		next = cur + 1
		reason = fmt.Sprintf("strong recent performance (score %.2f >= %.2f, %s strategy)", score, th.up, strategy)
	case score <= th.down:
		next = cur - 1
		reason = fmt.Sprintf("recent struggles (score %.2f <= %.2f, %s strategy)", score, th.down, strategy)
	default:
		reason = fmt.Sprintf("performance steady (score %.2f within [%.2f, %.2f])", score, th.down, th.up)
	}

	tier := model.TierAt(next)
	changed := tier != pref.Tier

	// 手动设置的偏好在本轮只能被“提议”覆盖，不能静默改写
	if pref.Manual && changed {
		return Decision{
			Tier:       tier,
			Confidence: confidence,
			Reason:     "proposed: " + reason + " (preference manually pinned)",
			Changed:    false,
			Applied:    false,
		}
	}

	return Decision{
		Tier:       tier,
		Confidence: confidence,
		Reason:     reason,
		Changed:    changed,
		Applied:    true,
	}
}

// ManualDecision 手动覆盖：永远优先，置信度 1.0，原因固定为 manual。
func ManualDecision(tier model.DifficultyTier) Decision {
	return Decision{
		Tier:       tier,
		Confidence: 1.0,
		Reason:     "manual",
		Changed:    true,
		Applied:    true,
	}
}

// compositeScore 把结果窗口折算成 0..1 的综合得分
func compositeScore(outcomes []model.SessionOutcome) float64 {
	var acc, completed, hints, mistakes float64
	for _, o := range outcomes {
		acc += o.Accuracy
		if o.Completed {
			completed++
		}
		hints += float64(o.Hints)
		mistakes += float64(o.Mistakes)
	}
	n := float64(len(outcomes))

	score := 0.7*(acc/n) + 0.3*(completed/n)
	score -= 0.03 * (hints / n)
	score -= 0.05 * (mistakes / n)

	return clamp01(score)
}

// confidenceFrom 由样本量和结果一致性推出置信度
func confidenceFrom(outcomes []model.SessionOutcome) float64 {
	n := float64(len(outcomes))

	mean := 0.0
	for _, o := range outcomes {
		mean += o.Accuracy
	}
	mean /= n

	variance := 0.0
	for _, o := range outcomes {
		variance += (o.Accuracy - mean) * (o.Accuracy - mean)
	}
	variance /= n

	sampleFactor := math.Min(1, n/10)
	consistency := 1 - math.Min(1, math.Sqrt(variance)*2)

	return clamp01(0.3 + 0.4*sampleFactor + 0.3*consistency)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
