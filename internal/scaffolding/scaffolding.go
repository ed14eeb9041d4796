package scaffolding

import (
	"math/rand"
	"sync"
)

// Purpose 脚手架用途，每个用途有独立的风格词汇表
type Purpose string

const (
	PurposeProblemSolving   Purpose = "problem_solving"
	PurposeMistakeAnalysis  Purpose = "mistake_analysis"
	PurposeReflection       Purpose = "reflection"
	PurposeEmotionalSupport Purpose = "emotional_support"
	PurposeHint             Purpose = "hint"
)

// Style 某一用途下的脚手架风格
type Style string

const (
	// problem_solving
	StyleStepByStep  Style = "step_by_step"
	StyleBalanced    Style = "balanced"
	StyleIndependent Style = "independent"

	// mistake_analysis
	StyleGentleCorrection  Style = "gentle_correction"
	StyleSocraticProbe     Style = "socratic_probe"
	StyleDirectExplanation Style = "direct_explanation"

	// reflection
	StyleOpenEnded  Style = "open_ended"
	StyleStructured Style = "structured"

	// emotional_support
	StyleReassuring Style = "reassuring"
	StyleEnergizing Style = "energizing"

	// hint
	StyleHintGentle   Style = "gentle"
	StyleHintModerate Style = "moderate"
	StyleHintDirect   Style = "direct"
)

// Recommendation 上游显式的风格建议
type Recommendation string

const (
	RecommendNone        Recommendation = ""
	RecommendSupportive  Recommendation = "supportive"
	RecommendChallenging Recommendation = "challenging"
	RecommendBalanced    Recommendation = "balanced"
)

// Emotion 学生情绪标签
type Emotion string

const (
	EmotionNone       Emotion = ""
	EmotionFrustrated Emotion = "frustrated"
	EmotionConfused   Emotion = "confused"
	EmotionAnxious    Emotion = "anxious"
	EmotionConfident  Emotion = "confident"
	EmotionExcited    Emotion = "excited"
)

// Trend 近期表现趋势
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendSteady    Trend = "steady"
	TrendDeclining Trend = "declining"
)

// Performance 表现摘要，缺失时渲染退化为基础模板
type Performance struct {
	Strengths []string
	Struggles []string
	Trend     Trend
}

// Context 每次请求重建的选择输入，不持久化
type Context struct {
	Subject        string
	Difficulty     int // 1(最低)..5(最高)
	Emotion        Emotion
	Recommendation Recommendation
	Performance    *Performance
}

// Result 渲染结果与来源信息
type Result struct {
	Prompt              string  `json:"prompt"`
	Purpose             Purpose `json:"purpose"`
	Style               Style   `json:"style"`
	Personalized        bool    `json:"personalized"`
	EmotionAcknowledged bool    `json:"emotionAcknowledged"`
}

// Selector 将上下文映射为脚手架结果；措辞随机但可用种子复现
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(seed int64) *Selector {
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// Select 选择风格并渲染模板。
// 优先级：显式建议 > 情绪标签 > 难度兜底。
func (s *Selector) Select(purpose Purpose, ctx Context) Result {
	style := resolveStyle(purpose, ctx)
	bundle := bundleFor(purpose, style)

	s.mu.Lock()
	question := bundle.Questions[s.rng.Intn(len(bundle.Questions))]
	encouragement := bundle.Encouragements[s.rng.Intn(len(bundle.Encouragements))]
	s.mu.Unlock()

	prompt := bundle.Intro + "\n\n" + question + "\n\n" + encouragement

	result := Result{Purpose: purpose, Style: style}

	if p := ctx.Performance; p != nil {
		if line := personalize(p); line != "" {
			prompt += "\n\n" + line
			result.Personalized = true
		}
	}

	if ack, ok := emotionAcks[ctx.Emotion]; ok {
		prompt = ack + "\n\n" + prompt
		result.EmotionAcknowledged = true
	}

	result.Prompt = prompt
	return result
}

// SelectHint 将提示强度映射到 hint 用途的风格上
func (s *Selector) SelectHint(intensity Style, ctx Context) Result {
	switch intensity {
	case StyleHintGentle, StyleHintModerate, StyleHintDirect:
	default:
		intensity = StyleHintGentle
	}
	hintCtx := ctx
	hintCtx.Recommendation = Recommendation(intensity)
	return s.Select(PurposeHint, hintCtx)
}

// resolveStyle 对每个用途都是全函数；未知组合收敛到该用途的默认风格
func resolveStyle(purpose Purpose, ctx Context) Style {
	// hint 用途直接由建议字段承载强度
	if purpose == PurposeHint {
		switch Style(ctx.Recommendation) {
		case StyleHintModerate:
			return StyleHintModerate
		case StyleHintDirect:
			return StyleHintDirect
		default:
			return StyleHintGentle
		}
	}

	concrete, balanced, independent := styleTriple(purpose)

	// 1. 显式建议
	switch ctx.Recommendation {
	case RecommendSupportive:
		return concrete
	case RecommendChallenging:
		return independent
	case RecommendBalanced:
		return balanced
	}

	// 2. 情绪标签
	switch ctx.Emotion {
	case EmotionFrustrated, EmotionConfused, EmotionAnxious:
		return concrete
	case EmotionConfident, EmotionExcited:
		return independent
	}

	// 3. 难度兜底
	switch {
	case ctx.Difficulty <= 2:
		return concrete
	case ctx.Difficulty >= 4:
		return independent
	default:
		return balanced
	}
}

// styleTriple 返回某一用途下（最具体、平衡、最放手）三档风格
func styleTriple(purpose Purpose) (Style, Style, Style) {
	switch purpose {
	case PurposeMistakeAnalysis:
		return StyleGentleCorrection, StyleSocraticProbe, StyleDirectExplanation
	case PurposeReflection:
		return StyleStructured, StyleStructured, StyleOpenEnded
	case PurposeEmotionalSupport:
		return StyleReassuring, StyleReassuring, StyleEnergizing
	default:
		return StyleStepByStep, StyleBalanced, StyleIndependent
	}
}

// personalize 优先点出弱项，其次强项，最后退化为趋势提及；
// 三者皆缺时返回空串，渲染不标记个性化
func personalize(p *Performance) string {
	if len(p.Struggles) > 0 {
		return "Earlier you found " + p.Struggles[0] + " tricky, so take that part slowly here."
	}
	if len(p.Strengths) > 0 {
		return "You've been strong at " + p.Strengths[0] + " — lean on that here."
	}
	switch p.Trend {
	case TrendImproving:
		return "Your recent sessions have been getting steadily better — keep that going."
	case TrendDeclining:
		return "The last few sessions were tough, so we'll take this one piece at a time."
	}
	return ""
}
