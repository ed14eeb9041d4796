package mistake

import (
	"regexp"
	"strconv"
	"strings"

	"edu_tutor_backend/internal/model"
)

// StepContext 被分析步骤的上下文
type StepContext struct {
	StepType       model.StepType
	ExpectedAnswer string
	ExpectedShape  string // number | text | expression
	Subject        string
}

// Classification 一次作答的错误判定结果
type Classification struct {
	Kind        model.MistakeKind     `json:"kind"`
	Severity    model.MistakeSeverity `json:"severity"`
	Repeated    bool                  `json:"repeated"`
	Explanation string                `json:"explanation"`
	Remediation string                `json:"remediation"`
	FollowUps   []string              `json:"followUps"`
}

// Classifier 按固定优先级归类错误。优先级可配置，默认
// computational > procedural > conceptual，“other” 为兜底。
type Classifier struct {
	priority []model.MistakeKind
}

// NewClassifier 以给定优先级构造分类器，空切片用默认顺序。
func NewClassifier(priority []model.MistakeKind) *Classifier {
	if len(priority) == 0 {
		priority = []model.MistakeKind{
			model.MistakeComputational,
			model.MistakeProcedural,
			model.MistakeConceptual,
		}
	}
	return &Classifier{priority: priority}
}

// PriorityFromStrings 把配置里的字符串序列转成错误类别序列
func PriorityFromStrings(names []string) []model.MistakeKind {
	var out []model.MistakeKind
	for _, n := range names {
		switch model.MistakeKind(n) {
		case model.MistakeComputational, model.MistakeProcedural, model.MistakeConceptual, model.MistakeOther:
			out = append(out, model.MistakeKind(n))
		}
	}
	return out
}

// Classify 判定一次作答。第二个返回值为 false 表示未检出错误 ——
// “没有错误”是一个可区分的结果，不是 error。priorSameKind 是本会话中
// 同步骤类型下已出现的同类错误次数，用于严重度升级。
// 判定永不失败：无法得出结论时返回 other 类别而不是 error。
func (c *Classifier) Classify(response string, stepCtx StepContext, priorSameKind func(model.MistakeKind) int) (*Classification, bool) {
	resp := normalize(response)
	expected := normalize(stepCtx.ExpectedAnswer)

	if resp == "" {
		cls := c.build(model.MistakeOther, "The response was empty.", stepCtx, priorSameKind)
		return cls, true
	}

	if matches(resp, expected) {
		return nil, false
	}

	candidates := map[model.MistakeKind]string{}

	respNum, respIsNum := parseNumber(resp)
	expNum, expIsNum := parseNumber(expected)

	if respIsNum && expIsNum && respNum != expNum {
		candidates[model.MistakeComputational] = "The approach produced a number, but the value is off — likely an arithmetic slip."
	}

	if stepCtx.ExpectedShape == "number" && !respIsNum {
		candidates[model.MistakeProcedural] = "A numeric result was expected here, but the response has a different shape — the method may have gone off track."
	}

	if !respIsNum && !expIsNum {
		overlap := tokenOverlap(resp, expected)
		switch {
		case overlap == 0:
			candidates[model.MistakeConceptual] = "The response doesn't connect with the key ideas of this step — the underlying principle may be unclear."
		case overlap < 0.5:
			candidates[model.MistakeProcedural] = "Some of the right ideas are present, but the steps don't line up with the expected approach."
		default:
			candidates[model.MistakeComputational] = "The reasoning is close; a detail in the working seems to have slipped."
		}
	}

	for _, kind := range c.priority {
		if why, ok := candidates[kind]; ok {
			return c.build(kind, why, stepCtx, priorSameKind), true
		}
	}

	return c.build(model.MistakeOther, "The response differs from the expected answer in a way that doesn't fit a known pattern.", stepCtx, priorSameKind), true
}

func (c *Classifier) build(kind model.MistakeKind, why string, stepCtx StepContext, priorSameKind func(model.MistakeKind) int) *Classification {
	cls := &Classification{
		Kind:        kind,
		Severity:    model.SeverityLow,
		Explanation: why,
		Remediation: remediations[kind],
		FollowUps:   followUps[kind],
	}

	// 同一会话内同类错误重复出现时升级严重度
	if priorSameKind != nil {
		switch prior := priorSameKind(kind); {
		case prior >= 2:
			cls.Severity = model.SeverityHigh
			cls.Repeated = true
		case prior == 1:
			cls.Severity = model.SeverityMedium
			cls.Repeated = true
		}
	}

	return cls
}

// 补救策略按错误类别固定查表，保证永不为空
var remediations = map[model.MistakeKind]string{
	model.MistakeConceptual:    "Revisit the core concept behind this step before retrying: restate the principle in your own words, then apply it to a simpler example.",
	model.MistakeProcedural:    "Walk through the expected method step by step, writing down each intermediate result before moving to the next.",
	model.MistakeComputational: "Redo the calculation slowly and check each arithmetic operation — try computing it a second way to cross-check.",
	model.MistakeOther:         "Re-read the step instruction carefully and describe what it is asking for before answering again.",
}

var followUps = map[model.MistakeKind][]string{
	model.MistakeConceptual: {
		"Can you explain the main idea of this step in your own words?",
		"What rule or principle does this step rely on?",
	},
	model.MistakeProcedural: {
		"What is the first thing the method says to do?",
		"At which step does your approach differ from the standard one?",
	},
	model.MistakeComputational: {
		"If you recompute just the last operation, what do you get?",
		"Does an estimate of the answer agree with your result?",
	},
	model.MistakeOther: {
		"What do you think the step is asking for?",
		"Which part of the instruction is least clear?",
	},
}

var spaceRe = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return spaceRe.ReplaceAllString(s, " ")
}

func matches(resp, expected string) bool {
	if expected == "" {
		// 没有标准答案的步骤（如反思题）只要有实质内容即视为通过
		return len(resp) >= 3
	}
	if resp == expected {
		return true
	}
	rn, rok := parseNumber(resp)
	en, eok := parseNumber(expected)
	return rok && eok && rn == en
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(s, "."))
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(tb))
	for _, w := range tb {
		set[w] = true
	}
	shared := 0
	for _, w := range ta {
		if set[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(ta))
}
