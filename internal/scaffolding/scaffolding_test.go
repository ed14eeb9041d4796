package scaffolding

import (
	"strings"
	"testing"
)

func TestSelect_RecommendationTakesPrecedence(t *testing.T) {
	s := NewSelector(1)
	res := s.Select(PurposeProblemSolving, Context{
		Recommendation: RecommendChallenging,
		Emotion:        EmotionFrustrated, // 情绪会指向 concrete，但显式建议优先
		Difficulty:     1,
	})
	if res.Style != StyleIndependent {
		t.Fatalf("expected independent style, got %q", res.Style)
	}
}

func TestSelect_EmotionBeatsDifficulty(t *testing.T) {
	s := NewSelector(1)

	res := s.Select(PurposeProblemSolving, Context{Emotion: EmotionAnxious, Difficulty: 5})
	if res.Style != StyleStepByStep {
		t.Fatalf("anxious should select step_by_step, got %q", res.Style)
	}

	res = s.Select(PurposeProblemSolving, Context{Emotion: EmotionExcited, Difficulty: 1})
	if res.Style != StyleIndependent {
		t.Fatalf("excited should select independent, got %q", res.Style)
	}
}

func TestSelect_DifficultyFallback(t *testing.T) {
	s := NewSelector(1)

	cases := []struct {
		difficulty int
		want       Style
	}{
		{1, StyleStepByStep},
		{2, StyleStepByStep},
		{3, StyleBalanced},
		{4, StyleIndependent},
		{5, StyleIndependent},
	}
	for _, tc := range cases {
		res := s.Select(PurposeProblemSolving, Context{Difficulty: tc.difficulty})
		if res.Style != tc.want {
			t.Fatalf("difficulty %d: expected %q, got %q", tc.difficulty, tc.want, res.Style)
		}
	}
}

func TestSelect_StylesStayWithinPurposeVocabulary(t *testing.T) {
	s := NewSelector(7)
	res := s.Select(PurposeMistakeAnalysis, Context{Difficulty: 3})
	switch res.Style {
	case StyleGentleCorrection, StyleSocraticProbe, StyleDirectExplanation:
	default:
		t.Fatalf("mistake analysis produced out-of-vocabulary style %q", res.Style)
	}
	if res.Purpose != PurposeMistakeAnalysis {
		t.Fatalf("unexpected purpose %q", res.Purpose)
	}
}

func TestSelect_DeterministicForSeed(t *testing.T) {
	ctx := Context{Difficulty: 3, Subject: "algebra"}

	a := NewSelector(42).Select(PurposeProblemSolving, ctx)
	b := NewSelector(42).Select(PurposeProblemSolving, ctx)
	if a.Prompt != b.Prompt {
		t.Fatalf("same seed produced different prompts:\n%q\n%q", a.Prompt, b.Prompt)
	}
}

func TestSelect_PersonalizationApplied(t *testing.T) {
	s := NewSelector(1)
	res := s.Select(PurposeProblemSolving, Context{
		Difficulty:  3,
		Performance: &Performance{Struggles: []string{"fractions"}, Trend: TrendImproving},
	})
	if !res.Personalized {
		t.Fatal("expected personalization flag")
	}
	if !strings.Contains(res.Prompt, "fractions") {
		t.Fatalf("prompt should reference struggle area: %q", res.Prompt)
	}
}

// 表现摘要只有趋势、没有强弱项时同样触发个性化
func TestSelect_TrendOnlyStillPersonalizes(t *testing.T) {
	s := NewSelector(1)
	for _, purpose := range []Purpose{PurposeProblemSolving, PurposeMistakeAnalysis, PurposeHint} {
		res := s.Select(purpose, Context{
			Difficulty:  3,
			Performance: &Performance{Trend: TrendImproving},
		})
		if !res.Personalized {
			t.Fatalf("%s: trend-only performance should personalize", purpose)
		}
		if !strings.Contains(res.Prompt, "steadily better") {
			t.Fatalf("%s: prompt should mention the trend: %q", purpose, res.Prompt)
		}
	}

	// 趋势平稳时没有可说的内容，不标记个性化
	res := s.Select(PurposeProblemSolving, Context{
		Difficulty:  3,
		Performance: &Performance{Trend: TrendSteady},
	})
	if res.Personalized {
		t.Fatal("steady trend alone should not personalize")
	}
}

func TestSelect_NoPerformanceDegradesGracefully(t *testing.T) {
	s := NewSelector(1)
	res := s.Select(PurposeProblemSolving, Context{Difficulty: 3})
	if res.Personalized {
		t.Fatal("personalization flagged without a performance summary")
	}
	if res.Prompt == "" {
		t.Fatal("base template must still render")
	}
}

func TestSelect_EmotionAcknowledgment(t *testing.T) {
	s := NewSelector(1)
	res := s.Select(PurposeEmotionalSupport, Context{Emotion: EmotionFrustrated})
	if !res.EmotionAcknowledged {
		t.Fatal("expected emotion acknowledgment")
	}

	res = s.Select(PurposeEmotionalSupport, Context{})
	if res.EmotionAcknowledged {
		t.Fatal("no emotion tag, no acknowledgment")
	}
}

func TestSelectHint_IntensityMapping(t *testing.T) {
	s := NewSelector(1)

	for _, intensity := range []Style{StyleHintGentle, StyleHintModerate, StyleHintDirect} {
		res := s.SelectHint(intensity, Context{Difficulty: 3})
		if res.Style != intensity {
			t.Fatalf("hint intensity %q mapped to %q", intensity, res.Style)
		}
		if res.Prompt == "" {
			t.Fatal("hint prompt must be non-empty")
		}
	}

	// 未知强度收敛到 gentle
	res := s.SelectHint(Style("extreme"), Context{})
	if res.Style != StyleHintGentle {
		t.Fatalf("unknown intensity should clamp to gentle, got %q", res.Style)
	}
}
