package provider

import (
	"strings"
	"testing"
)

func TestNewGenerationOptions_Validation(t *testing.T) {
	cases := []struct {
		name        string
		temperature float64
		topP        float64
		maxTokens   int
		wantErr     bool
	}{
		{"valid", 0.7, 0.9, 512, false},
		{"zero max tokens defaults", 0.5, 1.0, 0, false},
		{"temperature too high", 1.5, 1.0, 100, true},
		{"negative temperature", -0.1, 1.0, 100, true},
		{"topP out of range", 0.5, 1.2, 100, true},
		{"negative max tokens", 0.5, 1.0, -1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := NewGenerationOptions(tc.temperature, tc.topP, tc.maxTokens, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if opts.MaxTokens == 0 {
				t.Fatal("max tokens should default when zero")
			}
		})
	}
}

func TestSanitizeText_StripsControlCharacters(t *testing.T) {
	in := "hello\x00 world\x01\x02 keep\nnewline\tand tab"
	got := sanitizeText(in, 0)
	if strings.ContainsAny(got, "\x00\x01\x02") {
		t.Fatalf("control characters survived: %q", got)
	}
	if !strings.Contains(got, "\n") || !strings.Contains(got, "\t") {
		t.Fatalf("newline/tab should be kept: %q", got)
	}
}

func TestSanitizeText_TruncatesOnRuneBoundary(t *testing.T) {
	in := strings.Repeat("数", 10) // 3 bytes per rune
	got := sanitizeText(in, 10)
	if len(got) > 10 {
		t.Fatalf("expected <= 10 bytes, got %d", len(got))
	}
	for _, r := range got {
		if r != '数' {
			t.Fatalf("truncation split a rune: %q", got)
		}
	}
}

func TestStubAdapter_Deterministic(t *testing.T) {
	s := NewStubAdapter("stub")
	res, err := s.Generate(t.Context(), "prompt", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text == "" {
		t.Fatal("stub must always produce guidance text")
	}
	if res.Provider != "stub" {
		t.Fatalf("unexpected provider id %q", res.Provider)
	}
	if s.CallCount() != 1 {
		t.Fatalf("expected 1 recorded call, got %d", s.CallCount())
	}
}

func TestCheckPrompt_MaxLength(t *testing.T) {
	limits := Limits{MaxPromptLength: 10}
	if err := checkPrompt("short", limits); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := checkPrompt(strings.Repeat("x", 11), limits); err == nil {
		t.Fatal("expected length violation")
	}
}
