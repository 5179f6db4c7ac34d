package prompt_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/soulscript/persona-api/internal/app/prompt"
	"github.com/soulscript/persona-api/internal/domain"
)

func TestBuildIsDeterministic(t *testing.T) {
	input := map[string][]string{"insights": {"sleep improved", "still anxious"}}

	a, err := prompt.Build(prompt.StageAggregation, input)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := prompt.Build(prompt.StageAggregation, input)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if a != b {
		t.Fatalf("same input produced different prompts:\n%q\n%q", a.User, b.User)
	}
}

func TestBuildAppendsStringInputVerbatim(t *testing.T) {
	content := "Title: Rough day\nContent: slept badly"

	p, err := prompt.Build(prompt.StageAnalysis, content)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !strings.Contains(p.User, content) {
		t.Fatalf("prompt does not contain the input verbatim:\n%s", p.User)
	}
}

func TestBuildEmotionStageListsEveryLabel(t *testing.T) {
	p, err := prompt.Build(prompt.StageEmotion, "felt fine today")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, label := range domain.Emotions {
		if !strings.Contains(p.User, string(label)) {
			t.Fatalf("emotion prompt missing label %q", label)
		}
	}
	if p.System == "" || !strings.Contains(p.System, "emotion") {
		t.Fatalf("expected emotion system instruction, got %q", p.System)
	}
}

func TestBuildUnknownStage(t *testing.T) {
	if _, err := prompt.Build(prompt.Stage("bogus"), "x"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestBuildUnserializableInput(t *testing.T) {
	_, err := prompt.Build(prompt.StageExtraction, map[string]any{"bad": func() {}})
	if err == nil {
		t.Fatal("expected serialization error")
	}

	var serErr *domain.InputSerializationError
	if !errors.As(err, &serErr) {
		t.Fatalf("expected InputSerializationError, got %T: %v", err, err)
	}
}

func TestFormatRecord(t *testing.T) {
	rec := domain.Record{
		ID:        "r1",
		Timestamp: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		Title:     "Morning pages",
		Content:   "wrote for twenty minutes",
	}

	got := prompt.FormatRecord(rec)

	for _, want := range []string{"Morning pages", "2024-03-15", "wrote for twenty minutes"} {
		if !strings.Contains(got, want) {
			t.Fatalf("formatted record missing %q:\n%s", want, got)
		}
	}
}
