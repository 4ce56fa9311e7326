package service

import (
	"math"
	"testing"

	"exam_review_backend/internal/model"
)

func TestSanitizeProgressRepairsNonFiniteValues(t *testing.T) {
	in := &model.UserProgress{
		QuizAttempts: []model.QuizAttempt{
			{ID: "a1", CategoryID: "legal", Date: "not-a-date", Score: -3, TotalQuestions: -1, TimeSpent: math.NaN()},
			{ID: "a2", CategoryID: "legal", Date: "2026-01-15T10:00:00Z", Score: 5, TotalQuestions: 2, TimeSpent: math.Inf(1)},
		},
		QuestionAttempts: []model.QuestionAttempt{
			{ID: "q1", QuizAttemptID: "a1", QuestionID: "legal1", CategoryID: "legal", SelectedOption: 1, CorrectOption: 1, IsCorrect: true, TimeSpent: math.Inf(-1)},
		},
	}

	out := sanitizeProgress(in)

	a1 := out.QuizAttempts[0]
	if a1.Date != "1970-01-01T00:00:00Z" {
		t.Fatalf("unparsable date should become epoch, got %q", a1.Date)
	}
	if a1.Score != 0 || a1.TotalQuestions != 0 {
		t.Fatalf("negative counts should be zeroed, got %+v", a1)
	}
	if a1.TimeSpent != 0 {
		t.Fatalf("NaN timeSpent should become 0, got %v", a1.TimeSpent)
	}

	a2 := out.QuizAttempts[1]
	if a2.Date != "2026-01-15T10:00:00Z" {
		t.Fatalf("valid date must pass through unchanged, got %q", a2.Date)
	}
	if a2.Score != 2 {
		t.Fatalf("score should be clamped to totalQuestions, got %d", a2.Score)
	}
	if a2.TimeSpent != 0 {
		t.Fatalf("infinite timeSpent should become 0, got %v", a2.TimeSpent)
	}

	if out.QuestionAttempts[0].TimeSpent != 0 {
		t.Fatalf("infinite question timeSpent should become 0, got %v", out.QuestionAttempts[0].TimeSpent)
	}

	if err := model.Validate(out); err != nil {
		t.Fatalf("sanitized progress must validate: %v", err)
	}

	// 原聚合不动
	if !math.IsNaN(in.QuizAttempts[0].TimeSpent) {
		t.Fatal("sanitization must copy, not mutate the input")
	}
}
