package model_test

import (
	"encoding/json"
	"testing"

	"exam_review_backend/internal/model"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("test fixture is not an object")
	}
	return obj
}

func TestValidateEmptyAggregate(t *testing.T) {
	if err := model.Validate(decode(t, `{"quizAttempts":[],"questionAttempts":[]}`)); err != nil {
		t.Fatalf("empty aggregate should be valid, got: %v", err)
	}
	if err := model.Validate(model.NewInitialProgress()); err != nil {
		t.Fatalf("typed empty aggregate should be valid, got: %v", err)
	}
}

func TestValidateWellFormedAggregate(t *testing.T) {
	doc := `{
		"quizAttempts": [
			{"id":"a1","categoryId":"legal","date":"2026-01-15T10:00:00Z","score":2,"totalQuestions":3,"timeSpent":120}
		],
		"questionAttempts": [
			{"id":"q1","quizAttemptId":"a1","questionId":"legal1","categoryId":"legal","selectedOption":1,"correctOption":1,"isCorrect":true,"timeSpent":40}
		]
	}`
	if err := model.Validate(decode(t, doc)); err != nil {
		t.Fatalf("well-formed aggregate should be valid, got: %v", err)
	}
}

func TestValidateRejectsNonObjects(t *testing.T) {
	for _, candidate := range []any{nil, "string", 42.0, []any{}} {
		if err := model.Validate(candidate); err == nil {
			t.Fatalf("candidate %#v should be rejected", candidate)
		}
	}
}

func TestValidateRejectsMissingArrays(t *testing.T) {
	cases := []string{
		`{}`,
		`{"quizAttempts":[]}`,
		`{"questionAttempts":[]}`,
		`{"quizAttempts":"nope","questionAttempts":[]}`,
		`{"quizAttempts":[],"questionAttempts":{"a":1}}`,
	}
	for _, doc := range cases {
		if err := model.Validate(decode(t, doc)); err == nil {
			t.Fatalf("document %s should be rejected", doc)
		}
	}
}

func TestValidateRejectsMalformedQuizAttempts(t *testing.T) {
	cases := map[string]string{
		"empty id":        `{"quizAttempts":[{"id":"","categoryId":"c","date":"2026-01-01","score":0,"totalQuestions":0}],"questionAttempts":[]}`,
		"missing date":    `{"quizAttempts":[{"id":"x","categoryId":"c","score":0,"totalQuestions":0}],"questionAttempts":[]}`,
		"unparsable date": `{"quizAttempts":[{"id":"x","categoryId":"c","date":"not-a-date","score":1,"totalQuestions":1}],"questionAttempts":[]}`,
		"string score":    `{"quizAttempts":[{"id":"x","categoryId":"c","date":"2026-01-01","score":"1","totalQuestions":1}],"questionAttempts":[]}`,
		"negative total":  `{"quizAttempts":[{"id":"x","categoryId":"c","date":"2026-01-01","score":0,"totalQuestions":-1}],"questionAttempts":[]}`,
		"string time":     `{"quizAttempts":[{"id":"x","categoryId":"c","date":"2026-01-01","score":0,"totalQuestions":0,"timeSpent":"fast"}],"questionAttempts":[]}`,
	}
	for name, doc := range cases {
		if err := model.Validate(decode(t, doc)); err == nil {
			t.Fatalf("%s: document should be rejected", name)
		}
	}
}

func TestValidateRejectsMalformedQuestionAttempts(t *testing.T) {
	cases := map[string]string{
		"missing quizAttemptId": `{"quizAttempts":[],"questionAttempts":[{"id":"q","questionId":"x","categoryId":"c","selectedOption":1,"correctOption":1,"isCorrect":true}]}`,
		"string option":         `{"quizAttempts":[],"questionAttempts":[{"id":"q","quizAttemptId":"a","questionId":"x","categoryId":"c","selectedOption":"b","correctOption":1,"isCorrect":false}]}`,
		"non-bool isCorrect":    `{"quizAttempts":[],"questionAttempts":[{"id":"q","quizAttemptId":"a","questionId":"x","categoryId":"c","selectedOption":1,"correctOption":1,"isCorrect":"yes"}]}`,
	}
	for name, doc := range cases {
		if err := model.Validate(decode(t, doc)); err == nil {
			t.Fatalf("%s: document should be rejected", name)
		}
	}
}

func TestValidateOptionalTimeSpent(t *testing.T) {
	// timeSpent 缺失合法
	doc := `{
		"quizAttempts": [{"id":"a1","categoryId":"legal","date":"2026-01-15T10:00:00Z","score":0,"totalQuestions":0}],
		"questionAttempts": []
	}`
	if err := model.Validate(decode(t, doc)); err != nil {
		t.Fatalf("missing optional timeSpent should be tolerated, got: %v", err)
	}
}

func TestValidationErrorNamesOffendingField(t *testing.T) {
	doc := `{"quizAttempts":[{"id":"x","categoryId":"c","date":"nope","score":1,"totalQuestions":1}],"questionAttempts":[]}`
	err := model.Validate(decode(t, doc))
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve, ok := err.(*model.ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Section != "quizAttempts" || ve.Index != 0 || ve.Field != "date" {
		t.Fatalf("error should locate quizAttempts[0].date, got %+v", ve)
	}
}

func TestTimeoutSentinelNeverCorrect(t *testing.T) {
	q := model.NewQuestionAttempt("a1", "q1", "legal", model.TimeoutOption, model.TimeoutOption, 5)
	if q.IsCorrect {
		t.Fatal("timed-out answer must never count as correct")
	}
	q = model.NewQuestionAttempt("a1", "q1", "legal", 1, 1, 5)
	if !q.IsCorrect {
		t.Fatal("matching selected and correct options must count as correct")
	}
}
