package model

import (
	"fmt"
	"math"
	"time"
)

// ValidationError 结构校验失败。定位到数组、下标、字段，方便排查损坏的持久化数据
type ValidationError struct {
	Section string // "progress" / "quizAttempts" / "questionAttempts"
	Index   int    // -1 表示与某条记录无关
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s[%d].%s: %s", e.Section, e.Index, e.Field, e.Reason)
}

func invalid(section string, index int, field, reason string) *ValidationError {
	return &ValidationError{Section: section, Index: index, Field: field, Reason: reason}
}

// Validate 校验任意候选对象是否满足 UserProgress 的结构。
// 输入是有意不定型的：新加载、导入的数据在通过这里之前不享受类型系统的任何保证。
// 只做结构校验，不检查 quizAttemptId 之类的引用是否可解析——引用松散是设计使然，
// 由 FinalizeQuizAttempt 的重算路径负责修复。
func Validate(candidate any) error {
	switch p := candidate.(type) {
	case *UserProgress:
		if p == nil {
			return invalid("progress", -1, "", "progress is nil")
		}
		return validateTyped(p)
	case UserProgress:
		return validateTyped(&p)
	case map[string]any:
		return validateGeneric(p)
	case nil:
		return invalid("progress", -1, "", "progress is nil")
	default:
		return invalid("progress", -1, "", fmt.Sprintf("progress is not an object (got %T)", candidate))
	}
}

func validateTyped(p *UserProgress) error {
	if p.QuizAttempts == nil {
		return invalid("progress", -1, "quizAttempts", "quizAttempts is not an array")
	}
	if p.QuestionAttempts == nil {
		return invalid("progress", -1, "questionAttempts", "questionAttempts is not an array")
	}

	for i, a := range p.QuizAttempts {
		if a.ID == "" {
			return invalid("quizAttempts", i, "id", "must be a non-empty string")
		}
		if a.CategoryID == "" {
			return invalid("quizAttempts", i, "categoryId", "must be a non-empty string")
		}
		if a.Date == "" {
			return invalid("quizAttempts", i, "date", "must be a non-empty string")
		}
		if !parseableDate(a.Date) {
			return invalid("quizAttempts", i, "date", "must be a valid date")
		}
		if a.TotalQuestions < 0 {
			return invalid("quizAttempts", i, "totalQuestions", "must be >= 0")
		}
		if !isFinite(a.TimeSpent) {
			return invalid("quizAttempts", i, "timeSpent", "must be a finite number")
		}
	}

	for i, q := range p.QuestionAttempts {
		if q.ID == "" {
			return invalid("questionAttempts", i, "id", "must be a non-empty string")
		}
		if q.QuizAttemptID == "" {
			return invalid("questionAttempts", i, "quizAttemptId", "must be a non-empty string")
		}
		if q.QuestionID == "" {
			return invalid("questionAttempts", i, "questionId", "must be a non-empty string")
		}
		if q.CategoryID == "" {
			return invalid("questionAttempts", i, "categoryId", "must be a non-empty string")
		}
		if !isFinite(q.TimeSpent) {
			return invalid("questionAttempts", i, "timeSpent", "must be a finite number")
		}
	}

	return nil
}

// validateGeneric 对 json.Unmarshal 到 any 的原始文档逐字段校验
func validateGeneric(m map[string]any) error {
	quizRaw, ok := m["quizAttempts"]
	if !ok {
		return invalid("progress", -1, "quizAttempts", "missing")
	}
	quizList, ok := quizRaw.([]any)
	if !ok {
		return invalid("progress", -1, "quizAttempts", "is not an array")
	}

	questionRaw, ok := m["questionAttempts"]
	if !ok {
		return invalid("progress", -1, "questionAttempts", "missing")
	}
	questionList, ok := questionRaw.([]any)
	if !ok {
		return invalid("progress", -1, "questionAttempts", "is not an array")
	}

	for i, item := range quizList {
		obj, ok := item.(map[string]any)
		if !ok {
			return invalid("quizAttempts", i, "", "is not an object")
		}
		if err := requireString(obj, "quizAttempts", i, "id"); err != nil {
			return err
		}
		if err := requireString(obj, "quizAttempts", i, "categoryId"); err != nil {
			return err
		}
		if err := requireString(obj, "quizAttempts", i, "date"); err != nil {
			return err
		}
		if !parseableDate(obj["date"].(string)) {
			return invalid("quizAttempts", i, "date", "must be a valid date")
		}
		if err := requireNumber(obj, "quizAttempts", i, "score"); err != nil {
			return err
		}
		if err := requireNumber(obj, "quizAttempts", i, "totalQuestions"); err != nil {
			return err
		}
		if obj["totalQuestions"].(float64) < 0 {
			return invalid("quizAttempts", i, "totalQuestions", "must be >= 0")
		}
		if err := optionalNumber(obj, "quizAttempts", i, "timeSpent"); err != nil {
			return err
		}
	}

	for i, item := range questionList {
		obj, ok := item.(map[string]any)
		if !ok {
			return invalid("questionAttempts", i, "", "is not an object")
		}
		for _, field := range []string{"id", "quizAttemptId", "questionId", "categoryId"} {
			if err := requireString(obj, "questionAttempts", i, field); err != nil {
				return err
			}
		}
		if err := requireNumber(obj, "questionAttempts", i, "selectedOption"); err != nil {
			return err
		}
		if err := requireNumber(obj, "questionAttempts", i, "correctOption"); err != nil {
			return err
		}
		if _, ok := obj["isCorrect"].(bool); !ok {
			return invalid("questionAttempts", i, "isCorrect", "must be a boolean")
		}
		if err := optionalNumber(obj, "questionAttempts", i, "timeSpent"); err != nil {
			return err
		}
	}

	return nil
}

func requireString(obj map[string]any, section string, index int, field string) error {
	v, ok := obj[field].(string)
	if !ok || v == "" {
		return invalid(section, index, field, "must be a non-empty string")
	}
	return nil
}

func requireNumber(obj map[string]any, section string, index int, field string) error {
	v, ok := obj[field].(float64)
	if !ok || !isFinite(v) {
		return invalid(section, index, field, "must be a finite number")
	}
	return nil
}

// optionalNumber 字段缺失合法，存在时必须是有限数字
func optionalNumber(obj map[string]any, section string, index int, field string) error {
	raw, ok := obj[field]
	if !ok || raw == nil {
		return nil
	}
	v, ok := raw.(float64)
	if !ok || !isFinite(v) {
		return invalid(section, index, field, "must be a finite number")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseableDate(s string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
