package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeoutOption 超时未作答的哨兵值，永远不会等于任何真实选项下标
const TimeoutOption = -1

// QuizAttempt 一次练习会话
type QuizAttempt struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	// Date 创建时间，ISO-8601，创建后不可变
	Date           string  `json:"date"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	TimeSpent      float64 `json:"timeSpent"` // 秒
}

// QuestionAttempt 一道已作答的题目，创建后不可变
type QuestionAttempt struct {
	ID            string `json:"id"`
	QuizAttemptID string `json:"quizAttemptId"`
	QuestionID    string `json:"questionId"`
	// CategoryID 冗余存储，聚合时无需回表查题库
	CategoryID     string  `json:"categoryId"`
	SelectedOption int     `json:"selectedOption"`
	CorrectOption  int     `json:"correctOption"`
	IsCorrect      bool    `json:"isCorrect"`
	TimeSpent      float64 `json:"timeSpent"` // 秒
}

// UserProgress 聚合根，持久化文档的完整形态
type UserProgress struct {
	QuizAttempts     []QuizAttempt     `json:"quizAttempts"`
	QuestionAttempts []QuestionAttempt `json:"questionAttempts"`
}

// NewInitialProgress 空进度
func NewInitialProgress() *UserProgress {
	return &UserProgress{
		QuizAttempts:     []QuizAttempt{},
		QuestionAttempts: []QuestionAttempt{},
	}
}

func NewQuizAttempt(categoryID string) QuizAttempt {
	return QuizAttempt{
		ID:             GenerateUUID(),
		CategoryID:     categoryID,
		Date:           time.Now().Format(time.RFC3339),
		Score:          0,
		TotalQuestions: 0,
		TimeSpent:      0,
	}
}

func NewQuestionAttempt(quizAttemptID, questionID, categoryID string, selected, correct int, timeSpent float64) QuestionAttempt {
	return QuestionAttempt{
		ID:             GenerateUUID(),
		QuizAttemptID:  quizAttemptID,
		QuestionID:     questionID,
		CategoryID:     categoryID,
		SelectedOption: selected,
		CorrectOption:  correct,
		IsCorrect:      selected == correct && selected != TimeoutOption,
		TimeSpent:      timeSpent,
	}
}

func GenerateUUID() string {
	return uuid.New().String()
}
