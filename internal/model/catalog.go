package model

// QuizCategory 题库分类，只读参照数据
type QuizCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QuizQuestion 题库题目，只读参照数据
type QuizQuestion struct {
	ID                 string   `json:"id"`
	CategoryID         string   `json:"categoryId"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Explanation        string   `json:"explanation"`
	Source             string   `json:"source,omitempty"`
}
