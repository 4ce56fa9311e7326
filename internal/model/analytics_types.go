package model

// CategoryPerformance 分类正确率
type CategoryPerformance struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"` // 0-100
	Attempts int    `json:"attempts"`
}

// TimeMetric 分类平均每题耗时
type TimeMetric struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	AvgTime int    `json:"avgTime"` // 秒
}

// WeeklyProgress 按周聚合的平均得分
type WeeklyProgress struct {
	Week     string `json:"week"` // 周起始日期 YYYY-MM-DD
	AvgScore int    `json:"avgScore"`
}

// DailyFrequency 按天统计的练习次数
type DailyFrequency struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// TrendPoint 单个分类的成绩趋势点
type TrendPoint struct {
	AttemptNumber int `json:"attemptNumber"` // 第几次尝试，从 1 开始
	Score         int `json:"score"`         // 百分比得分
}

// CategoryTrend 分类成绩趋势，少于 2 个点视为数据不足
type CategoryTrend struct {
	CategoryID       string       `json:"categoryId"`
	CategoryName     string       `json:"categoryName"`
	Points           []TrendPoint `json:"points"`
	InsufficientData bool         `json:"insufficientData"`
}

// FirstVsOverall 首次成绩与总体平均的对比
type FirstVsOverall struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FirstScore   int    `json:"firstScore"`
	OverallScore int    `json:"overallScore"`
	Improvement  int    `json:"improvement"` // overall - first，只有一次尝试时为 0
	Attempts     int    `json:"attempts"`
}

// ChallengingQuestion 错误率最高的题目
type ChallengingQuestion struct {
	QuestionID        string  `json:"questionId"`
	Question          string  `json:"question"`
	CategoryID        string  `json:"categoryId"`
	CategoryName      string  `json:"categoryName"`
	TotalAttempts     int     `json:"totalAttempts"`
	IncorrectAttempts int     `json:"incorrectAttempts"`
	IncorrectRate     float64 `json:"incorrectRate"` // 0-100
}

// ScoreBin 得分直方图分桶。0-9 … 90-99 各占一桶，100 单独成桶
type ScoreBin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TimeBin 会话耗时分桶，最后一桶上界开放
type TimeBin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AccuracyTimePoint 单题耗时与对错的散点，不做聚合
type AccuracyTimePoint struct {
	TimeSpent  float64 `json:"timeSpent"`
	IsCorrect  bool    `json:"isCorrect"`
	CategoryID string  `json:"categoryId"`
}

// AccuracyVsTime 散点数据加上对错两组的平均耗时
type AccuracyVsTime struct {
	Points           []AccuracyTimePoint `json:"points"`
	AvgTimeCorrect   int                 `json:"avgTimeCorrect"`
	AvgTimeIncorrect int                 `json:"avgTimeIncorrect"`
}

// ScoreTimePoint 会话级得分与耗时的散点
type ScoreTimePoint struct {
	TimeSpent  float64 `json:"timeSpent"`
	Score      int     `json:"score"` // 百分比得分
	CategoryID string  `json:"categoryId"`
	Date       string  `json:"date"`
}

// DashboardMetrics 仪表盘概览
type DashboardMetrics struct {
	TotalAttempts     int           `json:"totalAttempts"`
	QuestionsAnswered int           `json:"questionsAnswered"`
	CorrectAnswers    int           `json:"correctAnswers"`
	OverallScore      int           `json:"overallScore"` // 百分比
	RecentAttempts    []QuizAttempt `json:"recentAttempts"`
}
