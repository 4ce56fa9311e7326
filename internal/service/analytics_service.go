package service

import (
	"exam_review_backend/internal/model"
	"exam_review_backend/internal/repository"
	"math"
	"sort"
	"time"
)

// MaxChallengingQuestions 错题榜固定长度
const MaxChallengingQuestions = 10

// timeBin 会话耗时分桶配置，分钟为单位，end 为 0 表示上界开放
type timeBinConfig struct {
	label string
	start float64
	end   float64
}

var timeBins = []timeBinConfig{
	{"0-5 min", 0, 5},
	{"5-10 min", 5, 10},
	{"10-15 min", 10, 15},
	{"15-20 min", 15, 20},
	{"20-25 min", 20, 25},
	{"25-30 min", 25, 30},
	{"30+ min", 30, 0},
}

// AnalyticsService 所有统计视图的派生计算。
// 每个方法都是对当前进度快照的纯折叠，不维护增量索引也不改任何状态；
// 单个用户的历史很小，每次全量扫描换取与重算路径一致的正确性。
type AnalyticsService struct {
	Repo    *repository.ProgressRepository
	Catalog *repository.CatalogRepository
}

func NewAnalyticsService(repo *repository.ProgressRepository, catalog *repository.CatalogRepository) *AnalyticsService {
	return &AnalyticsService{Repo: repo, Catalog: catalog}
}

// CategoryPerformance 每个分类的正确率与作答次数
func (s *AnalyticsService) CategoryPerformance() []model.CategoryPerformance {
	progress := s.Repo.Get()

	type bucket struct {
		total   int
		correct int
	}
	buckets := map[string]*bucket{}
	order := []string{}

	for _, q := range progress.QuestionAttempts {
		b, ok := buckets[q.CategoryID]
		if !ok {
			b = &bucket{}
			buckets[q.CategoryID] = b
			order = append(order, q.CategoryID)
		}
		b.total++
		if q.IsCorrect {
			b.correct++
		}
	}

	result := []model.CategoryPerformance{}
	for _, id := range order {
		b := buckets[id]
		result = append(result, model.CategoryPerformance{
			ID:       id,
			Name:     s.Catalog.CategoryName(id),
			Score:    roundPct(b.correct, b.total),
			Attempts: b.total,
		})
	}
	return result
}

// TimeMetrics 每个分类的平均每题耗时（秒）
func (s *AnalyticsService) TimeMetrics() []model.TimeMetric {
	progress := s.Repo.Get()

	type bucket struct {
		totalTime float64
		count     int
	}
	buckets := map[string]*bucket{}
	order := []string{}

	for _, q := range progress.QuestionAttempts {
		b, ok := buckets[q.CategoryID]
		if !ok {
			b = &bucket{}
			buckets[q.CategoryID] = b
			order = append(order, q.CategoryID)
		}
		b.totalTime += q.TimeSpent
		b.count++
	}

	result := []model.TimeMetric{}
	for _, id := range order {
		b := buckets[id]
		avg := 0
		if b.count > 0 {
			avg = int(math.Round(b.totalTime / float64(b.count)))
		}
		result = append(result, model.TimeMetric{
			ID:      id,
			Name:    s.Catalog.CategoryName(id),
			AvgTime: avg,
		})
	}
	return result
}

// WeeklyProgress 有效会话按周起始日分组，桶内取百分比得分的平均值
func (s *AnalyticsService) WeeklyProgress() []model.WeeklyProgress {
	progress := s.Repo.Get()

	attempts := s.validAttempts(progress)
	sort.Slice(attempts, func(i, j int) bool {
		return attemptTime(attempts[i]).Before(attemptTime(attempts[j]))
	})

	type bucket struct {
		scores float64
		count  int
	}
	buckets := map[string]*bucket{}
	order := []string{}

	for _, a := range attempts {
		week := weekStart(attemptTime(a)).Format("2006-01-02")
		b, ok := buckets[week]
		if !ok {
			b = &bucket{}
			buckets[week] = b
			order = append(order, week)
		}
		b.scores += percentScore(a)
		b.count++
	}

	result := []model.WeeklyProgress{}
	for _, week := range order {
		b := buckets[week]
		avg := 0
		if b.count > 0 {
			avg = int(math.Round(b.scores / float64(b.count)))
		}
		result = append(result, model.WeeklyProgress{Week: week, AvgScore: avg})
	}
	return result
}

// DailyFrequency 最近 days 天每天的练习次数，没有练习的日子补 0
func (s *AnalyticsService) DailyFrequency(days int) []model.DailyFrequency {
	progress := s.Repo.Get()

	countByDate := map[string]int{}
	for _, a := range progress.QuizAttempts {
		if len(a.Date) < 10 {
			continue
		}
		countByDate[a.Date[:10]]++
	}

	result := []model.DailyFrequency{}
	today := time.Now()
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		result = append(result, model.DailyFrequency{
			Date:  date,
			Count: countByDate[date],
		})
	}
	return result
}

// CategoryTrend 单个分类按时间升序的 (第几次尝试, 百分比得分) 序列。
// 不足 2 个点算数据不足，不是错误。
func (s *AnalyticsService) CategoryTrend(categoryID string) model.CategoryTrend {
	progress := s.Repo.Get()

	attempts := []model.QuizAttempt{}
	for _, a := range s.validAttempts(progress) {
		if a.CategoryID == categoryID {
			attempts = append(attempts, a)
		}
	}
	sort.Slice(attempts, func(i, j int) bool {
		return attemptTime(attempts[i]).Before(attemptTime(attempts[j]))
	})

	points := []model.TrendPoint{}
	for i, a := range attempts {
		points = append(points, model.TrendPoint{
			AttemptNumber: i + 1,
			Score:         int(math.Round(percentScore(a))),
		})
	}

	return model.CategoryTrend{
		CategoryID:       categoryID,
		CategoryName:     s.Catalog.CategoryName(categoryID),
		Points:           points,
		InsufficientData: len(points) < 2,
	}
}

// FirstVsOverall 每个分类的首次成绩与全部尝试平均成绩的对比，按名称排序
func (s *AnalyticsService) FirstVsOverall() []model.FirstVsOverall {
	progress := s.Repo.Get()

	byCategory := map[string][]model.QuizAttempt{}
	for _, a := range s.validAttempts(progress) {
		byCategory[a.CategoryID] = append(byCategory[a.CategoryID], a)
	}

	result := []model.FirstVsOverall{}
	for id, attempts := range byCategory {
		sort.Slice(attempts, func(i, j int) bool {
			return attemptTime(attempts[i]).Before(attemptTime(attempts[j]))
		})

		first := int(math.Round(percentScore(attempts[0])))

		total := 0.0
		for _, a := range attempts {
			total += math.Round(percentScore(a))
		}
		overall := int(math.Round(total / float64(len(attempts))))

		improvement := overall - first
		if len(attempts) == 1 {
			improvement = 0
		}

		result = append(result, model.FirstVsOverall{
			ID:           id,
			Name:         s.Catalog.CategoryName(id),
			FirstScore:   first,
			OverallScore: overall,
			Improvement:  improvement,
			Attempts:     len(attempts),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// MostChallengingQuestions 错误率最高的前 N 题。
// 没答错过的题不上榜；先按错误率降序，持平时按错误次数降序。
func (s *AnalyticsService) MostChallengingQuestions() []model.ChallengingQuestion {
	progress := s.Repo.Get()

	type bucket struct {
		total     int
		incorrect int
	}
	buckets := map[string]*bucket{}
	order := []string{}

	for _, q := range progress.QuestionAttempts {
		b, ok := buckets[q.QuestionID]
		if !ok {
			b = &bucket{}
			buckets[q.QuestionID] = b
			order = append(order, q.QuestionID)
		}
		b.total++
		if !q.IsCorrect {
			b.incorrect++
		}
	}

	result := []model.ChallengingQuestion{}
	for _, id := range order {
		b := buckets[id]
		if b.incorrect == 0 {
			continue
		}

		text := id
		categoryID := ""
		if q, ok := s.Catalog.QuestionByID(id); ok {
			text = q.Question
			categoryID = q.CategoryID
		}

		result = append(result, model.ChallengingQuestion{
			QuestionID:        id,
			Question:          text,
			CategoryID:        categoryID,
			CategoryName:      s.Catalog.CategoryName(categoryID),
			TotalAttempts:     b.total,
			IncorrectAttempts: b.incorrect,
			IncorrectRate:     float64(b.incorrect) / float64(b.total) * 100,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].IncorrectRate != result[j].IncorrectRate {
			return result[i].IncorrectRate > result[j].IncorrectRate
		}
		return result[i].IncorrectAttempts > result[j].IncorrectAttempts
	})

	if len(result) > MaxChallengingQuestions {
		result = result[:MaxChallengingQuestions]
	}
	return result
}

// ScoreDistribution 会话百分比得分的直方图，空桶不返回
func (s *AnalyticsService) ScoreDistribution() []model.ScoreBin {
	progress := s.Repo.Get()

	labels := []string{"0-9%", "10-19%", "20-29%", "30-39%", "40-49%", "50-59%", "60-69%", "70-79%", "80-89%", "90-99%", "100%"}
	counts := make([]int, len(labels))

	for _, a := range s.validAttempts(progress) {
		pct := int(math.Round(percentScore(a)))
		var idx int
		if pct >= 100 {
			idx = 10 // 满分单独成桶
		} else if pct < 0 {
			idx = 0
		} else {
			idx = pct / 10
		}
		counts[idx]++
	}

	result := []model.ScoreBin{}
	for i, label := range labels {
		if counts[i] > 0 {
			result = append(result, model.ScoreBin{Label: label, Count: counts[i]})
		}
	}
	return result
}

// TimeDistribution 会话总耗时落入固定时长区间的数量，空桶保留
func (s *AnalyticsService) TimeDistribution() []model.TimeBin {
	progress := s.Repo.Get()

	counts := make([]int, len(timeBins))
	for _, a := range s.validAttempts(progress) {
		minutes := a.TimeSpent / 60
		for i, bin := range timeBins {
			if minutes < bin.start {
				continue
			}
			if bin.end == 0 || minutes < bin.end {
				counts[i]++
				break
			}
		}
	}

	result := []model.TimeBin{}
	for i, bin := range timeBins {
		result = append(result, model.TimeBin{Label: bin.label, Count: counts[i]})
	}
	return result
}

// AccuracyVsTime 每道题 (耗时, 对错) 的原始散点，加上两组平均耗时
func (s *AnalyticsService) AccuracyVsTime() model.AccuracyVsTime {
	progress := s.Repo.Get()

	points := []model.AccuracyTimePoint{}
	var correctTime, incorrectTime float64
	var correctCount, incorrectCount int

	for _, q := range progress.QuestionAttempts {
		points = append(points, model.AccuracyTimePoint{
			TimeSpent:  q.TimeSpent,
			IsCorrect:  q.IsCorrect,
			CategoryID: q.CategoryID,
		})
		if q.IsCorrect {
			correctTime += q.TimeSpent
			correctCount++
		} else {
			incorrectTime += q.TimeSpent
			incorrectCount++
		}
	}

	avgCorrect := 0
	if correctCount > 0 {
		avgCorrect = int(math.Round(correctTime / float64(correctCount)))
	}
	avgIncorrect := 0
	if incorrectCount > 0 {
		avgIncorrect = int(math.Round(incorrectTime / float64(incorrectCount)))
	}

	return model.AccuracyVsTime{
		Points:           points,
		AvgTimeCorrect:   avgCorrect,
		AvgTimeIncorrect: avgIncorrect,
	}
}

// ScoreVsTime 每个有效会话 (总耗时, 百分比得分) 的散点
func (s *AnalyticsService) ScoreVsTime() []model.ScoreTimePoint {
	progress := s.Repo.Get()

	result := []model.ScoreTimePoint{}
	for _, a := range s.validAttempts(progress) {
		result = append(result, model.ScoreTimePoint{
			TimeSpent:  a.TimeSpent,
			Score:      int(math.Round(percentScore(a))),
			CategoryID: a.CategoryID,
			Date:       a.Date,
		})
	}
	return result
}

// DashboardMetrics 仪表盘概览：有效会话数、答题数、正确数、总体正确率、最近 5 次。
// 这里比图表多一层过滤：会话必须至少有一条子记录，空壳会话不进概览
func (s *AnalyticsService) DashboardMetrics() model.DashboardMetrics {
	progress := s.Repo.Get()

	answered := map[string]bool{}
	for _, q := range progress.QuestionAttempts {
		answered[q.QuizAttemptID] = true
	}

	valid := []model.QuizAttempt{}
	for _, a := range s.validAttempts(progress) {
		if answered[a.ID] {
			valid = append(valid, a)
		}
	}

	recent := make([]model.QuizAttempt, len(valid))
	copy(recent, valid)
	sort.Slice(recent, func(i, j int) bool {
		return attemptTime(recent[i]).After(attemptTime(recent[j]))
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}

	correct := 0
	for _, q := range progress.QuestionAttempts {
		if q.IsCorrect {
			correct++
		}
	}

	return model.DashboardMetrics{
		TotalAttempts:     len(valid),
		QuestionsAnswered: len(progress.QuestionAttempts),
		CorrectAnswers:    correct,
		OverallScore:      roundPct(correct, len(progress.QuestionAttempts)),
		RecentAttempts:    recent,
	}
}

// validAttempts 有效会话：totalQuestions > 0。
// 子记录被裁剪过的导入文档里，会话只要有作答计数就参与图表统计
func (s *AnalyticsService) validAttempts(progress *model.UserProgress) []model.QuizAttempt {
	result := []model.QuizAttempt{}
	for _, a := range progress.QuizAttempts {
		if a.TotalQuestions > 0 {
			result = append(result, a)
		}
	}
	return result
}

func percentScore(a model.QuizAttempt) float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.TotalQuestions) * 100
}

func roundPct(numerator, denominator int) int {
	if denominator == 0 {
		return 0
	}
	return int(math.Round(float64(numerator) / float64(denominator) * 100))
}

func attemptTime(a model.QuizAttempt) time.Time {
	t, err := time.Parse(time.RFC3339, a.Date)
	if err != nil {
		t, err = time.Parse("2006-01-02", a.Date)
		if err != nil {
			return time.Unix(0, 0)
		}
	}
	return t
}

// weekStart 所在周的周日
func weekStart(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}
