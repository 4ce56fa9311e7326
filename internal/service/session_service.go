package service

import (
	"exam_review_backend/internal/model"
	"exam_review_backend/internal/repository"
	"exam_review_backend/pkg/logger"
	"math"
	"time"

	"go.uber.org/zap"
)

// SessionService 答题会话的写路径。
// 每次作答走增量计数保证界面响应，会话结束时 FinalizeQuizAttempt
// 从全部子记录重算聚合值，增量路径的任何漂移都会在此被纠正。
// 所有改动都通过 Repo.Update 串行化，并发请求不会互相丢更新。
type SessionService struct {
	Repo *repository.ProgressRepository
}

func NewSessionService(repo *repository.ProgressRepository) *SessionService {
	return &SessionService{Repo: repo}
}

// StartQuizAttempt 开始一次会话。existingID 能解析到已有会话时原样返回（幂等续会话），
// 否则创建新会话并持久化。
func (s *SessionService) StartQuizAttempt(categoryID, existingID string) (model.QuizAttempt, error) {
	var attempt model.QuizAttempt

	err := s.Repo.Update(func(progress *model.UserProgress) (bool, error) {
		if existingID != "" {
			for _, a := range progress.QuizAttempts {
				if a.ID == existingID {
					logger.Log.Info("reusing existing quiz attempt", zap.String("attemptId", existingID))
					attempt = a
					return false, nil
				}
			}
		}

		attempt = model.NewQuizAttempt(categoryID)
		progress.QuizAttempts = append(progress.QuizAttempts, attempt)

		logger.Log.Info("created new quiz attempt",
			zap.String("attemptId", attempt.ID),
			zap.String("categoryId", categoryID))
		return true, nil
	})
	if err != nil {
		return model.QuizAttempt{}, err
	}
	return attempt, nil
}

// RecordQuestionAttempt 记录一道题。会话 id 不存在时记日志并放弃，
// 防止写入孤儿数据（与 finalize 对孤儿的容忍是两回事）。
func (s *SessionService) RecordQuestionAttempt(quizAttemptID, questionID, categoryID string, selectedOption, correctOption, timeSpent float64) error {
	selected := normalizeOption(selectedOption, "selectedOption", questionID)
	correct := normalizeOption(correctOption, "correctOption", questionID)
	if timeSpent < 0 || math.IsNaN(timeSpent) || math.IsInf(timeSpent, 0) {
		logger.Log.Warn("invalid timeSpent, substituting 0",
			zap.String("questionId", questionID),
			zap.Float64("timeSpent", timeSpent))
		timeSpent = 0
	}

	return s.Repo.Update(func(progress *model.UserProgress) (bool, error) {
		var attempt *model.QuizAttempt
		for i := range progress.QuizAttempts {
			if progress.QuizAttempts[i].ID == quizAttemptID {
				attempt = &progress.QuizAttempts[i]
				break
			}
		}
		if attempt == nil {
			logger.Log.Error("cannot record question for nonexistent attempt",
				zap.String("operation", "recordQuestionAttempt"),
				zap.String("attemptId", quizAttemptID))
			return false, nil
		}

		question := model.NewQuestionAttempt(quizAttemptID, questionID, categoryID, selected, correct, timeSpent)
		progress.QuestionAttempts = append(progress.QuestionAttempts, question)

		// 乐观增量更新，最终以 FinalizeQuizAttempt 的重算为准
		attempt.TotalQuestions++
		if question.IsCorrect {
			attempt.Score++
		}
		attempt.TimeSpent += timeSpent

		logger.Log.Info("recorded question attempt",
			zap.String("attemptId", quizAttemptID),
			zap.String("questionId", questionID),
			zap.Bool("isCorrect", question.IsCorrect),
			zap.Int("totalQuestions", attempt.TotalQuestions))
		return true, nil
	})
}

// FinalizeQuizAttempt 会话收尾，聚合值从子记录整体重算。
// 会话记录丢了但子记录还在 → 用孤儿重建会话；
// 会话存在但没有任何子记录 → 视为被放弃，直接剔除。
func (s *SessionService) FinalizeQuizAttempt(quizAttemptID string) error {
	if quizAttemptID == "" {
		logger.Log.Warn("cannot finalize quiz: no attempt id provided")
		return nil
	}

	return s.Repo.Update(func(progress *model.UserProgress) (bool, error) {
		questions := questionsForAttempt(quizAttemptID, progress.QuestionAttempts)

		attemptIndex := -1
		for i := range progress.QuizAttempts {
			if progress.QuizAttempts[i].ID == quizAttemptID {
				attemptIndex = i
				break
			}
		}

		if attemptIndex == -1 {
			if len(questions) == 0 {
				logger.Log.Warn("cannot finalize quiz: attempt not found",
					zap.String("attemptId", quizAttemptID))
				return false, nil
			}

			// 子记录证明会话存在过，按孤儿重建
			score, total, timeSpent := RecomputeAggregate(quizAttemptID, progress.QuestionAttempts)
			rebuilt := model.QuizAttempt{
				ID:             quizAttemptID,
				CategoryID:     questions[0].CategoryID,
				Date:           time.Now().Format(time.RFC3339),
				Score:          score,
				TotalQuestions: total,
				TimeSpent:      timeSpent,
			}
			progress.QuizAttempts = append(progress.QuizAttempts, rebuilt)

			logger.Log.Info("recreated missing quiz attempt from orphaned questions",
				zap.String("attemptId", quizAttemptID),
				zap.Int("questions", total))
			return true, nil
		}

		if len(questions) == 0 {
			progress.QuizAttempts = append(progress.QuizAttempts[:attemptIndex], progress.QuizAttempts[attemptIndex+1:]...)
			logger.Log.Info("removed empty quiz attempt", zap.String("attemptId", quizAttemptID))
			return true, nil
		}

		attempt := &progress.QuizAttempts[attemptIndex]
		attempt.Score, attempt.TotalQuestions, attempt.TimeSpent = RecomputeAggregate(quizAttemptID, progress.QuestionAttempts)

		logger.Log.Info("finalized quiz attempt",
			zap.String("attemptId", quizAttemptID),
			zap.Int("totalQuestions", attempt.TotalQuestions),
			zap.Int("score", attempt.Score))
		return true, nil
	})
}

// RecomputeAggregate 以子记录为唯一事实来源重算会话聚合值。
// 纯函数，与增量更新路径相互独立。
func RecomputeAggregate(quizAttemptID string, questionAttempts []model.QuestionAttempt) (score, totalQuestions int, timeSpent float64) {
	for _, q := range questionAttempts {
		if q.QuizAttemptID != quizAttemptID {
			continue
		}
		totalQuestions++
		if q.IsCorrect {
			score++
		}
		timeSpent += q.TimeSpent
	}
	return score, totalQuestions, timeSpent
}

func questionsForAttempt(quizAttemptID string, all []model.QuestionAttempt) []model.QuestionAttempt {
	result := []model.QuestionAttempt{}
	for _, q := range all {
		if q.QuizAttemptID == quizAttemptID {
			result = append(result, q)
		}
	}
	return result
}

// normalizeOption 选项值不合法时替换为超时哨兵但仍然记录这道题，
// 宁可多存一条必错的记录也不丢数据。
func normalizeOption(v float64, field, questionID string) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		logger.Log.Warn("invalid option value, substituting timeout sentinel",
			zap.String("field", field),
			zap.String("questionId", questionID))
		return model.TimeoutOption
	}
	return int(v)
}
