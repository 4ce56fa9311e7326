package service

import (
	"encoding/json"
	"exam_review_backend/internal/model"
	"exam_review_backend/internal/repository"
	"exam_review_backend/pkg/logger"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExportValidationError 消毒之后仍然过不了校验，导出中止。
// 导出是用户主动发起的操作，这个错误会原样呈现给用户。
type ExportValidationError struct {
	Cause error
}

func (e *ExportValidationError) Error() string {
	return fmt.Sprintf("progress data failed validation after sanitization: %v", e.Cause)
}

func (e *ExportValidationError) Unwrap() error { return e.Cause }

// TransferService 进度的导出与导入。两个方向都把校验当硬门槛，
// 不完整合法的数据既不会落盘也不会出库。
type TransferService struct {
	Repo       *repository.ProgressRepository
	FilePrefix string
}

func NewTransferService(repo *repository.ProgressRepository, filePrefix string) *TransferService {
	return &TransferService{Repo: repo, FilePrefix: filePrefix}
}

// Export 读取当前进度，对每个字段做防御性重写（强转成期望类型，
// 畸形值替换为安全默认值），重新校验后序列化成带时间戳文件名的 JSON。
func (s *TransferService) Export() (filename string, payload []byte, err error) {
	progress := s.Repo.Get()
	sanitized := sanitizeProgress(progress)

	if err := model.Validate(sanitized); err != nil {
		logger.Log.Error("export aborted, sanitized progress still invalid", zap.Error(err))
		return "", nil, &ExportValidationError{Cause: err}
	}

	payload, err = json.MarshalIndent(sanitized, "", "  ")
	if err != nil {
		logger.Log.Error("failed to serialize progress for export", zap.Error(err))
		return "", nil, err
	}

	suffix := model.GenerateUUID()[:8]
	filename = fmt.Sprintf("%s-%s-%s.json", s.FilePrefix, time.Now().Format("2006-01-02"), suffix)

	logger.Log.Info("progress exported",
		zap.String("filename", filename),
		zap.Int("quizAttempts", len(sanitized.QuizAttempts)),
		zap.Int("questionAttempts", len(sanitized.QuestionAttempts)))
	return filename, payload, nil
}

// Import 整体替换当前进度，从不合并。任何失败分支都返回 false 并记录具体原因。
func (s *TransferService) Import(r io.Reader) bool {
	data, err := io.ReadAll(r)
	if err != nil {
		logger.Log.Error("import failed: could not read file", zap.Error(err))
		return false
	}

	// 解析前的快速检查
	content := strings.TrimSpace(string(data))
	if content == "" {
		logger.Log.Error("import failed: file is empty")
		return false
	}
	if !strings.HasPrefix(content, "{") {
		logger.Log.Error("import failed: content does not look like a JSON object")
		return false
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Log.Error("import failed: invalid JSON", zap.Error(err))
		return false
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		logger.Log.Error("import failed: top-level value is not an object")
		return false
	}

	if err := model.Validate(obj); err != nil {
		logger.Log.Error("import failed: validation error", zap.Error(err))
		return false
	}

	var progress model.UserProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		logger.Log.Error("import failed: could not decode progress", zap.Error(err))
		return false
	}
	if progress.QuizAttempts == nil {
		progress.QuizAttempts = []model.QuizAttempt{}
	}
	if progress.QuestionAttempts == nil {
		progress.QuestionAttempts = []model.QuestionAttempt{}
	}

	if err := s.Repo.Save(&progress); err != nil {
		logger.Log.Error("import failed: save rejected", zap.Error(err))
		return false
	}

	// 导入绕过了常规写路径，强制下一次读取回到介质
	s.Repo.ResetCache()

	logger.Log.Info("progress imported",
		zap.Int("quizAttempts", len(progress.QuizAttempts)),
		zap.Int("questionAttempts", len(progress.QuestionAttempts)))
	return true
}

// sanitizeProgress 返回逐字段重写过的副本，原聚合不动。
// 规则：数字不是有限值或为负 → 0，日期解析不了 → epoch，score 压回 [0, totalQuestions]。
func sanitizeProgress(p *model.UserProgress) *model.UserProgress {
	out := &model.UserProgress{
		QuizAttempts:     make([]model.QuizAttempt, 0, len(p.QuizAttempts)),
		QuestionAttempts: make([]model.QuestionAttempt, 0, len(p.QuestionAttempts)),
	}

	for _, a := range p.QuizAttempts {
		total := sanitizeCount(a.TotalQuestions)
		score := sanitizeCount(a.Score)
		if score > total {
			score = total
		}
		out.QuizAttempts = append(out.QuizAttempts, model.QuizAttempt{
			ID:             strings.TrimSpace(a.ID),
			CategoryID:     strings.TrimSpace(a.CategoryID),
			Date:           sanitizeDate(a.Date),
			Score:          score,
			TotalQuestions: total,
			TimeSpent:      sanitizeSeconds(a.TimeSpent),
		})
	}

	for _, q := range p.QuestionAttempts {
		out.QuestionAttempts = append(out.QuestionAttempts, model.QuestionAttempt{
			ID:             strings.TrimSpace(q.ID),
			QuizAttemptID:  strings.TrimSpace(q.QuizAttemptID),
			QuestionID:     strings.TrimSpace(q.QuestionID),
			CategoryID:     strings.TrimSpace(q.CategoryID),
			SelectedOption: q.SelectedOption,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      q.IsCorrect,
			TimeSpent:      sanitizeSeconds(q.TimeSpent),
		})
	}

	return out
}

func sanitizeCount(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func sanitizeSeconds(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func sanitizeDate(s string) string {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return s
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s
	}
	return time.Unix(0, 0).UTC().Format(time.RFC3339)
}
