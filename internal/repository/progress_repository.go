package repository

import (
	"encoding/json"
	"exam_review_backend/internal/model"
	"exam_review_backend/pkg/logger"
	"exam_review_backend/pkg/monitoring"
	"os"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ProgressRepository 进度文档的唯一出入口。
// 持久化介质是固定路径下的单个 JSON 文档，内存缓存避免重复反序列化。
// HTTP 层的多个 goroutine 会同时读写，所以 Get 返回副本，
// 读-改-写必须走 Update，整个过程持锁串行化。
// 介质不可用（fs 为 nil、目录不可写等）时静默降级：Get 返回空进度，Save 变成 no-op。
type ProgressRepository struct {
	fs   afero.Fs
	path string

	mu    sync.Mutex
	cache *model.UserProgress
}

func NewProgressRepository(fs afero.Fs, path string) *ProgressRepository {
	return &ProgressRepository{fs: fs, path: path}
}

// Get 返回当前进度的副本。缓存重置后的第一次调用从介质加载并校验，
// 校验失败时替换为空进度（记录原因，不向调用方抛错）。
// 返回副本而不是缓存指针：调用方随意读写都不会和并发请求互相踩踏。
func (r *ProgressRepository) Get() *model.UserProgress {
	r.mu.Lock()
	defer r.mu.Unlock()

	return cloneProgress(r.loadLocked())
}

// Update 串行化的读-改-写。fn 在锁内收到当前进度的副本，
// 返回 true 时校验并持久化，返回 false 或出错时丢弃改动。
// 并发的 Update 互相排队，不会丢更新。
func (r *ProgressRepository) Update(fn func(progress *model.UserProgress) (bool, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	working := cloneProgress(r.loadLocked())

	changed, err := fn(working)
	if err != nil || !changed {
		return err
	}

	return r.persistLocked(working)
}

// Save 整体替换当前进度。校验失败返回 *model.ValidationError，磁盘上的旧状态保持不变。
func (r *ProgressRepository) Save(progress *model.UserProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.persistLocked(cloneProgress(progress))
}

func (r *ProgressRepository) persistLocked(progress *model.UserProgress) error {
	if err := model.Validate(progress); err != nil {
		logger.Log.Error("refusing to save invalid progress",
			zap.String("operation", "save"),
			zap.Error(err))
		monitoring.ProgressSaveCounter.WithLabelValues("invalid").Inc()
		return err
	}

	r.cache = progress

	if !r.available() {
		logger.Log.Warn("storage unavailable, save skipped",
			zap.String("path", r.path))
		monitoring.ProgressSaveCounter.WithLabelValues("skipped").Inc()
		return nil
	}

	data, err := json.Marshal(progress)
	if err != nil {
		logger.Log.Error("failed to serialize progress", zap.Error(err))
		return nil
	}

	if err := afero.WriteFile(r.fs, r.path, data, 0644); err != nil {
		logger.Log.Error("failed to write progress document",
			zap.String("path", r.path),
			zap.Error(err))
		monitoring.ProgressSaveCounter.WithLabelValues("error").Inc()
		return nil
	}

	monitoring.ProgressSaveCounter.WithLabelValues("ok").Inc()
	logger.Log.Debug("progress saved",
		zap.Int("quizAttempts", len(progress.QuizAttempts)),
		zap.Int("questionAttempts", len(progress.QuestionAttempts)))
	return nil
}

func (r *ProgressRepository) loadLocked() *model.UserProgress {
	if r.cache == nil {
		r.cache = r.loadFromStorage()
	}
	return r.cache
}

func cloneProgress(p *model.UserProgress) *model.UserProgress {
	out := &model.UserProgress{
		QuizAttempts:     make([]model.QuizAttempt, len(p.QuizAttempts)),
		QuestionAttempts: make([]model.QuestionAttempt, len(p.QuestionAttempts)),
	}
	copy(out.QuizAttempts, p.QuizAttempts)
	copy(out.QuestionAttempts, p.QuestionAttempts)
	return out
}

// ResetCache 丢弃内存缓存，下一次 Get 强制重读介质。
// 介质可能被外部改写（导入流程、另一个进程），缓存没有订阅机制感知这种变化。
func (r *ProgressRepository) ResetCache() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = nil
	logger.Log.Debug("progress cache reset")
}

// RawDocument 返回介质上的原始字节，仅供调试接口使用
func (r *ProgressRepository) RawDocument() ([]byte, error) {
	if !r.available() {
		return nil, os.ErrNotExist
	}
	return afero.ReadFile(r.fs, r.path)
}

func (r *ProgressRepository) available() bool {
	return r.fs != nil
}

func (r *ProgressRepository) loadFromStorage() *model.UserProgress {
	if !r.available() {
		return model.NewInitialProgress()
	}

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Error("failed to read progress document",
				zap.String("path", r.path),
				zap.Error(err))
		}
		return model.NewInitialProgress()
	}

	// 先解码成无类型值走结构校验，介质上的内容不可信
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Log.Error("progress document is not valid JSON, starting empty",
			zap.String("path", r.path),
			zap.Error(err))
		return model.NewInitialProgress()
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		logger.Log.Error("progress document is not an object, starting empty",
			zap.String("path", r.path))
		return model.NewInitialProgress()
	}

	if err := model.Validate(obj); err != nil {
		logger.Log.Error("progress document failed validation, starting empty",
			zap.String("path", r.path),
			zap.Error(err))
		return model.NewInitialProgress()
	}

	var progress model.UserProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		logger.Log.Error("failed to decode progress document, starting empty",
			zap.String("path", r.path),
			zap.Error(err))
		return model.NewInitialProgress()
	}

	if progress.QuizAttempts == nil {
		progress.QuizAttempts = []model.QuizAttempt{}
	}
	if progress.QuestionAttempts == nil {
		progress.QuestionAttempts = []model.QuestionAttempt{}
	}

	return &progress
}
