package repository

import (
	"encoding/json"
	"exam_review_backend/internal/model"
	"exam_review_backend/pkg/logger"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// CatalogRepository 只读题库：分类与题目，按 id 查表，从不修改。
// 启动时从 JSON 文件整体加载进内存。
type CatalogRepository struct {
	categories []model.QuizCategory
	questions  []model.QuizQuestion

	categoryByID map[string]model.QuizCategory
	questionByID map[string]model.QuizQuestion
}

func NewCatalogRepository(fs afero.Fs, dir string) *CatalogRepository {
	r := &CatalogRepository{
		categories:   []model.QuizCategory{},
		questions:    []model.QuizQuestion{},
		categoryByID: map[string]model.QuizCategory{},
		questionByID: map[string]model.QuizQuestion{},
	}

	if fs == nil {
		logger.Log.Warn("catalog storage unavailable, catalogs are empty")
		return r
	}

	loadJSON(fs, filepath.Join(dir, "categories.json"), &r.categories)
	loadJSON(fs, filepath.Join(dir, "questions.json"), &r.questions)

	for _, c := range r.categories {
		r.categoryByID[c.ID] = c
	}
	for _, q := range r.questions {
		r.questionByID[q.ID] = q
	}

	logger.Log.Info("catalogs loaded",
		zap.Int("categories", len(r.categories)),
		zap.Int("questions", len(r.questions)))
	return r
}

func loadJSON[T any](fs afero.Fs, path string, out *[]T) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		logger.Log.Warn("catalog file missing",
			zap.String("path", path),
			zap.Error(err))
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Log.Error("catalog file is not valid JSON",
			zap.String("path", path),
			zap.Error(err))
	}
}

func (r *CatalogRepository) Categories() []model.QuizCategory {
	return r.categories
}

func (r *CatalogRepository) QuestionsByCategory(categoryID string) []model.QuizQuestion {
	result := []model.QuizQuestion{}
	for _, q := range r.questions {
		if q.CategoryID == categoryID {
			result = append(result, q)
		}
	}
	return result
}

func (r *CatalogRepository) QuestionByID(id string) (model.QuizQuestion, bool) {
	q, ok := r.questionByID[id]
	return q, ok
}

// CategoryName 未知分类容忍并原样返回 id
func (r *CatalogRepository) CategoryName(categoryID string) string {
	if c, ok := r.categoryByID[categoryID]; ok {
		return c.Name
	}
	return categoryID
}
