package service

import (
	"exam_review_backend/internal/model"
	"exam_review_backend/internal/repository"
)

// CatalogService 只读题库查询
type CatalogService struct {
	Catalog *repository.CatalogRepository
}

func NewCatalogService(catalog *repository.CatalogRepository) *CatalogService {
	return &CatalogService{Catalog: catalog}
}

func (s *CatalogService) GetCategories() []model.QuizCategory {
	return s.Catalog.Categories()
}

func (s *CatalogService) GetQuestionsByCategory(categoryID string) []model.QuizQuestion {
	return s.Catalog.QuestionsByCategory(categoryID)
}
