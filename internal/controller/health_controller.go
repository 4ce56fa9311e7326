package controller

import (
	"exam_review_backend/internal/repository"
	"exam_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Repo *repository.ProgressRepository
}

func NewHealthController(repo *repository.ProgressRepository) *HealthController {
	return &HealthController{Repo: repo}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 介质不可用时 Store 会降级，服务本身仍然可用
	storage := "up"
	if _, err := c.Repo.RawDocument(); err != nil {
		storage = "empty"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"storage": storage,
		},
	})
}
