package controller

import (
	"exam_review_backend/internal/service"
	"exam_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// @Summary 分类列表
// @Tags 题库
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/catalog/categories [get]
func (c *CatalogController) GetCategories(ctx *gin.Context) {
	util.Success(ctx, c.CatalogService.GetCategories())
}

// @Summary 按分类取题目
// @Tags 题库
// @Produce json
// @Param categoryId query string true "分类 id"
// @Success 200 {object} util.Response
// @Router /api/catalog/questions [get]
func (c *CatalogController) GetQuestions(ctx *gin.Context) {
	categoryID := ctx.Query("categoryId")
	if categoryID == "" {
		util.BadRequest(ctx, util.ErrCategoryRequired.Error())
		return
	}
	util.Success(ctx, c.CatalogService.GetQuestionsByCategory(categoryID))
}
