package controller

import (
	"exam_review_backend/internal/service"
	"exam_review_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 仪表盘概览
// @Description 有效会话数、答题数、正确数与最近练习
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/metrics [get]
func (c *AnalyticsController) GetMetrics(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.DashboardMetrics())
}

// @Summary 分类正确率
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/categories [get]
func (c *AnalyticsController) GetCategoryPerformance(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.CategoryPerformance())
}

// @Summary 分类平均每题耗时
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/time-metrics [get]
func (c *AnalyticsController) GetTimeMetrics(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.TimeMetrics())
}

// @Summary 周进度
// @Description 有效会话按周分组的平均得分
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/weekly [get]
func (c *AnalyticsController) GetWeeklyProgress(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.WeeklyProgress())
}

// @Summary 练习频率
// @Tags 分析
// @Produce json
// @Param days query int false "天数" default(30)
// @Success 200 {object} util.Response
// @Router /api/analytics/frequency [get]
func (c *AnalyticsController) GetDailyFrequency(ctx *gin.Context) {
	days, err := strconv.Atoi(ctx.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		days = 30
	}
	util.Success(ctx, c.AnalyticsService.DailyFrequency(days))
}

// @Summary 分类成绩趋势
// @Tags 分析
// @Produce json
// @Param categoryId query string true "分类 id"
// @Success 200 {object} util.Response
// @Router /api/analytics/trend [get]
func (c *AnalyticsController) GetCategoryTrend(ctx *gin.Context) {
	categoryID := ctx.Query("categoryId")
	if categoryID == "" {
		util.BadRequest(ctx, util.ErrCategoryRequired.Error())
		return
	}
	util.Success(ctx, c.AnalyticsService.CategoryTrend(categoryID))
}

// @Summary 首次成绩与总体平均对比
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/first-vs-overall [get]
func (c *AnalyticsController) GetFirstVsOverall(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.FirstVsOverall())
}

// @Summary 错误率最高的题目
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/challenging [get]
func (c *AnalyticsController) GetChallengingQuestions(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.MostChallengingQuestions())
}

// @Summary 得分分布直方图
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/score-distribution [get]
func (c *AnalyticsController) GetScoreDistribution(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.ScoreDistribution())
}

// @Summary 会话耗时分布
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/time-distribution [get]
func (c *AnalyticsController) GetTimeDistribution(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.TimeDistribution())
}

// @Summary 单题耗时与对错散点
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/accuracy-vs-time [get]
func (c *AnalyticsController) GetAccuracyVsTime(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.AccuracyVsTime())
}

// @Summary 会话得分与耗时散点
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/score-vs-time [get]
func (c *AnalyticsController) GetScoreVsTime(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.ScoreVsTime())
}
