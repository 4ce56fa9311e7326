package app

import (
	"exam_review_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 题库，只读
		catalog := api.Group("/catalog")
		{
			catalog.GET("/categories", c.catalog.GetCategories)
			catalog.GET("/questions", c.catalog.GetQuestions)
		}

		// 进度写路径与数据迁移
		progress := api.Group("/progress")
		{
			progress.GET("", c.progress.GetProgress)
			progress.GET("/debug", c.progress.DebugStorage)
			progress.POST("/attempts", c.progress.StartAttempt)
			progress.POST("/attempts/:id/answers", c.progress.RecordAnswer)
			progress.POST("/attempts/:id/finalize", c.progress.FinalizeAttempt)
			progress.GET("/export", c.transfer.Export)
			progress.POST("/import", c.transfer.Import)
		}

		// 统计视图，全部只读
		analytics := api.Group("/analytics")
		{
			analytics.GET("/metrics", c.analytics.GetMetrics)
			analytics.GET("/categories", c.analytics.GetCategoryPerformance)
			analytics.GET("/time-metrics", c.analytics.GetTimeMetrics)
			analytics.GET("/weekly", c.analytics.GetWeeklyProgress)
			analytics.GET("/frequency", c.analytics.GetDailyFrequency)
			analytics.GET("/trend", c.analytics.GetCategoryTrend)
			analytics.GET("/first-vs-overall", c.analytics.GetFirstVsOverall)
			analytics.GET("/challenging", c.analytics.GetChallengingQuestions)
			analytics.GET("/score-distribution", c.analytics.GetScoreDistribution)
			analytics.GET("/time-distribution", c.analytics.GetTimeDistribution)
			analytics.GET("/accuracy-vs-time", c.analytics.GetAccuracyVsTime)
			analytics.GET("/score-vs-time", c.analytics.GetScoreVsTime)
		}
	}
}
