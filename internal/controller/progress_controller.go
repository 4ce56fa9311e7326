package controller

import (
	"encoding/json"
	"exam_review_backend/internal/service"
	"exam_review_backend/internal/util"
	"math"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type ProgressController struct {
	SessionService *service.SessionService
}

func NewProgressController(sessionService *service.SessionService) *ProgressController {
	return &ProgressController{SessionService: sessionService}
}

type startAttemptRequest struct {
	CategoryID        string `json:"categoryId" binding:"required"`
	ExistingAttemptID string `json:"existingAttemptId"`
}

// @Summary 开始答题会话
// @Description 创建新会话；携带已有会话 id 时幂等续用
// @Tags 进度
// @Accept json
// @Produce json
// @Success 201 {object} util.Response
// @Router /api/progress/attempts [post]
func (c *ProgressController) StartAttempt(ctx *gin.Context) {
	var req startAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrCategoryRequired.Error())
		return
	}

	attempt, err := c.SessionService.StartQuizAttempt(req.CategoryID, req.ExistingAttemptID)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, attempt)
}

// recordAnswerRequest 选项字段故意不定型：前端传来的垃圾值替换成超时哨兵后照样记录
type recordAnswerRequest struct {
	QuestionID     string  `json:"questionId" binding:"required"`
	CategoryID     string  `json:"categoryId" binding:"required"`
	SelectedOption any     `json:"selectedOption"`
	CorrectOption  any     `json:"correctOption"`
	TimeSpent      float64 `json:"timeSpent"`
}

// @Summary 记录一道题的作答
// @Description 会话不存在时静默忽略，selectedOption 为 -1 表示超时未作答
// @Tags 进度
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/progress/attempts/{id}/answers [post]
func (c *ProgressController) RecordAnswer(ctx *gin.Context) {
	attemptID := ctx.Param("id")

	var req recordAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.SessionService.RecordQuestionAttempt(
		attemptID,
		req.QuestionID,
		req.CategoryID,
		optionValue(req.SelectedOption),
		optionValue(req.CorrectOption),
		req.TimeSpent,
	)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, nil)
}

// @Summary 结束答题会话
// @Description 聚合值从全部作答记录重算；丢失的会话由孤儿记录重建，空会话被剔除
// @Tags 进度
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/progress/attempts/{id}/finalize [post]
func (c *ProgressController) FinalizeAttempt(ctx *gin.Context) {
	if err := c.SessionService.FinalizeQuizAttempt(ctx.Param("id")); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, nil)
}

// @Summary 获取完整进度
// @Tags 进度
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	util.Success(ctx, c.SessionService.Repo.Get())
}

// @Summary 持久化文档调试信息
// @Description 返回介质上原始文档的概要，用于排查损坏的持久化状态
// @Tags 进度
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/progress/debug [get]
func (c *ProgressController) DebugStorage(ctx *gin.Context) {
	raw, err := c.SessionService.Repo.RawDocument()
	if err != nil {
		util.Success(ctx, gin.H{"exists": false})
		return
	}

	summary := gin.H{"exists": true, "bytes": len(raw), "parseable": false}
	var doc struct {
		QuizAttempts     []json.RawMessage `json:"quizAttempts"`
		QuestionAttempts []json.RawMessage `json:"questionAttempts"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil {
		summary["parseable"] = true
		summary["quizAttempts"] = len(doc.QuizAttempts)
		summary["questionAttempts"] = len(doc.QuestionAttempts)
	}

	util.Success(ctx, summary)
}

// optionValue 任意 JSON 值转成选项数字，转不了的交给下游替换成哨兵
func optionValue(v any) float64 {
	if v == nil {
		return math.NaN()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN()
	}
	return f
}
