package controller

import (
	"errors"
	"exam_review_backend/internal/service"
	"exam_review_backend/internal/util"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TransferController struct {
	TransferService *service.TransferService
}

func NewTransferController(transferService *service.TransferService) *TransferController {
	return &TransferController{TransferService: transferService}
}

// @Summary 导出进度
// @Description 下载消毒并重新校验后的进度 JSON 文件
// @Tags 数据迁移
// @Produce application/json
// @Success 200 {file} file
// @Router /api/progress/export [get]
func (c *TransferController) Export(ctx *gin.Context) {
	filename, payload, err := c.TransferService.Export()
	if err != nil {
		var ve *service.ExportValidationError
		if errors.As(err, &ve) {
			// 导出是用户主动操作，校验原因直接给用户看
			util.Error(ctx, http.StatusUnprocessableEntity, ve.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, "application/json", payload)
}

// @Summary 导入进度
// @Description 上传进度 JSON 文件，整体替换当前进度，不做合并
// @Tags 数据迁移
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/progress/import [post]
func (c *TransferController) Import(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	f, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	if !c.TransferService.Import(f) {
		// 具体原因只进日志，用户得到统一的格式提示
		util.BadRequest(ctx, util.ErrImportFailed.Error())
		return
	}

	util.Success(ctx, gin.H{"imported": true})
}
