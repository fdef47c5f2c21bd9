package controller

import (
	"fmt"
	"time"

	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminController struct {
	SeedService   *service.SeedService
	ExportService *service.ExportService
}

func NewAdminController(seedService *service.SeedService, exportService *service.ExportService) *AdminController {
	return &AdminController{SeedService: seedService, ExportService: exportService}
}

// swagger:model ReseedRequest
type ReseedRequest struct {
	Secret      string `json:"secret" binding:"required"`
	DropHistory bool   `json:"dropHistory"`
}

// Reseed godoc
// @Summary 重新导入题库
// @Description 需要管理员令牌以及配置的 reseed 密钥；dropHistory 为 true 时同时清空作答记录
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ReseedRequest true "密钥"
// @Success 200 {object} util.Response{data=service.SeedResult} "成功"
// @Failure 403 {object} util.Response "密钥错误"
// @Router /api/admin/reseed [post]
func (c *AdminController) Reseed(ctx *gin.Context) {
	var req ReseedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	res, err := c.SeedService.Reseed(ctx.Request.Context(), req.Secret, req.DropHistory)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// ExportAttempts godoc
// @Summary 导出作答记录
// @Tags 管理
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param   email query string false "仅导出该用户"
// @Success 200 {file} file "xlsx 文件"
// @Router /api/admin/attempts/export [get]
func (c *AdminController) ExportAttempts(ctx *gin.Context) {
	data, err := c.ExportService.ExportAttempts(ctx.Query("email"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	filename := fmt.Sprintf("attempts_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(200, xlsxContentType, data)
}
