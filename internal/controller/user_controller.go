package controller

import (
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 处理用户资料相关请求
type UserController struct {
	AuthService *service.AuthService
}

func NewUserController(authService *service.AuthService) *UserController {
	return &UserController{AuthService: authService}
}

// UpdateAvatarRequest email 为空时更新当前用户
// swagger:model UpdateAvatarRequest
type UpdateAvatarRequest struct {
	Email  string `json:"email" binding:"omitempty,email"`
	Avatar string `json:"avatar" binding:"required"`
}

// UpdateAvatar godoc
// @Summary 更新头像
// @Description emoji 直接保存；data URL 形式的图片上传到存储后保存其地址
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body UpdateAvatarRequest true "头像"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "头像格式错误"
// @Failure 403 {object} util.Response "无权修改他人头像"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/update-avatar [post]
func (c *UserController) UpdateAvatar(ctx *gin.Context) {
	var req UpdateAvatarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	avatar, err := c.AuthService.UpdateAvatar(ctx.Request.Context(), claims, req.Email, req.Avatar)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"avatar": avatar})
}
