package controller

import (
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubjectController struct {
	SubjectService *service.SubjectService
}

func NewSubjectController(subjectService *service.SubjectService) *SubjectController {
	return &SubjectController{SubjectService: subjectService}
}

// swagger:model SubjectRequest
type SubjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListSubjects godoc
// @Summary 科目列表
// @Tags 科目
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Subject} "成功"
// @Router /api/subjects [get]
func (c *SubjectController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.SubjectService.List(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// GetSubject godoc
// @Summary 科目详情
// @Tags 科目
// @Produce  json
// @Param   id path string true "科目ID"
// @Success 200 {object} util.Response{data=model.Subject} "成功"
// @Failure 404 {object} util.Response "科目不存在"
// @Router /api/subjects/{id} [get]
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	subject, err := c.SubjectService.Get(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// CreateSubject godoc
// @Summary 新建科目
// @Description 名称大小写不敏感唯一
// @Tags 科目
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SubjectRequest true "科目"
// @Success 201 {object} util.Response{data=model.Subject} "创建成功"
// @Failure 409 {object} util.Response "科目已存在"
// @Router /api/subjects [post]
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	var req SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	subject, err := c.SubjectService.Create(ctx.Request.Context(), req.Name)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// UpdateSubject godoc
// @Summary 重命名科目
// @Tags 科目
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "科目ID"
// @Param   body body SubjectRequest true "科目"
// @Success 200 {object} util.Response{data=model.Subject} "成功"
// @Failure 404 {object} util.Response "科目不存在"
// @Failure 409 {object} util.Response "科目已存在"
// @Router /api/subjects/{id} [put]
func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	var req SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	subject, err := c.SubjectService.Rename(ctx.Request.Context(), ctx.Param("id"), req.Name)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// DeleteSubject godoc
// @Summary 删除科目
// @Tags 科目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "科目ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "科目不存在"
// @Router /api/subjects/{id} [delete]
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	if err := c.SubjectService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
