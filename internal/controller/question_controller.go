package controller

import (
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// ListQuestions godoc
// @Summary 题目列表
// @Tags 题目
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Question} "成功"
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	questions, err := c.QuestionService.List(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// ListBySubject godoc
// @Summary 按科目获取题目
// @Description 科目名精确匹配
// @Tags 题目
// @Produce  json
// @Param   subject path string true "科目名"
// @Success 200 {object} util.Response{data=[]model.Question} "成功"
// @Router /api/questions/{subject} [get]
func (c *QuestionController) ListBySubject(ctx *gin.Context) {
	questions, err := c.QuestionService.BySubject(ctx.Request.Context(), ctx.Param("subject"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// CreateQuestion godoc
// @Summary 新建题目
// @Tags 题目
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateQuestionInput true "题目"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/questions/add [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req service.CreateQuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	question, err := c.QuestionService.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	if err := c.QuestionService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
