package controller

import (
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// QuizQuestionsResponse 测验及其选题结果
type QuizQuestionsResponse struct {
	Quiz      *model.Quiz      `json:"quiz"`
	Questions []model.Question `json:"questions"`
}

// ListQuizzes godoc
// @Summary 测验列表
// @Tags 测验
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Quiz} "成功"
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.List(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuizQuestions godoc
// @Summary 测验选题
// @Description 先取指定给该测验的题目，不足时从同科目未指定的题目补齐
// @Tags 测验
// @Produce  json
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=QuizQuestionsResponse} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/questions [get]
func (c *QuizController) GetQuizQuestions(ctx *gin.Context) {
	quiz, questions, err := c.QuizService.QuestionsFor(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, QuizQuestionsResponse{Quiz: quiz, Questions: questions})
}

// CreateQuiz godoc
// @Summary 新建测验
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateQuizInput true "测验"
// @Success 201 {object} util.Response{data=model.Quiz} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/quizzes/add [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.CreateQuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	quiz, err := c.QuizService.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Description 同时删除指定给该测验的全部题目
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	removed, err := c.QuizService.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true, "questionsRemoved": removed})
}
