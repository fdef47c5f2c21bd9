package controller

import (
	"net/http"
	"time"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// AttemptRequest 兼容旧客户端的 email / user 字段
// swagger:model AttemptRequest
type AttemptRequest struct {
	ClientID     string                  `json:"clientId"`
	UserEmail    string                  `json:"userEmail"`
	Email        string                  `json:"email"`
	User         string                  `json:"user"`
	QuizTitle    string                  `json:"quizTitle" binding:"required"`
	Score        int                     `json:"score"`
	Total        int                     `json:"total"`
	RawScore     int                     `json:"rawScore"`
	RawTotal     int                     `json:"rawTotal"`
	TimeSpent    int                     `json:"timeSpent"`
	TimeText     string                  `json:"timeText"`
	DurationText string                  `json:"durationText"`
	Questions    []model.AttemptQuestion `json:"questions"`
	Answers      []model.AttemptAnswer   `json:"answers"`
	CreatedAt    *time.Time              `json:"createdAt"`
}

func (r *AttemptRequest) email() string {
	for _, e := range []string{r.UserEmail, r.Email, r.User} {
		if e != "" {
			return e
		}
	}
	return ""
}

func (r *AttemptRequest) toModel() *model.Attempt {
	a := &model.Attempt{
		ClientID:     r.ClientID,
		QuizTitle:    r.QuizTitle,
		Score:        r.Score,
		Total:        r.Total,
		RawScore:     r.RawScore,
		RawTotal:     r.RawTotal,
		TimeSpent:    r.TimeSpent,
		TimeText:     r.TimeText,
		DurationText: r.DurationText,
		Questions:    r.Questions,
		Answers:      r.Answers,
	}
	if r.CreatedAt != nil {
		a.CreatedAt = *r.CreatedAt
	}
	return a
}

// SubmitAttempt godoc
// @Summary 提交作答记录
// @Description 分数由服务端根据快照重新计算；相同 clientId 重复提交返回已有记录
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AttemptRequest true "作答记录"
// @Success 201 {object} util.Response{data=model.Attempt} "创建成功"
// @Success 200 {object} util.Response{data=model.Attempt} "重复提交"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "clientId 属于其他用户"
// @Router /api/attempts [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	attempt, created, err := c.AttemptService.Submit(ctx.Request.Context(), claims, req.email(), req.toModel())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	if created {
		util.Created(ctx, attempt)
		return
	}
	ctx.JSON(http.StatusOK, util.Response{Code: http.StatusOK, Message: "duplicate", Data: attempt})
}

// ListAttempts godoc
// @Summary 用户作答历史
// @Description 普通用户只能查看自己的记录
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param   email path string true "用户邮箱"
// @Success 200 {object} util.Response{data=[]model.Attempt} "成功"
// @Failure 403 {object} util.Response "无权查看"
// @Router /api/attempts/{email} [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.AttemptService.ListByEmail(claims, ctx.Param("email"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
