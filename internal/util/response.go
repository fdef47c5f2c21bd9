package util

import (
	"errors"
	"net/http"

	"quiz_app_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
	InternalServerError(c)
}

// BindError 请求体绑定失败时返回字段级错误详情
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := ToValidationErrors(verrs)
		c.JSON(http.StatusBadRequest, Response{
			Code:    http.StatusBadRequest,
			Message: details.Error(),
			Data:    details,
		})
		return
	}
	BadRequest(c, err.Error())
}

// HandleServiceError 将服务层的哨兵错误映射为 HTTP 状态码
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case IsNotFound(err):
		Error(c, http.StatusNotFound, err.Error())
	case IsConflict(err):
		Conflict(c, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrReseedForbidden):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidAttempt), errors.Is(err, ErrInvalidAvatar):
		BadRequest(c, err.Error())
	default:
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, Response{
				Code:    http.StatusBadRequest,
				Message: verrs.Error(),
				Data:    verrs,
			})
			return
		}
		LogInternalError(c, err)
	}
}
