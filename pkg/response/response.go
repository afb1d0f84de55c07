package response

import (
	"errors"
	"net/http"

	"studyhub/internal/model"
	"studyhub/pkg/apperr"
	"studyhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 业务错误码（envelope 中的 code 字段）
const (
	CodeOK              = 0
	CodeInvalidArgument = 400
	CodeUnauthorized    = 401
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeInternal        = 500
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他表示错误
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Field   string      `json:"field,omitempty"` // 参数校验失败的字段
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeInternal, message)
}

// FromError 将 service 返回的错误映射为HTTP响应
// 唯一性冲突按照客户端约定返回 400，envelope code 为 409
// 内部错误只记录日志，不向客户端暴露细节
func FromError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(err)
	}

	switch appErr.Kind {
	case apperr.KindInvalidArgument:
		c.JSON(http.StatusBadRequest, Response{Code: CodeInvalidArgument, Message: appErr.Message, Field: appErr.Field})
	case apperr.KindConflict:
		c.JSON(http.StatusBadRequest, Response{Code: CodeConflict, Message: appErr.Message})
	case apperr.KindNotFound:
		NotFound(c, appErr.Message)
	case apperr.KindUnauthorized:
		Unauthorized(c, appErr.Message)
	default:
		logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, Response{Code: CodeInternal, Message: "服务器内部错误"})
	}
}

// UserInfo 用户信息（隐藏敏感字段）
type UserInfo struct {
	ID                uint   `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	DisplayName       string `json:"displayName"`
	ProfilePictureRef string `json:"profilePictureRef"`
	Bio               string `json:"bio"`
	CreatedAt         string `json:"createdAt"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		DisplayName:       user.DisplayName,
		ProfilePictureRef: user.ProfilePictureRef,
		Bio:               user.Bio,
		CreatedAt:         user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}
