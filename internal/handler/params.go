package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"studyhub/pkg/apperr"
	"studyhub/pkg/jwt"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNameOnce sync.Once

// useJSONFieldNames 校验错误中的字段名使用json标签
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

// bindJSON 绑定请求体，失败时直接返回400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.FromError(c, bindError(err))
		return false
	}
	return true
}

// bindError 将绑定/校验错误转换为带字段的参数错误
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.InvalidArgument(fe.Field(), fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
	}
	return apperr.InvalidArgument("body", "invalid request body")
}

// idParam 解析路径中的ID参数
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.FromError(c, apperr.InvalidArgument(name, name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// currentUser 当前登录用户ID（AuthMiddleware 已保证存在）
func currentUser(c *gin.Context) uint {
	return jwt.GetUserID(c)
}

// parseDate 支持 RFC3339 与 YYYY-MM-DD
// dateOnly 表示输入只有日期部分
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err = time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

// optionalDate 解析可选日期，inclusiveEnd 为真时纯日期取当天结束
func optionalDate(field, s string, inclusiveEnd bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, dateOnly, err := parseDate(s)
	if err != nil {
		return nil, apperr.InvalidArgument(field, field+" must be RFC3339 or YYYY-MM-DD")
	}
	if inclusiveEnd && dateOnly {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}
