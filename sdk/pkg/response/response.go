package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soybean-go/admin-core/sdk/pkg/logger"
)

// Response 统一响应包装。错误详情只进日志，不进响应体。
type Response struct {
	RequestId string      `json:"requestId,omitempty"`
	Code      int         `json:"code"`
	Msg       string      `json:"msg,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func requestId(c *gin.Context) string {
	if id, ok := c.Request.Context().Value(logger.TrafficKey).(string); ok {
		return id
	}
	return ""
}

// OK 通常成功数据处理
func OK(c *gin.Context, data interface{}, msg string) {
	if msg == "" {
		msg = "success"
	}
	c.AbortWithStatusJSON(http.StatusOK, Response{
		RequestId: requestId(c),
		Code:      http.StatusOK,
		Msg:       msg,
		Data:      data,
	})
}

// Error 通常错误数据处理。err 记录日志；msg 为空时使用 err 的文本。
func Error(c *gin.Context, code int, err error, msg string) {
	if err != nil {
		logger.GetRequestLogger(c).Sugar().Errorf("%s %s 请求失败: %v",
			c.Request.Method, c.Request.URL.Path, err)
		if msg == "" {
			msg = err.Error()
		}
	}
	c.AbortWithStatusJSON(code, Response{
		RequestId: requestId(c),
		Code:      code,
		Msg:       msg,
	})
}
