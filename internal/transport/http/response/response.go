package response

import "github.com/gin-gonic/gin"

// 错误响应统一为 {"message": "..."}，状态码走真实 HTTP 语义
type ErrBody struct {
	Message string `json:"message"`
}

func Fail(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = DefaultMessage(status)
	}
	c.AbortWithStatusJSON(status, ErrBody{Message: msg})
}
