package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "findease-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；base64 图片的上限也由它兜底
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			resp.Fail(c, http.StatusRequestEntityTooLarge, "")
		}
	}
}
