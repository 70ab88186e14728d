package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"findease-api/internal/core/database"
	resp "findease-api/internal/transport/http/response"
)

// DBReady 业务路由统一前置：存储不可达直接 503，不再往下走。
// /health 不挂它，保持可用于上报 dbReady=false。
func DBReady(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !database.Ping(db) {
			resp.Fail(c, http.StatusServiceUnavailable, "Database not connected.")
			return
		}
		c.Next()
	}
}
