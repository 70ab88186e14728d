package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"findease-api/internal/core/database"
	mdw "findease-api/internal/transport/http/middleware"
	resp "findease-api/internal/transport/http/response"
)

// NewAPIEngine 组装引擎：中间件链、健康检查、/metrics、/api 业务路由
func NewAPIEngine(l *zap.Logger, db *gorm.DB, mods ...APIModule) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(5<<20), // 与 base64 图片上限一致
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "dbReady": database.Ping(db)})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", mdw.DBReady(db))
	for _, m := range mods {
		m.MountAPI(api)
	}
	MountAllAPI(api) // 自注册模块（如有）

	r.NoRoute(func(c *gin.Context) {
		resp.Fail(c, http.StatusNotFound, "Route not found.")
	})

	return r
}
