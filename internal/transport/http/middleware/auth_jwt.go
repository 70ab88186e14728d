package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"findease-api/internal/core/auth"
	"findease-api/internal/domain"
	resp "findease-api/internal/transport/http/response"
)

const (
	KeyUser   = "user"
	KeyUserID = "userId"
	KeyRole   = "role"
)

// UserResolver token 里的 uid → 用户行；nil 表示用户已不存在
type UserResolver func(uid string) (*domain.User, error)

// AuthJWT 解析 Bearer token 并把用户行放进上下文。
// 用户已被删除的 token 同样 401。
func AuthJWT(j *auth.JWTer, resolve UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Fail(c, http.StatusUnauthorized, "Authentication required.")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Fail(c, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}
		u, err := resolve(claims.UID)
		if err != nil || u == nil {
			resp.Fail(c, http.StatusUnauthorized, "User not found.")
			return
		}
		c.Set(KeyUser, u)
		c.Set(KeyUserID, u.ID)
		c.Set(KeyRole, u.Role)
		c.Next()
	}
}

// RequireAdmin 必须挂在 AuthJWT 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyRole) != domain.RoleAdmin {
			resp.Fail(c, http.StatusForbidden, "Admin access required.")
			return
		}
		c.Next()
	}
}

// CurrentUser 取 AuthJWT 放进来的用户行
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(KeyUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
