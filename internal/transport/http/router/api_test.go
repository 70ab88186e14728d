package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"findease-api/internal/archive"
	"findease-api/internal/core/auth"
	"findease-api/internal/core/config"
	"findease-api/internal/domain"
	"findease-api/internal/repo"
	"findease-api/internal/service"
	"findease-api/internal/transport/http/handler"
	mdw "findease-api/internal/transport/http/middleware"
)

// newTestAPI 按 cmd/api 的装配方式起一个跑在内存 sqlite 上的完整引擎
func newTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Item{}, &domain.Claim{}))

	log := zap.NewNop()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "findease", TTL: time.Hour}
	authCfg := config.Auth{
		AllowedDomain:  "poornima.edu.in",
		MinPasswordLen: 6,
		AdminName:      "FindEase Admin",
		AdminEmail:     "admin@poornima.edu.in",
		AdminPassword:  "Admin@123",
	}

	users := repo.NewUserRepo(db)
	items := repo.NewItemRepo(db)
	claims := repo.NewClaimRepo(db)

	sink := archive.NewFileSink(filepath.Join(t.TempDir(), "resolved-archive.txt"))
	sweeper := service.NewSweeper(items, sink, 24*time.Hour, log)

	acctSvc := service.NewAccountService(users, jwter, authCfg, log)
	itemSvc := service.NewItemService(items, sweeper, nil, log)
	claimSvc := service.NewClaimService(claims, items, nil, log)
	require.NoError(t, acctSvc.EnsureAdmin())

	authMW := mdw.AuthJWT(jwter, acctSvc.ResolveUser)
	adminMW := mdw.RequireAdmin()

	return NewAPIEngine(log, db,
		handler.NewAuthHandler(acctSvc, authMW),
		handler.NewItemHandler(itemSvc, authMW, adminMW),
		handler.NewClaimHandler(claimSvc, authMW, adminMW),
	), db
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func signup(t *testing.T, r *gin.Engine, name, email, password string) string {
	t.Helper()
	w, out := do(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return out["token"].(string)
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w, out := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return out["token"].(string)
}

func TestSignupLoginMeScenario(t *testing.T) {
	r, _ := newTestAPI(t)

	w, out := do(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Alice", "email": "alice@poornima.edu.in", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, out["token"])

	tok := login(t, r, "alice@poornima.edu.in", "secret1")

	w, out = do(t, r, http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := out["user"].(map[string]any)
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@poornima.edu.in", user["email"])
	assert.Equal(t, "user", user["role"])
}

func TestAuthFailures(t *testing.T) {
	r, _ := newTestAPI(t)

	// 注册：外域 400
	w, out := do(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Eve", "email": "eve@gmail.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, out["message"], "poornima.edu.in")

	// 弱密码 400
	w, _ = do(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Eve", "email": "eve@poornima.edu.in", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 重复注册 409
	signup(t, r, "Alice", "alice@poornima.edu.in", "secret1")
	w, _ = do(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Alice2", "email": "alice@poornima.edu.in", "password": "secret2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 登录：外域 403，口令错 401
	w, _ = do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "eve@gmail.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@poornima.edu.in", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 无 token / 坏 token 401
	w, _ = do(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApproveRequiresAdmin(t *testing.T) {
	r, _ := newTestAPI(t)
	userTok := signup(t, r, "Alice", "alice@poornima.edu.in", "secret1")
	adminTok := login(t, r, "admin@poornima.edu.in", "Admin@123")

	w, out := do(t, r, http.MethodPost, "/api/lost/add", userTok, gin.H{
		"name": "wallet", "category": "Accessories", "description": "leather",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	itemID := out["item"].(map[string]any)["_id"].(string)

	// 审批前公开列表为空
	w, out = do(t, r, http.MethodGet, "/api/lost/approved", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["items"])

	// 普通用户 403
	w, _ = do(t, r, http.MethodPatch, "/api/lost/"+itemID+"/approve", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 管理员 200，条目翻成 approved
	w, out = do(t, r, http.MethodPatch, "/api/lost/"+itemID+"/approve", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["item"].(map[string]any)["approved"])

	// 未知 id 404
	w, _ = do(t, r, http.MethodPatch, "/api/lost/unknown/approve", adminTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, out = do(t, r, http.MethodGet, "/api/lost/approved", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["items"], 1)

	// pending 列表是管理端视图
	w, _ = do(t, r, http.MethodGet, "/api/lost/pending", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, out = do(t, r, http.MethodGet, "/api/lost/pending", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["items"])
}

func TestClaimWorkflow(t *testing.T) {
	r, _ := newTestAPI(t)
	aliceTok := signup(t, r, "Alice", "alice@poornima.edu.in", "secret1")
	bobTok := signup(t, r, "Bob", "bob@poornima.edu.in", "secret1")
	adminTok := login(t, r, "admin@poornima.edu.in", "Admin@123")

	w, out := do(t, r, http.MethodPost, "/api/lost/add", aliceTok, gin.H{
		"name": "wallet", "category": "Accessories", "description": "leather",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	itemID := out["item"].(map[string]any)["_id"].(string)

	// 未审批条目不可认领
	w, _ = do(t, r, http.MethodPost, "/api/claims", bobTok, gin.H{
		"itemId": itemID, "message": "that is mine",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPatch, "/api/lost/"+itemID+"/approve", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, out = do(t, r, http.MethodPost, "/api/claims", bobTok, gin.H{
		"itemId": itemID, "message": "that is mine", "contactInfo": "room 12",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	claim := out["claim"].(map[string]any)
	claimID := claim["_id"].(string)
	assert.Equal(t, "pending", claim["status"])

	// 管理端列表带失主与认领人
	w, _ = do(t, r, http.MethodGet, "/api/claims", bobTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, out = do(t, r, http.MethodGet, "/api/claims", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := out["claims"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "Alice", row["owner"].(map[string]any)["name"])
	assert.Equal(t, "Bob", row["claimedBy"].(map[string]any)["name"])

	// 状态流转：非法值 400，合法值 200
	w, _ = do(t, r, http.MethodPatch, "/api/claims/"+claimID, adminTok, gin.H{"status": "resolved"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, out = do(t, r, http.MethodPatch, "/api/claims/"+claimID, adminTok, gin.H{"status": "returned"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "returned", out["claim"].(map[string]any)["status"])

	w, _ = do(t, r, http.MethodPatch, "/api/claims/unknown", adminTok, gin.H{"status": "closed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndFallback(t *testing.T) {
	r, _ := newTestAPI(t)

	w, out := do(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, true, out["dbReady"])

	w, out = do(t, r, http.MethodGet, "/api/no/such/route", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found.", out["message"])
}

func TestListAllIncludesUnapproved(t *testing.T) {
	r, _ := newTestAPI(t)
	tok := signup(t, r, "Alice", "alice@poornima.edu.in", "secret1")

	w, _ := do(t, r, http.MethodPost, "/api/lost/add", tok, gin.H{
		"name": "wallet", "category": "Accessories", "description": "leather",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// 未过滤的全量列表：未审批条目也在，且无需登录
	w, out := do(t, r, http.MethodGet, "/api/lost/all", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := out["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, false, items[0].(map[string]any)["approved"])

	w, out = do(t, r, http.MethodGet, "/api/lost/approved", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["items"])
}

func TestStoreDownReturns503(t *testing.T) {
	r, db := newTestAPI(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// 存储不可达：业务路由一律 503，/health 仍 200 且 dbReady=false
	w, out := do(t, r, http.MethodGet, "/api/lost/approved", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Database not connected.", out["message"])

	w, _ = do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "admin@poornima.edu.in", "password": "Admin@123",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, out = do(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, false, out["dbReady"])
}
