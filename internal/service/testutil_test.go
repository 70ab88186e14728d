package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"findease-api/internal/archive"
	"findease-api/internal/core/auth"
	"findease-api/internal/core/config"
	"findease-api/internal/domain"
	"findease-api/internal/repo"
	"findease-api/pkg/utils"
)

const testDomain = "poornima.edu.in"

// newTestDB 每个测试一个独立的内存库（命名共享缓存，池里多个连接看到同一份数据）
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Item{}, &domain.Claim{}))
	return db
}

func testAuthCfg() config.Auth {
	return config.Auth{
		AllowedDomain:  testDomain,
		MinPasswordLen: 6,
		AdminName:      "FindEase Admin",
		AdminEmail:     "admin@" + testDomain,
		AdminPassword:  "Admin@123",
	}
}

func newTestJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "findease", TTL: time.Hour}
}

func newAccountService(t *testing.T, db *gorm.DB) *AccountService {
	t.Helper()
	return NewAccountService(repo.NewUserRepo(db), newTestJWTer(), testAuthCfg(), zap.NewNop())
}

func newSweeper(t *testing.T, db *gorm.DB) *Sweeper {
	t.Helper()
	sink := archive.NewFileSink(filepath.Join(t.TempDir(), "resolved-archive.txt"))
	return NewSweeper(repo.NewItemRepo(db), sink, 24*time.Hour, zap.NewNop())
}

func newItemService(t *testing.T, db *gorm.DB) *ItemService {
	t.Helper()
	return NewItemService(repo.NewItemRepo(db), newSweeper(t, db), nil, zap.NewNop())
}

func newClaimService(t *testing.T, db *gorm.DB) *ClaimService {
	t.Helper()
	return NewClaimService(repo.NewClaimRepo(db), repo.NewItemRepo(db), nil, zap.NewNop())
}

// seedUser 直接落库，绕过注册校验
func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: utils.HashPassword("secret1"),
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// seedItem 直接落库一条可控状态的条目
func seedItem(t *testing.T, db *gorm.DB, mutate func(*domain.Item)) *domain.Item {
	t.Helper()
	it := &domain.Item{
		ID:          utils.NewID(),
		Name:        "Black wallet",
		Category:    "Accessories",
		Description: "Leather wallet",
		ReportedAs:  domain.ReportedAsLost,
		Image:       "data:image/png;base64,xxxx",
	}
	if mutate != nil {
		mutate(it)
	}
	require.NoError(t, db.Create(it).Error)
	return it
}
