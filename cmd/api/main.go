package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"findease-api/internal/archive"
	"findease-api/internal/core/auth"
	"findease-api/internal/core/cache"
	"findease-api/internal/core/config"
	"findease-api/internal/core/database"
	"findease-api/internal/core/logger"
	"findease-api/internal/core/server"
	"findease-api/internal/domain"
	"findease-api/internal/repo"
	"findease-api/internal/service"
	"findease-api/internal/transport/http/handler"
	mdw "findease-api/internal/transport/http/middleware"
	"findease-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	var log *zap.Logger
	var cleanup func()
	if cfg.Log.File != "" {
		log, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File)
	} else {
		log, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	defer cleanup()

	// 数据库（缺失/占位 DSN 直接 Fatal，属于设计内的启动失败）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Item{}, &domain.Claim{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// Redis 缓存（可选）
	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 依赖
	users := repo.NewUserRepo(db)
	items := repo.NewItemRepo(db)
	claims := repo.NewClaimRepo(db)

	sink := archive.NewFileSink(cfg.Archive.File)
	sweeper := service.NewSweeper(items, sink,
		time.Duration(cfg.Archive.RetentionHours)*time.Hour, log)

	acctSvc := service.NewAccountService(users, jwter, cfg.Auth, log)
	itemSvc := service.NewItemService(items, sweeper, rc, log)
	claimSvc := service.NewClaimService(claims, items, rc, log)

	// 管理员种子：无 admin 用户时按配置创建一个
	if err := acctSvc.EnsureAdmin(); err != nil {
		log.Fatal("admin bootstrap failed", zap.Error(err))
	}

	authMW := mdw.AuthJWT(jwter, acctSvc.ResolveUser)
	adminMW := mdw.RequireAdmin()

	r := router.NewAPIEngine(log, db,
		handler.NewAuthHandler(acctSvc, authMW),
		handler.NewItemHandler(itemSvc, authMW, adminMW),
		handler.NewClaimHandler(claimSvc, authMW, adminMW),
	)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	log.Info("api starting", zap.String("addr", addr))

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	if strings.TrimSpace(cfg.DB.DSN) == "" {
		l.Fatal("db dsn is not set")
	}
	if strings.ContainsAny(cfg.DB.DSN, "<>") {
		l.Fatal("db dsn still contains placeholders, fill in configs/config.local.yaml")
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
