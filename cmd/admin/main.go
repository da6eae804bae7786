package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"usdrop-admin/internal/app"
	"usdrop-admin/internal/core/config"
	"usdrop-admin/internal/core/server"
	"usdrop-admin/internal/service"
	"usdrop-admin/internal/transport/http/handler"
	mdw "usdrop-admin/internal/transport/http/middleware"
	"usdrop-admin/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	log, cleanup := app.Logger(cfg)
	defer cleanup()
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	// 存储：后台跨用户操作，使用特权连接（失败直接 Fatal）
	stores, err := app.OpenStores(cfg, cfg.ServiceDSN(), log)
	if err != nil {
		log.Fatal("store", zap.Error(err))
	}
	defer stores.Close()

	// 缓存（未配置 Redis 时为 nil）
	c, err := app.Cache(cfg, log)
	if err != nil {
		log.Fatal("cache", zap.Error(err))
	}
	defer c.Close()

	// 首个 owner 账号
	if cfg.Bootstrap.OwnerEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := service.EnsureOwner(ctx, stores.Identities, stores.Profiles, cfg.Bootstrap.OwnerEmail, cfg.Bootstrap.OwnerPassword, log)
		cancel()
		if err != nil {
			log.Fatal("bootstrap owner", zap.Error(err))
		}
	}

	sessions := service.NewSessionService(stores.Identities, stores.Profiles, app.JWTer(cfg), c, log)
	admin := service.NewAdminService(stores.Identities, stores.Profiles, c, cfg.StatsTTL(), log)

	// 路由（后台端）
	r := router.NewAdminEngine(router.Deps{
		Log:     log,
		Origins: cfg.App.HTTP.CORSOrigins,
		Session: mdw.RequireSession(sessions, cfg.JWT.CookieName, log),
		Modules: router.NewRegistry(handler.NewAdminHandler(admin, log)),
	})

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	// 启动前打印可点击地址
	baseURL := server.BaseURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("admin", baseURL+"/admin"),
	)
	app.Run(srv, "admin api", log)
}
