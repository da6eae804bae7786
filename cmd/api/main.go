package main

import (
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

	// 数据库（失败会直接 Fatal）
	stores, err := app.OpenStores(cfg, cfg.DB.DSN, log)
	if err != nil {
		log.Fatal("store", zap.Error(err))
	}
	defer stores.Close()

	c, err := app.Cache(cfg, log)
	if err != nil {
		log.Fatal("cache", zap.Error(err))
	}
	defer c.Close()

	sessions := service.NewSessionService(stores.Identities, stores.Profiles, app.JWTer(cfg), c, log)
	requireSession := mdw.RequireSession(sessions, cfg.JWT.CookieName, log)
	authH := handler.NewAuthHandler(sessions, handler.CookieConfig{
		Name:   cfg.JWT.CookieName,
		Secure: cfg.JWT.CookieSecure,
	}, requireSession, log)

	// 路由（用户端）
	r := router.NewAPIEngine(router.Deps{
		Log:     log,
		Origins: cfg.App.HTTP.CORSOrigins,
		Session: requireSession,
		Modules: router.NewRegistry(authH),
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	baseURL := server.BaseURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("auth", baseURL+"/auth"),
	)
	// 异步启动 + 优雅关闭
	app.Run(srv, "user api", log)
}
