// Package app wires config into the stores, cache and servers shared by both binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"usdrop-admin/internal/core/auth"
	"usdrop-admin/internal/core/cache"
	"usdrop-admin/internal/core/config"
	"usdrop-admin/internal/core/database"
	"usdrop-admin/internal/core/logger"
	"usdrop-admin/internal/domain"
	"usdrop-admin/internal/repo"
	"usdrop-admin/internal/repo/memory"
)

// Logger builds the process logger and routes the stdlib logger into it.
func Logger(cfg *config.Config) (*zap.Logger, func()) {
	l, sync := logger.New(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Filename:   cfg.Log.File,
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 14,
			Compress:   true,
		},
	})
	undo := logger.RedirectStdLog(l, zapcore.InfoLevel)
	l = l.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
	return l, func() { undo(); sync() }
}

type Stores struct {
	Identities domain.IdentityStore
	Profiles   domain.ProfileStore
	Close      func() error
}

// OpenStores connects with dsn. The memory driver keeps data in this process only.
func OpenStores(cfg *config.Config, dsn string, l *zap.Logger) (*Stores, error) {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory store; data is lost on exit and not shared between binaries")
		m := memory.New()
		return &Stores{Identities: m.Identities, Profiles: m.Profiles, Close: func() error { return nil }}, nil
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                dsn,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &Stores{
		Identities: repo.NewIdentityRepo(db),
		Profiles:   repo.NewProfileRepo(db),
		Close:      sqlDB.Close,
	}, nil
}

// Cache returns nil when Redis is not configured. A configured but unreachable
// Redis is an error: sign-out revocation depends on it.
func Cache(cfg *config.Config, l *zap.Logger) (*cache.Cache, error) {
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if c == nil {
		l.Warn("redis not configured; stats are uncached and sign-out only clears the cookie")
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return c, nil
}

func JWTer(cfg *config.Config) *auth.JWTer {
	return &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.TokenTTL()}
}

// Run serves until SIGINT/SIGTERM, then shuts down within 10s.
func Run(srv *http.Server, name string, l *zap.Logger) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal(name+" start FAILED", zap.Error(err))
		}
	}()
	l.Info(name + " started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error(name+" shutdown", zap.Error(err))
		return
	}
	l.Info(name + " stopped gracefully")
}
