package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usdrop-admin/internal/core/server"
	mdw "usdrop-admin/internal/transport/http/middleware"
)

// Deps is what both engines need besides their modules.
type Deps struct {
	Log     *zap.Logger
	Origins []string
	// Session is middleware.RequireSession bound to the session service.
	Session gin.HandlerFunc
	Modules *Registry
}

func common(d Deps) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		mdw.RequestID(),
		// 指标与访问日志在最外层，panic/429/504 也会被记录
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		mdw.Recovery(d.Log),
		// 限流 / 并发 / 请求体 / 超时
		mdw.RateLimit(200, 400),
		mdw.RateLimitPerIP(20, 40),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1 << 20),
		mdw.Timeout(10 * time.Second),
	}
}

// NewAdminEngine serves /admin/*; every route behind it requires a session,
// and each action re-checks the admin/owner role.
func NewAdminEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Origins)
	r.Use(common(d)...)

	admin := r.Group("/admin", d.Session)
	d.Modules.MountAdmin(admin)
	return r
}
