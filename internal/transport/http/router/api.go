package router

import (
	"github.com/gin-gonic/gin"

	"usdrop-admin/internal/core/server"
)

// NewAPIEngine serves the user-facing API: /auth/*.
// Modules guard their own routes with Deps.Session where needed.
func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Origins)
	r.Use(common(d)...)

	d.Modules.MountAPI(&r.RouterGroup)
	return r
}
