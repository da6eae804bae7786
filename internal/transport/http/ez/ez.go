// Package ez registers typed request/response actions on gin groups.
package ez

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usdrop-admin/internal/core/auth"
)

const (
	keyCaller    = "caller"
	KeyRequestID = "X-Request-ID"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ { return EZ{g: g, log: l} }

// Group returns an EZ on a subgroup, e.g. one guarded by the session middleware.
func (e EZ) Group(path string, h ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, h...), log: e.log}
}

// SetCaller is called by the session middleware once the token checks out.
func SetCaller(c *gin.Context, caller auth.Caller) { c.Set(keyCaller, caller) }

// CallerFrom returns the zero Caller when the request is anonymous.
func CallerFrom(c *gin.Context) auth.Caller {
	if v, ok := c.Get(keyCaller); ok {
		if caller, ok := v.(auth.Caller); ok {
			return caller
		}
	}
	return auth.Caller{}
}

func RequestIDFrom(c *gin.Context) string { return c.GetString(KeyRequestID) }
