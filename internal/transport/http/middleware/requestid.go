package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"usdrop-admin/internal/transport/http/ez"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(ez.KeyRequestID)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(ez.KeyRequestID, rid)
		c.Set(ez.KeyRequestID, rid)
		c.Next()
	}
}
