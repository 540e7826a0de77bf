package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"licensedesk.com/licensedesk/core"
	"licensedesk.com/licensedesk/web/common"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Health reports 503 when the database does not answer a ping.
func Health(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := dm.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, common.NewErrorResponse("database unavailable"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
