package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthController struct {
	storage Pinger
}

func newHealthController(storage Pinger) *healthController {
	return &healthController{storage: storage}
}

// Health reports ok while storage answers pings.
func (ctl *healthController) Health(c *gin.Context) {
	if ctl.storage != nil {
		if err := ctl.storage.Ping(c); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
