package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/origin"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rlog := l.With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"request_id", requestid.Get(c),
		)

		start := time.Now()
		rlog.Debug(c, "request started")
		c.Next()
		rlog.Info(c, "request completed", "status", c.Writer.Status(), "duration", time.Since(start))
	}
}

// originGate rejects cross-origin requests from origins outside the
// allow-list before any handler runs.
func originGate(g *origin.Gate, l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.Check(c, c.GetHeader("Origin")); err != nil {
			l.Warn(c, "origin rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": err.Error()})
			return
		}
		c.Next()
	}
}

// accessGate resolves the bearer token into the caller's current identity.
func accessGate(auth *services.AuthService, l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, err := auth.Authenticate(c, c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			switch {
			case errors.Is(err, common.ErrMissingAccessToken):
				abortMessage(c, http.StatusUnauthorized, "No token, authorization denied")
			case errors.Is(err, common.ErrorNotFound):
				abortMessage(c, http.StatusUnauthorized, "User not found")
			case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
				abortMessage(c, http.StatusUnauthorized, "Token is not valid")
			default:
				l.Error(c, "authentication failed", "error", err)
				c.Abort()
				c.String(http.StatusInternalServerError, serverErrorMessage)
			}
			return
		}

		c.Set(identityKey, who)
		c.Next()
	}
}

// adminGate must run after accessGate.
func adminGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identity(c).IsAdmin() {
			abortMessage(c, http.StatusForbidden, "Admin only")
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	who, _ := v.(*models.Identity)
	return who
}

func abortMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
