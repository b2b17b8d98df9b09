package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

const serverErrorMessage = "Server error"

// responder writes service errors as API responses.
type responder struct {
	logger logging.Logger
}

// fail maps err onto a status and message. notFound is the message used
// for common.ErrorNotFound, which differs per resource.
func (r responder) fail(c *gin.Context, err error, notFound string) {
	var verr *common.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, common.ErrorAlreadyExists):
		message(c, http.StatusBadRequest, "User already exists")
	case errors.Is(err, common.ErrorInvalidCredentials):
		message(c, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, common.ErrMissingRefreshToken):
		message(c, http.StatusBadRequest, "No refresh token")
	case errors.Is(err, common.ErrorInvalidRole):
		message(c, http.StatusBadRequest, "Invalid role")
	case errors.Is(err, common.ErrInvalidRefreshToken):
		message(c, http.StatusUnauthorized, "Invalid refresh token")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		message(c, http.StatusUnauthorized, "Refresh token expired")
	case errors.Is(err, services.ErrDeleteNotAllowed):
		message(c, http.StatusForbidden, "Only admin can delete tasks")
	case errors.Is(err, common.ErrorForbidden):
		message(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, common.ErrorNotFound):
		message(c, http.StatusNotFound, notFound)
	default:
		r.serverError(c, err)
	}
}

func (r responder) serverError(c *gin.Context, err error) {
	r.logger.Error(c, "request failed", "path", c.FullPath(), "error", err)
	c.String(http.StatusInternalServerError, serverErrorMessage)
}

// bind decodes a JSON body into obj. An empty body leaves obj zeroed.
func (r responder) bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		message(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
