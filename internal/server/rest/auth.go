package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/forms"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

type sessionResponse struct {
	Token        string             `json:"token"`
	RefreshToken string             `json:"refreshToken,omitempty"`
	User         models.AccountView `json:"user"`
}

func newSessionResponse(s *services.Session) sessionResponse {
	return sessionResponse{Token: s.AccessToken, RefreshToken: s.RefreshToken, User: s.Account}
}

type authController struct {
	responder
	auth *services.AuthService
}

func newAuthController(auth *services.AuthService, l logging.Logger) *authController {
	return &authController{responder: responder{logger: l}, auth: auth}
}

func (ctl *authController) Signup(c *gin.Context) {
	var in forms.Signup
	if !ctl.bind(c, &in) {
		return
	}

	s, err := ctl.auth.Signup(c, in)
	if err != nil {
		ctl.fail(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

func (ctl *authController) Signin(c *gin.Context) {
	var in forms.Signin
	if !ctl.bind(c, &in) {
		return
	}

	s, err := ctl.auth.Signin(c, in)
	if err != nil {
		ctl.fail(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

func (ctl *authController) Refresh(c *gin.Context) {
	var in forms.Token
	if !ctl.bind(c, &in) {
		return
	}

	s, err := ctl.auth.Refresh(c, in.RefreshToken)
	if err != nil {
		ctl.fail(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

func (ctl *authController) Logout(c *gin.Context) {
	var in forms.Token
	if !ctl.bind(c, &in) {
		return
	}

	if err := ctl.auth.Logout(c, in.RefreshToken); err != nil {
		ctl.fail(c, err, "User not found")
		return
	}
	message(c, http.StatusOK, "Logged out")
}

// Verify answers in plain text since it is opened from a mail link.
func (ctl *authController) Verify(c *gin.Context) {
	target, err := ctl.auth.Verify(c, c.Query("token"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrVerificationRejected):
			c.String(http.StatusBadRequest, "Verification failed or token expired")
		case errors.Is(err, common.ErrInvalidToken):
			c.String(http.StatusBadRequest, "Invalid token")
		case errors.Is(err, common.ErrInvalidTokenType):
			c.String(http.StatusBadRequest, "Invalid token type")
		case errors.Is(err, common.ErrorNotFound):
			c.String(http.StatusNotFound, "User not found")
		default:
			ctl.serverError(c, err)
		}
		return
	}
	c.Redirect(http.StatusFound, target)
}
