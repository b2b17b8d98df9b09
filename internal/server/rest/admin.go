package rest

import (
	"net/http"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/forms"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

type adminController struct {
	responder
	users *services.UserService
}

func newAdminController(users *services.UserService, l logging.Logger) *adminController {
	return &adminController{responder: responder{logger: l}, users: users}
}

func (ctl *adminController) ListUsers(c *gin.Context) {
	users, err := ctl.users.List(c)
	if err != nil {
		ctl.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ctl *adminController) ChangeRole(c *gin.Context) {
	var in forms.RoleChange
	if !ctl.bind(c, &in) {
		return
	}

	user, err := ctl.users.ChangeRole(c, c.Param("id"), in.Role)
	if err != nil {
		ctl.fail(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
