package rest

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/forms"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

const taskNotFound = "Task not found"

type taskController struct {
	responder
	tasks *services.TaskService
}

func newTaskController(tasks *services.TaskService, l logging.Logger) *taskController {
	return &taskController{responder: responder{logger: l}, tasks: tasks}
}

func (ctl *taskController) Create(c *gin.Context) {
	var in forms.TaskCreate
	if !ctl.bind(c, &in) {
		return
	}

	task, err := ctl.tasks.Create(c, identity(c), in)
	if err != nil {
		ctl.fail(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, task.View())
}

// List reads page and limit leniently: anything that is not a positive
// integer selects the default.
func (ctl *taskController) List(c *gin.Context) {
	q := forms.TaskQuery{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Status: c.Query("status"),
	}

	page, err := ctl.tasks.List(c, identity(c), q)
	if err != nil {
		ctl.fail(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ctl *taskController) Get(c *gin.Context) {
	task, err := ctl.tasks.Get(c, identity(c), c.Param("id"))
	if err != nil {
		ctl.fail(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, task.View())
}

func (ctl *taskController) Update(c *gin.Context) {
	var in forms.TaskUpdate
	if !ctl.bind(c, &in) {
		return
	}

	task, err := ctl.tasks.Update(c, identity(c), c.Param("id"), in)
	if err != nil {
		ctl.fail(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, task.View())
}

func (ctl *taskController) Delete(c *gin.Context) {
	if err := ctl.tasks.Delete(c, identity(c), c.Param("id")); err != nil {
		ctl.fail(c, err, taskNotFound)
		return
	}
	message(c, http.StatusOK, "Task removed")
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
