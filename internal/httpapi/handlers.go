package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"taskflow/internal/service"
)

type handler struct {
	auth         *service.AuthService
	tasks        *service.TaskService
	summary      *service.SummaryService
	defaultLimit int
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to TaskFlow API"})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// login takes an OAuth2 password-grant form; username carries the email.
func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{AccessToken: res.AccessToken, TokenType: res.TokenType, User: res.User})
}

func (h *handler) createTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(c, err)
		return
	}
	task, err := h.tasks.CreateTask(c.Request.Context(), currentUser(c).ID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) listTasks(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		writeError(c, err)
		return
	}
	limit, err := queryInt(c, "limit", h.defaultLimit)
	if err != nil {
		writeError(c, err)
		return
	}
	tasks, err := h.tasks.ListTasks(c.Request.Context(), currentUser(c).ID, skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handler) getTask(c *gin.Context) {
	task, err := h.tasks.GetTask(c.Request.Context(), c.Param("task_id"), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) updateTask(c *gin.Context) {
	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(c, err)
		return
	}
	task, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("task_id"), currentUser(c).ID, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) deleteTask(c *gin.Context) {
	task, err := h.tasks.DeleteTask(c.Request.Context(), c.Param("task_id"), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) createSubtask(c *gin.Context) {
	var req subtaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	subtask, err := h.tasks.CreateSubtask(c.Request.Context(), c.Param("task_id"), currentUser(c).ID, service.SubtaskInput{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *handler) listSubtasks(c *gin.Context) {
	subtasks, err := h.tasks.ListSubtasks(c.Request.Context(), c.Param("task_id"), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}

func (h *handler) updateSubtask(c *gin.Context) {
	var req subtaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	subtask, err := h.tasks.UpdateSubtask(c.Request.Context(), c.Param("task_id"), c.Param("subtask_id"), currentUser(c).ID, service.SubtaskPatch{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *handler) deleteSubtask(c *gin.Context) {
	subtask, err := h.tasks.DeleteSubtask(c.Request.Context(), c.Param("task_id"), c.Param("subtask_id"), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *handler) aiSummary(c *gin.Context) {
	report, err := h.summary.Summarize(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return n, nil
}
