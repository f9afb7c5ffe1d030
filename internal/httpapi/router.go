// Package httpapi exposes the task service over HTTP with gin.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskflow/internal/service"
)

// Deps are the collaborators the router needs. Metrics and Gatherer are
// optional.
type Deps struct {
	Auth         *service.AuthService
	Tasks        *service.TaskService
	Summary      *service.SummaryService
	Metrics      *Metrics
	Gatherer     prometheus.Gatherer
	DefaultLimit int
}

func NewRouter(d Deps) *gin.Engine {
	useJSONFieldNames()

	limit := d.DefaultLimit
	if limit <= 0 {
		limit = service.DefaultLimit
	}
	h := &handler{auth: d.Auth, tasks: d.Tasks, summary: d.Summary, defaultLimit: limit}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), cors())
	if d.Metrics != nil {
		router.Use(d.Metrics.middleware())
	}

	router.GET("/", h.root)
	router.GET("/health", h.health)
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
	}

	protected := router.Group("/", requireUser(d.Auth))

	tasks := protected.Group("/tasks")
	{
		tasks.POST("/", h.createTask)
		tasks.GET("/", h.listTasks)
		tasks.GET("/:task_id", h.getTask)
		tasks.PUT("/:task_id", h.updateTask)
		tasks.DELETE("/:task_id", h.deleteTask)

		tasks.POST("/:task_id/subtasks/", h.createSubtask)
		tasks.GET("/:task_id/subtasks/", h.listSubtasks)
		tasks.PUT("/:task_id/subtasks/:subtask_id", h.updateSubtask)
		tasks.DELETE("/:task_id/subtasks/:subtask_id", h.deleteSubtask)
	}

	protected.POST("/ai/summary", h.aiSummary)

	return router
}
