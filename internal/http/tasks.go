package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/tasks"
)

// TasksController exposes background task status and manual runs to admins.
type TasksController struct {
	queue              TaskQueue
	auditor            Auditor
	errors             *apperr.Handler
	auditRetentionDays int
}

func NewTasksController(queue TaskQueue, auditRetentionDays int, auditor Auditor, errs *apperr.Handler) *TasksController {
	return &TasksController{queue: queue, auditRetentionDays: auditRetentionDays, auditor: auditor, errors: errs}
}

// TaskTypeInfo describes a task admins can trigger.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

var runnableTasks = []TaskTypeInfo{
	{Type: "cleanup_audit_events", Description: "Delete audit events past the retention period"},
	{Type: "expire_checkout_sessions", Description: "Expire abandoned checkout sessions"},
}

// ListTaskTypes handles GET /api/admin/tasks/types.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task_types": runnableTasks})
}

// GetTaskStatus handles GET /api/admin/tasks/:id.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.queue == nil {
		tc.errors.Respond(c, apperr.Unavailable("background tasks are disabled"), "task_status")
		return
	}
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		tc.errors.Respond(c, err, "task_status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		tc.errors.Respond(c, apperr.NotFound("task"), "task_status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": taskID, "status": tasks.StatusName(status)})
}

// RunTask handles POST /api/admin/tasks/:type/run.
func (tc *TasksController) RunTask(c *gin.Context) {
	if tc.queue == nil {
		tc.errors.Respond(c, apperr.Unavailable("background tasks are disabled"), "run_task")
		return
	}
	taskType := c.Param("type")

	var task backlite.Task
	switch taskType {
	case "cleanup_audit_events":
		task = tasks.CleanupAuditEventsTask{RetentionDays: tc.auditRetentionDays}
	case "expire_checkout_sessions":
		task = tasks.ExpireCheckoutSessionsTask{OlderThanHours: tasks.DefaultCheckoutExpiryHours}
	default:
		tc.errors.Respond(c, apperr.Validation("unknown task type", map[string]string{"type": taskType}), "run_task")
		return
	}

	id, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		tc.errors.Respond(c, err, "run_task")
		return
	}
	recordAction(tc.auditor, c, audit.Action{
		EventType: entities.AuditEventAdmin,
		Action:    "task_run",
		Metadata:  map[string]any{"type": taskType, "task_id": id},
	})
	respondAccepted(c, "task enqueued", gin.H{"task_id": id, "type": taskType})
}
