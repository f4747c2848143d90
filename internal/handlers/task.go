package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/mkume/task-tracker/internal/errors"
	"github.com/mkume/task-tracker/internal/middleware"
	"github.com/mkume/task-tracker/internal/models"
	"github.com/mkume/task-tracker/internal/services"
	"github.com/mkume/task-tracker/internal/utils"
	"github.com/rs/zerolog/log"
)

// TaskHandler coordinates task-related HTTP handlers. The same handlers
// serve both pipelines: with the auth gate mounted the context carries an
// owner id and every operation is scoped to it, without the gate the scope
// is global.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ownerScope returns the caller's scope: the authenticated user id, or ""
// for the unauthenticated pipeline.
func ownerScope(c *gin.Context) string {
	userID, _ := middleware.GetUserID(c)
	return userID
}

// ListTasks returns tasks in the caller's scope with optional status
// filter and sort selection.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var status *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := models.TaskStatus(raw)
		if !models.ValidTaskStatus(s) {
			apierrors.BadRequest(c, "Unknown status value")
			return
		}
		status = &s
	}

	sort, err := utils.ParseSortBy(c.Query("sortBy"))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	tasks, err := h.taskService.ListTasks(services.ListTasksInput{
		OwnerID: ownerScope(c),
		Status:  status,
		Sort:    sort,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// CreateTask creates a new task. The server assigns id, creation time,
// and status; a client-supplied status is ignored.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		DueDate     *string `json:"dueDate"`
		// Accepted and ignored; a created task is always pending.
		Status string `json:"status"`
	}

	var req CreateTaskRequest
	if err := bindStrict(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid dueDate")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		OwnerID:     ownerScope(c),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask merges the supplied fields over an existing task in the
// caller's scope. Fields not supplied are left unchanged.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		DueDate     *string `json:"dueDate"`
	}

	var req UpdateTaskRequest
	if err := bindStrict(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}

	if req.Status != nil {
		s := models.TaskStatus(*req.Status)
		input.Status = &s
	}

	if req.DueDate != nil {
		if *req.DueDate == "" {
			input.ClearDueDate = true
		} else {
			dueDate, err := parseDueDate(req.DueDate)
			if err != nil {
				apierrors.BadRequest(c, "Invalid dueDate")
				return
			}
			input.DueDate = dueDate
		}
	}

	task, err := h.taskService.UpdateTask(c.Param("id"), ownerScope(c), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task permanently from the caller's scope.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Param("id"), ownerScope(c)); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// parseDueDate accepts RFC 3339 timestamps or bare dates. A nil or empty
// value means no deadline.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		log.Error().Err(err).Msg("Unhandled task error")
		apierrors.InternalError(c, "Internal server error")
	}
}
