package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkume/task-tracker/internal/models"
	"github.com/mkume/task-tracker/internal/repository"
	"github.com/mkume/task-tracker/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidStatus       = errors.New("invalid status value")
)

// TaskService handles task business logic. Every operation takes an
// ownerID; an empty ownerID means the auth gate is disabled and the task
// collection is global.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	OwnerID string
	Status  *models.TaskStatus
	Sort    utils.SortSpec
}

// ListTasks returns tasks in the caller's scope, optionally filtered by
// status, in the requested order.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, error) {
	if input.Status != nil && !models.ValidTaskStatus(*input.Status) {
		return nil, ErrInvalidStatus
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		OwnerID: input.OwnerID,
		Status:  input.Status,
		Sort:    input.Sort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns a task by id within the caller's scope.
func (s *TaskService) GetTask(id, ownerID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	OwnerID     string
}

// CreateTask validates and persists a new task. Status is always pending
// at creation regardless of what the client supplied; id and creation time
// are assigned by the store.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrDescriptionRequired
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusPending,
		DueDate:     input.DueDate,
		OwnerID:     input.OwnerID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTaskInput represents input for updating a task. Nil fields are
// left unchanged; ClearDueDate removes the deadline.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// UpdateTask merges the supplied fields over an existing task. Owner and
// id are immutable.
func (s *TaskService) UpdateTask(id, ownerID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, ErrDescriptionRequired
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task permanently within the caller's scope.
func (s *TaskService) DeleteTask(id, ownerID string) error {
	if err := s.taskRepo.Delete(id, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
