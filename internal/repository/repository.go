package repository

import (
	"github.com/mkume/task-tracker/internal/models"
	"github.com/mkume/task-tracker/internal/utils"
)

// TaskRepository defines the interface for task data access. An empty
// ownerID means global scope (the auth gate is disabled); a non-empty
// ownerID restricts every operation to rows owned by that user.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID within the given scope
	FindByID(id, ownerID string) (*models.Task, error)

	// List retrieves tasks matching the filter
	List(filter TaskFilter) ([]models.Task, error)

	// Update persists changes to a task
	Update(task *models.Task) error

	// Delete removes a task permanently within the given scope
	Delete(id, ownerID string) error
}

// TaskFilter holds filtering and ordering options for listing tasks
type TaskFilter struct {
	OwnerID string
	Status  *models.TaskStatus
	Sort    utils.SortSpec
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Update persists changes to a user
	Update(user *models.User) error
}
