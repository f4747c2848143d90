package repository

import (
	"github.com/mkume/task-tracker/internal/database"
	"github.com/mkume/task-tracker/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID within the given scope. A task outside the
// caller's scope is indistinguishable from an absent one.
func (r *GormTaskRepository) FindByID(id, ownerID string) (*models.Task, error) {
	var task models.Task
	query := r.db.Where("id = ?", id)
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks matching the filter, in the requested order
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}

	query := r.db.Model(&models.Task{})
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Scopes(database.OrderBy(filter.Sort)).Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update persists changes to a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task permanently within the given scope
func (r *GormTaskRepository) Delete(id, ownerID string) error {
	query := r.db.Where("id = ?", id)
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	result := query.Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
