package database

import (
	"gorm.io/gorm"

	"github.com/mkume/task-tracker/internal/utils"
)

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"title":     "title",
	"status":    "status",
}

// OrderBy applies a validated sort selection to a GORM query. Rows without
// a due date sort after dated rows when ordering by due date.
func OrderBy(spec utils.SortSpec) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := sortColumns[spec.Field]
		if !ok {
			column = "created_at"
		}

		direction := "ASC"
		if spec.Descending {
			direction = "DESC"
		}

		if column == "due_date" {
			db = db.Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END")
		}

		return db.Order(column + " " + direction)
	}
}
