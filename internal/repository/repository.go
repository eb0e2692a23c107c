package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/kbsvc/kanban-board-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID, soft-deleted tasks included
	FindByID(id uuid.UUID) (*models.Task, error)

	// List retrieves tasks with filtering, sorting and pagination,
	// returning the page and the total count before pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists all fields of a task
	Update(task *models.Task) error

	// SoftDelete stamps the task's tombstone within a transaction
	SoftDelete(task *models.Task) error

	// HardDelete physically removes a task row within a transaction
	HardDelete(id uuid.UUID) error

	// FindAllActive returns every task without a tombstone
	FindAllActive() ([]models.Task, error)

	// DeleteAllActive hard-deletes every task without a tombstone and
	// reports how many rows were removed
	DeleteAllActive() (int64, error)

	// Transaction runs fn against a repository bound to a single
	// transaction; any error rolls back everything fn did
	Transaction(fn func(tx TaskRepository) error) error
}

// TaskFilter holds filtering, sorting and pagination options for
// listing tasks. Nil pointers mean the filter is not applied.
type TaskFilter struct {
	Status       *models.Status
	Priority     *models.Priority
	Assignee     *string
	SearchTerm   *string
	DueDateStart *time.Time
	DueDateEnd   *time.Time
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}
