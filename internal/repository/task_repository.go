package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kbsvc/kanban-board-api/internal/constants"
	"github.com/kbsvc/kanban-board-api/internal/database"
	"github.com/kbsvc/kanban-board-api/internal/models"
	"github.com/kbsvc/kanban-board-api/internal/utils"
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

// FindByID finds a task by ID. Soft-deleted tasks are returned as well;
// callers inspect DeletedAt when the distinction matters.
func (r *GormTaskRepository) FindByID(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering, sorting and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{})

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Assignee != nil {
		query = query.Where("LOWER(tasks.assignee) LIKE ?", containsPattern(*filter.Assignee))
	}
	if filter.SearchTerm != nil {
		pattern := containsPattern(*filter.SearchTerm)
		query = query.Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?", pattern, pattern)
	}
	if filter.DueDateStart != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateStart)
	}
	if filter.DueDateEnd != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueDateEnd)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order(orderClause(filter.SortBy, filter.SortOrder)).
		Scopes(database.Paginate(utils.PaginationParams{Limit: filter.Limit, Offset: filter.Offset}))

	var tasks []models.Task
	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// orderClause builds the ORDER BY expression for a validated sort
// specification. NULL due dates and NULL priorities always sort last,
// whichever direction is requested.
func orderClause(sortBy, sortOrder string) string {
	direction := "ASC"
	if sortOrder == constants.SortOrderDesc {
		direction = "DESC"
	}

	switch sortBy {
	case constants.SortByDueDate:
		return "CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date " + direction
	case constants.SortByPriority:
		return "CASE WHEN tasks.priority IS NULL THEN 1 ELSE 0 END, " + priorityRankExpr + " " + direction
	default:
		return "tasks.created_at " + direction
	}
}

// priorityRankExpr maps priorities to their severity rank so Critical
// sorts before High before Medium before Low under DESC.
const priorityRankExpr = "CASE tasks.priority " +
	"WHEN 'Critical' THEN 4 " +
	"WHEN 'High' THEN 3 " +
	"WHEN 'Medium' THEN 2 " +
	"WHEN 'Low' THEN 1 " +
	"ELSE 0 END"

func containsPattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

// Update persists all fields of a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// SoftDelete stamps the tombstone and refreshes last_modified. Already
// soft-deleted tasks simply get a fresh timestamp.
func (r *GormTaskRepository) SoftDelete(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		task.DeletedAt = &now
		return tx.Save(task).Error
	})
}

// HardDelete physically removes a task row
func (r *GormTaskRepository) HardDelete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FindAllActive returns every task without a tombstone
func (r *GormTaskRepository) FindAllActive() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("deleted_at IS NULL").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteAllActive hard-deletes every task without a tombstone
func (r *GormTaskRepository) DeleteAllActive() (int64, error) {
	result := r.db.Where("deleted_at IS NULL").Delete(&models.Task{})
	return result.RowsAffected, result.Error
}

// Transaction runs fn against a transaction-bound repository
func (r *GormTaskRepository) Transaction(fn func(tx TaskRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormTaskRepository{db: tx})
	})
}
