package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kbsvc/kanban-board-api/internal/constants"
	"github.com/kbsvc/kanban-board-api/internal/models"
	"github.com/kbsvc/kanban-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound            = errors.New("task not found")
	ErrTitleEmpty              = errors.New("title cannot be empty")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidPriority         = errors.New("invalid priority")
	ErrPastDueDate             = errors.New("due date cannot be in the past")
	ErrNegativeEstimatedTime   = errors.New("estimated time must be non-negative")
	ErrInvalidSortBy           = errors.New("invalid sort_by")
	ErrInvalidSortOrder        = errors.New("invalid sort_order")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStaleTask               = errors.New("task was modified by another request")
)

// allowedTransitions encodes the board's status flow. Moving a card
// straight from To Do to Done is not permitted; every other move,
// including undo directions, is.
var allowedTransitions = map[models.Status][]models.Status{
	models.StatusToDo:       {models.StatusInProgress},
	models.StatusInProgress: {models.StatusToDo, models.StatusDone},
	models.StatusDone:       {models.StatusToDo, models.StatusInProgress},
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// CreateTaskInput represents input for creating a task. Enum fields
// arrive as raw strings and are validated here.
type CreateTaskInput struct {
	Title         string
	Assignee      *string
	DueDate       *time.Time
	Description   *string
	Priority      *string
	Labels        []string
	EstimatedTime *float64
	Status        string
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status       *string
	Priority     *string
	Assignee     *string
	SearchTerm   *string
	DueDateStart *time.Time
	DueDateEnd   *time.Time
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}

// UpdateTaskInput represents a partial update. Nil pointers leave the
// field untouched; ClearDueDate removes the due date explicitly.
type UpdateTaskInput struct {
	Title                *string
	Assignee             *string
	DueDate              *time.Time
	ClearDueDate         bool
	Description          *string
	Priority             *string
	Labels               []string
	LabelsProvided       bool
	EstimatedTime        *float64
	Status               *string
	ExpectedLastModified *time.Time
}

// CreateTask validates and persists a new task
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}

	status, ok := models.ParseStatus(strings.TrimSpace(input.Status))
	if !ok {
		return nil, fmt.Errorf("%w: %q must be one of %v", ErrInvalidStatus, input.Status, models.StatusValues())
	}

	priority, err := parseOptionalPriority(input.Priority)
	if err != nil {
		return nil, err
	}

	if err := validateDueDate(input.DueDate); err != nil {
		return nil, err
	}

	if input.EstimatedTime != nil && *input.EstimatedTime < 0 {
		return nil, fmt.Errorf("%w, got %v", ErrNegativeEstimatedTime, *input.EstimatedTime)
	}

	task := &models.Task{
		Title:         title,
		Assignee:      normalizeOptional(input.Assignee),
		DueDate:       input.DueDate,
		Description:   normalizeOptional(input.Description),
		Priority:      priority,
		Labels:        cleanLabels(input.Labels),
		EstimatedTime: input.EstimatedTime,
		Status:        status,
	}

	if err := s.taskRepo.Create(task); err != nil {
		log.Printf("failed to create task %q: %v", title, err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a single task by ID, soft-deleted tasks included
func (s *TaskService) GetTask(id uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		log.Printf("failed to find task %s: %v", id, err)
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns a page of tasks matching the filters plus the total
// count of matches before pagination. Sort parameters are validated
// before any query executes.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter, err := s.buildFilter(input)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(*filter)
	if err != nil {
		log.Printf("failed to list tasks with filter %+v: %v", input, err)
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

func (s *TaskService) buildFilter(input ListTasksInput) (*repository.TaskFilter, error) {
	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = constants.SortByCreatedAt
	}
	switch sortBy {
	case constants.SortByCreatedAt, constants.SortByDueDate, constants.SortByPriority:
	default:
		return nil, fmt.Errorf("%w %q. Must be one of: %s, %s, %s", ErrInvalidSortBy, input.SortBy,
			constants.SortByCreatedAt, constants.SortByDueDate, constants.SortByPriority)
	}

	sortOrder := input.SortOrder
	if sortOrder == "" {
		sortOrder = constants.SortOrderDesc
	}
	if sortOrder != constants.SortOrderAsc && sortOrder != constants.SortOrderDesc {
		return nil, fmt.Errorf("%w %q. Must be one of: %s, %s", ErrInvalidSortOrder, input.SortOrder,
			constants.SortOrderAsc, constants.SortOrderDesc)
	}

	filter := &repository.TaskFilter{
		Assignee:     normalizeOptional(input.Assignee),
		SearchTerm:   normalizeOptional(input.SearchTerm),
		DueDateStart: input.DueDateStart,
		DueDateEnd:   input.DueDateEnd,
		SortBy:       sortBy,
		SortOrder:    sortOrder,
		Limit:        input.Limit,
		Offset:       input.Offset,
	}

	if raw := normalizeOptional(input.Status); raw != nil {
		status, ok := models.ParseStatus(*raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q must be one of %v", ErrInvalidStatus, *raw, models.StatusValues())
		}
		filter.Status = &status
	}
	if raw := normalizeOptional(input.Priority); raw != nil {
		priority, ok := models.ParsePriority(*raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q must be one of %v", ErrInvalidPriority, *raw, models.PriorityValues())
		}
		filter.Priority = &priority
	}

	return filter, nil
}

// UpdateTask applies a partial update with optimistic concurrency
// control and status transition validation.
func (s *TaskService) UpdateTask(id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		log.Printf("failed to find task %s: %v", id, err)
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.ExpectedLastModified != nil && !task.LastModified.Equal(*input.ExpectedLastModified) {
		return nil, fmt.Errorf("%w: expected last_modified %s, found %s", ErrStaleTask,
			input.ExpectedLastModified.Format(time.RFC3339Nano), task.LastModified.Format(time.RFC3339Nano))
	}

	if input.Status != nil {
		next, ok := models.ParseStatus(strings.TrimSpace(*input.Status))
		if !ok {
			return nil, fmt.Errorf("%w: %q must be one of %v", ErrInvalidStatus, *input.Status, models.StatusValues())
		}
		if err := validateTransition(task.Status, next); err != nil {
			return nil, err
		}
		task.Status = next
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Assignee != nil {
		task.Assignee = normalizeOptional(input.Assignee)
	}
	if input.Description != nil {
		task.Description = normalizeOptional(input.Description)
	}
	if input.Priority != nil {
		priority, err := parseOptionalPriority(input.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		if err := validateDueDate(input.DueDate); err != nil {
			return nil, err
		}
		task.DueDate = input.DueDate
	}
	if input.EstimatedTime != nil {
		if *input.EstimatedTime < 0 {
			return nil, fmt.Errorf("%w, got %v", ErrNegativeEstimatedTime, *input.EstimatedTime)
		}
		task.EstimatedTime = input.EstimatedTime
	}
	if input.LabelsProvided {
		task.Labels = cleanLabels(input.Labels)
	}

	if err := s.taskRepo.Update(task); err != nil {
		log.Printf("failed to update task %s: %v", id, err)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task, either by stamping a tombstone (soft) or
// by physically deleting the row (hard). Soft deletes are idempotent:
// repeating one simply refreshes the tombstone timestamp. A hard delete
// of a missing row reports not-found.
func (s *TaskService) DeleteTask(id uuid.UUID, soft bool) (string, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		log.Printf("failed to find task %s: %v", id, err)
		return "", fmt.Errorf("failed to find task: %w", err)
	}

	if soft {
		if err := s.taskRepo.SoftDelete(task); err != nil {
			log.Printf("failed to soft-delete task %s: %v", id, err)
			return "", fmt.Errorf("failed to soft-delete task: %w", err)
		}
		return "Task soft-deleted successfully", nil
	}

	if err := s.taskRepo.HardDelete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		log.Printf("failed to hard-delete task %s: %v", id, err)
		return "", fmt.Errorf("failed to hard-delete task: %w", err)
	}
	return "Task hard-deleted successfully", nil
}

func validateTransition(current, next models.Status) error {
	if current == next {
		return nil
	}
	allowed := allowedTransitions[current]
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w from '%s' to '%s'. Allowed transitions from '%s' are: %v",
		ErrInvalidStatusTransition, current, next, current, allowed)
}

func validateDueDate(due *time.Time) error {
	if due == nil {
		return nil
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	if dueDay.Before(today) {
		return fmt.Errorf("%w: due date %s is before current date %s", ErrPastDueDate,
			dueDay.Format("2006-01-02"), today.Format("2006-01-02"))
	}
	return nil
}

func parseOptionalPriority(raw *string) (*models.Priority, error) {
	normalized := normalizeOptional(raw)
	if normalized == nil {
		return nil, nil
	}
	priority, ok := models.ParsePriority(*normalized)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be one of %v", ErrInvalidPriority, *normalized, models.PriorityValues())
	}
	return &priority, nil
}

// normalizeOptional trims an optional string, mapping blanks to nil.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// cleanLabels trims each label and drops empty ones.
func cleanLabels(labels []string) []string {
	if labels == nil {
		return nil
	}
	cleaned := make([]string, 0, len(labels))
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
