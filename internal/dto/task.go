package dto

import (
	"time"

	"github.com/kbsvc/kanban-board-api/internal/models"
)

const dateLayout = "2006-01-02"

// TaskResponse represents a task in API responses. Dates are ISO date
// strings, timestamps are RFC3339 with timezone, labels are never null.
type TaskResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Assignee      *string  `json:"assignee"`
	DueDate       *string  `json:"due_date"`
	Description   *string  `json:"description"`
	Priority      *string  `json:"priority"`
	Labels        []string `json:"labels"`
	EstimatedTime *float64 `json:"estimated_time"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
	LastModified  string   `json:"last_modified"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
	TotalCount int64          `json:"total_count"`
}

// CreateTaskRequest is the body of POST /api/tasks. DueDate is an ISO
// date string ("2006-01-02").
type CreateTaskRequest struct {
	Title         string   `json:"title" binding:"required"`
	Assignee      *string  `json:"assignee"`
	DueDate       *string  `json:"due_date"`
	Description   *string  `json:"description"`
	Priority      *string  `json:"priority"`
	Labels        []string `json:"labels"`
	EstimatedTime *float64 `json:"estimated_time"`
	Status        string   `json:"status" binding:"required"`
}

// DeleteTaskResponse is the body returned by a successful delete
type DeleteTaskResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

// TaskBackupData is the wire format for export, import and restore.
// IDs and timestamps are carried verbatim so backups round-trip.
type TaskBackupData struct {
	ID            string    `json:"id"`
	Title         string    `json:"title" binding:"required"`
	Assignee      *string   `json:"assignee"`
	DueDate       *string   `json:"due_date"`
	Description   *string   `json:"description"`
	Priority      *string   `json:"priority"`
	Labels        []string  `json:"labels"`
	EstimatedTime *float64  `json:"estimated_time"`
	Status        string    `json:"status" binding:"required"`
	CreatedAt     time.Time `json:"created_at"`
	LastModified  time.Time `json:"last_modified"`
}

// ImportTasksRequest is the body of POST /api/tasks/import
type ImportTasksRequest struct {
	Tasks            []TaskBackupData `json:"tasks" binding:"required"`
	ConflictStrategy string           `json:"conflict_strategy"`
}

// RestoreRequest is the body of POST /api/tasks/restore
type RestoreRequest struct {
	Tasks []TaskBackupData `json:"tasks" binding:"required"`
}

// RestoreResponse summarizes a completed restore
type RestoreResponse struct {
	Message  string `json:"message"`
	Deleted  int64  `json:"deleted"`
	Restored int    `json:"restored"`
}

// ToTaskResponse converts a Task model to TaskResponse
func ToTaskResponse(task models.Task) TaskResponse {
	resp := TaskResponse{
		ID:            task.ID.String(),
		Title:         task.Title,
		Assignee:      task.Assignee,
		Description:   task.Description,
		Labels:        task.Labels,
		EstimatedTime: task.EstimatedTime,
		Status:        string(task.Status),
		CreatedAt:     task.CreatedAt.Format(time.RFC3339Nano),
		LastModified:  task.LastModified.Format(time.RFC3339Nano),
	}
	if resp.Labels == nil {
		resp.Labels = []string{}
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(dateLayout)
		resp.DueDate = &due
	}
	if task.Priority != nil {
		priority := string(*task.Priority)
		resp.Priority = &priority
	}
	return resp
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, limit, offset int, totalCount int64) TaskListResponse {
	items := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskResponse(task)
	}
	return TaskListResponse{
		Tasks:      items,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	}
}

// ToTaskBackupData converts a Task model to its backup wire format
func ToTaskBackupData(task models.Task) TaskBackupData {
	data := TaskBackupData{
		ID:            task.ID.String(),
		Title:         task.Title,
		Assignee:      task.Assignee,
		Description:   task.Description,
		Labels:        task.Labels,
		EstimatedTime: task.EstimatedTime,
		Status:        string(task.Status),
		CreatedAt:     task.CreatedAt,
		LastModified:  task.LastModified,
	}
	if data.Labels == nil {
		data.Labels = []string{}
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(dateLayout)
		data.DueDate = &due
	}
	if task.Priority != nil {
		priority := string(*task.Priority)
		data.Priority = &priority
	}
	return data
}
