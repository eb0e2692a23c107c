package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kbsvc/kanban-board-api/internal/dto"
	apierrors "github.com/kbsvc/kanban-board-api/internal/errors"
	"github.com/kbsvc/kanban-board-api/internal/middleware"
	"github.com/kbsvc/kanban-board-api/internal/services"
	"github.com/kbsvc/kanban-board-api/internal/utils"
)

const dateLayout = "2006-01-02"

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// respondTaskError maps service errors to HTTP responses. Anything not
// recognized as a client error becomes a generic 500; details stay in
// the server log.
func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrStaleTask):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrPastDueDate),
		errors.Is(err, services.ErrNegativeEstimatedTime),
		errors.Is(err, services.ErrInvalidSortBy),
		errors.Is(err, services.ErrInvalidSortOrder),
		errors.Is(err, services.ErrInvalidStatusTransition):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

// ListTasks returns a filtered, sorted, paginated page of tasks plus
// the total count of matches before pagination.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		Status:     optionalQuery(c, "status"),
		Priority:   optionalQuery(c, "priority"),
		Assignee:   optionalQuery(c, "assignee"),
		SearchTerm: optionalQuery(c, "search_term"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
		Limit:      params.Limit,
		Offset:     params.Offset,
	}

	if raw := c.Query("due_date_start"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid due_date_start %q: must be YYYY-MM-DD", raw))
			return
		}
		input.DueDateStart = &start
	}
	if raw := c.Query("due_date_end"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid due_date_end %q: must be YYYY-MM-DD", raw))
			return
		}
		input.DueDateEnd = &end
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Limit, params.Offset, total))
}

// GetTask returns a single task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTaskInput{
		Title:         req.Title,
		Assignee:      req.Assignee,
		Description:   req.Description,
		Priority:      req.Priority,
		Labels:        req.Labels,
		EstimatedTime: req.EstimatedTime,
		Status:        req.Status,
	}

	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid due_date %q: must be YYYY-MM-DD", *req.DueDate))
			return
		}
		input.DueDate = &due
	}

	task, err := h.taskService.CreateTask(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskResponse(*task))
}

// UpdateTask applies a partial update. The raw JSON is inspected so a
// field set to null can be told apart from a field that was omitted.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput

	if raw, provided := rawReq["title"]; provided {
		if s, ok := raw.(string); ok {
			input.Title = &s
		}
	}
	if raw, provided := rawReq["assignee"]; provided {
		input.Assignee = optionalString(raw)
	}
	if raw, provided := rawReq["description"]; provided {
		input.Description = optionalString(raw)
	}
	if raw, provided := rawReq["priority"]; provided {
		input.Priority = optionalString(raw)
	}
	if raw, provided := rawReq["status"]; provided {
		if s, ok := raw.(string); ok {
			input.Status = &s
		}
	}
	if raw, provided := rawReq["due_date"]; provided {
		if raw == nil {
			input.ClearDueDate = true
		} else if s, ok := raw.(string); ok {
			due, err := time.Parse(dateLayout, s)
			if err != nil {
				apierrors.BadRequest(c, fmt.Sprintf("Invalid due_date %q: must be YYYY-MM-DD", s))
				return
			}
			input.DueDate = &due
		}
	}
	if raw, provided := rawReq["estimated_time"]; provided {
		if f, ok := raw.(float64); ok {
			input.EstimatedTime = &f
		}
	}
	if raw, provided := rawReq["labels"]; provided {
		input.LabelsProvided = true
		if list, ok := raw.([]any); ok {
			labels := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := item.(string); ok {
					labels = append(labels, s)
				}
			}
			input.Labels = labels
		}
	}
	if raw, provided := rawReq["expected_last_modified"]; provided && raw != nil {
		s, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid expected_last_modified: must be an RFC3339 timestamp")
			return
		}
		expected, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid expected_last_modified %q: must be an RFC3339 timestamp", s))
			return
		}
		input.ExpectedLastModified = &expected
	}

	task, err := h.taskService.UpdateTask(id, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(*task))
}

// DeleteTask deletes a task, softly by default. soft_delete=false
// performs an unrecoverable hard delete.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	soft := true
	if raw := c.Query("soft_delete"); raw != "" {
		switch raw {
		case "true":
			soft = true
		case "false":
			soft = false
		default:
			apierrors.BadRequest(c, fmt.Sprintf("Invalid soft_delete %q: must be true or false", raw))
			return
		}
	}

	message, err := h.taskService.DeleteTask(id, soft)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, fmt.Sprintf("Task with ID %s not found", id))
			return
		}
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteTaskResponse{
		Message: message,
		TaskID:  id.String(),
	})
}

// optionalQuery returns a pointer to the query value, or nil when the
// parameter is absent or blank.
func optionalQuery(c *gin.Context, key string) *string {
	value := c.Query(key)
	if value == "" {
		return nil
	}
	return &value
}

// optionalString converts a raw JSON value to an optional string; JSON
// null becomes a blank string so the service clears the field.
func optionalString(raw any) *string {
	if raw == nil {
		empty := ""
		return &empty
	}
	if s, ok := raw.(string); ok {
		return &s
	}
	return nil
}
