package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/kbsvc/kanban-board-api/internal/errors"
)

const taskIDKey = "task_id"

// RequireTaskID validates that the :id path parameter is a well-formed
// UUID before the handler runs. Malformed identifiers are rejected with
// 422 so they never reach the storage layer.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("id")
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.UnprocessableEntity(c, fmt.Sprintf("Invalid task ID %q: must be a valid UUID", raw))
			c.Abort()
			return
		}

		c.Set(taskIDKey, id)
		c.Next()
	}
}

// GetTaskID returns the task ID parsed by RequireTaskID
func GetTaskID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(taskIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
