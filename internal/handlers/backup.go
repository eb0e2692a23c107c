package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kbsvc/kanban-board-api/internal/constants"
	"github.com/kbsvc/kanban-board-api/internal/dto"
	apierrors "github.com/kbsvc/kanban-board-api/internal/errors"
	"github.com/kbsvc/kanban-board-api/internal/services"
)

type BackupHandler struct {
	backupService *services.BackupService
}

func NewBackupHandler(backupService *services.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// ExportTasks returns all active tasks as a JSON backup
func (h *BackupHandler) ExportTasks(c *gin.Context) {
	items, err := h.backupService.ExportTasks()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

// ImportTasks merges backup tasks into the store under a conflict
// resolution strategy (skip by default).
func (h *BackupHandler) ImportTasks(c *gin.Context) {
	var req dto.ImportTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	strategy := req.ConflictStrategy
	if strategy == "" {
		strategy = constants.ConflictStrategySkip
	}

	summary, err := h.backupService.ImportTasks(req.Tasks, strategy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidConflictStrategy):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrImportFailed):
			apierrors.RespondWithError(c, http.StatusBadRequest, &apierrors.APIError{
				Code:    apierrors.ErrCodeInvalidInput,
				Message: err.Error(),
				Details: summary,
			})
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RestoreTasks replaces the entire active task set with the backup
func (h *BackupHandler) RestoreTasks(c *gin.Context) {
	var req dto.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deleted, restored, err := h.backupService.RestoreFromBackup(req.Tasks)
	if err != nil {
		if errors.Is(err, services.ErrInvalidBackupTask) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.RestoreResponse{
		Message:  fmt.Sprintf("Restored %d tasks from backup", restored),
		Deleted:  deleted,
		Restored: restored,
	})
}
