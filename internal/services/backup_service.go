package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kbsvc/kanban-board-api/internal/constants"
	"github.com/kbsvc/kanban-board-api/internal/dto"
	"github.com/kbsvc/kanban-board-api/internal/models"
	"github.com/kbsvc/kanban-board-api/internal/repository"
)

var (
	ErrInvalidConflictStrategy = errors.New("invalid conflict_strategy")
	ErrImportFailed            = errors.New("import failed")
	ErrInvalidBackupTask       = errors.New("invalid task in backup data")
)

// BackupService exports the active task set and rebuilds it from JSON
// backups, either wholesale (restore) or incrementally with conflict
// resolution (import).
type BackupService struct {
	taskRepo repository.TaskRepository
}

// NewBackupService creates a new BackupService
func NewBackupService(taskRepo repository.TaskRepository) *BackupService {
	return &BackupService{taskRepo: taskRepo}
}

// ImportSummary reports the outcome of an import per task
type ImportSummary struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ExportTasks returns every active task in backup wire format
func (s *BackupService) ExportTasks() ([]dto.TaskBackupData, error) {
	tasks, err := s.taskRepo.FindAllActive()
	if err != nil {
		log.Printf("failed to export tasks: %v", err)
		return nil, fmt.Errorf("failed to export tasks: %w", err)
	}

	items := make([]dto.TaskBackupData, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskBackupData(task)
	}
	return items, nil
}

// RestoreFromBackup hard-deletes all active tasks and recreates the
// given ones, preserving IDs and timestamps, in a single transaction.
func (s *BackupService) RestoreFromBackup(items []dto.TaskBackupData) (int64, int, error) {
	incoming := make([]*models.Task, 0, len(items))
	for i, item := range items {
		task, err := taskFromBackup(item)
		if err != nil {
			return 0, 0, fmt.Errorf("%w at index %d: %v", ErrInvalidBackupTask, i, err)
		}
		incoming = append(incoming, task)
	}

	var deleted int64
	err := s.taskRepo.Transaction(func(tx repository.TaskRepository) error {
		var err error
		deleted, err = tx.DeleteAllActive()
		if err != nil {
			return err
		}
		for _, task := range incoming {
			if err := tx.Create(task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("failed to restore %d tasks from backup: %v", len(incoming), err)
		return 0, 0, fmt.Errorf("failed to restore from backup: %w", err)
	}

	return deleted, len(incoming), nil
}

// dedupeKey identifies probable duplicates between an incoming backup
// task and an existing one: same normalized title created on the same
// UTC calendar day.
type dedupeKey struct {
	title string
	day   string
}

func keyFor(title string, createdAt time.Time) dedupeKey {
	return dedupeKey{
		title: strings.ToLower(strings.TrimSpace(title)),
		day:   createdAt.UTC().Format("2006-01-02"),
	}
}

// ImportTasks merges backup tasks into the active set under the given
// conflict strategy. The whole batch is one transaction; if any task
// fails to convert, everything is rolled back and the summary reports
// the failure counts.
func (s *BackupService) ImportTasks(items []dto.TaskBackupData, strategy string) (*ImportSummary, error) {
	switch strategy {
	case constants.ConflictStrategySkip, constants.ConflictStrategyReplace, constants.ConflictStrategyMergeWithTimestamp:
	default:
		return nil, fmt.Errorf("%w %q. Must be one of: %s, %s, %s", ErrInvalidConflictStrategy, strategy,
			constants.ConflictStrategySkip, constants.ConflictStrategyReplace, constants.ConflictStrategyMergeWithTimestamp)
	}

	existing, err := s.taskRepo.FindAllActive()
	if err != nil {
		log.Printf("failed to load existing tasks for import: %v", err)
		return nil, fmt.Errorf("failed to load existing tasks: %w", err)
	}

	lookup := make(map[dedupeKey]*models.Task, len(existing))
	for i := range existing {
		task := &existing[i]
		lookup[keyFor(task.Title, task.CreatedAt)] = task
	}

	summary := &ImportSummary{}
	err = s.taskRepo.Transaction(func(tx repository.TaskRepository) error {
		for i, item := range items {
			incoming, convErr := taskFromBackup(item)
			if convErr != nil {
				log.Printf("failed to process backup task at index %d: %v", i, convErr)
				summary.Failed++
				continue
			}

			// Tasks without a creation timestamp cannot be matched
			// against existing rows and always import as new.
			var match *models.Task
			if !incoming.CreatedAt.IsZero() {
				match = lookup[keyFor(incoming.Title, incoming.CreatedAt)]
			}

			switch {
			case match == nil:
				if err := tx.Create(incoming); err != nil {
					return err
				}
				summary.Imported++
				lookup[keyFor(incoming.Title, incoming.CreatedAt)] = incoming

			case strategy == constants.ConflictStrategySkip:
				summary.Skipped++

			case strategy == constants.ConflictStrategyReplace:
				if err := tx.HardDelete(match.ID); err != nil {
					return err
				}
				if err := tx.Create(incoming); err != nil {
					return err
				}
				summary.Updated++
				lookup[keyFor(incoming.Title, incoming.CreatedAt)] = incoming

			case strategy == constants.ConflictStrategyMergeWithTimestamp:
				if incoming.LastModified.After(match.LastModified) {
					mergeBackupFields(match, incoming)
					if err := tx.Update(match); err != nil {
						return err
					}
					summary.Updated++
				} else {
					summary.Skipped++
				}
			}
		}

		if summary.Failed > 0 {
			return fmt.Errorf("%w with %d task processing errors", ErrImportFailed, summary.Failed)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrImportFailed) {
			return summary, err
		}
		log.Printf("failed to import tasks: %v", err)
		return nil, fmt.Errorf("failed to import tasks: %w", err)
	}

	return summary, nil
}

// mergeBackupFields copies the incoming task's content onto the
// existing row, keeping the existing identity and creation timestamp.
func mergeBackupFields(existing, incoming *models.Task) {
	existing.Title = incoming.Title
	existing.Assignee = incoming.Assignee
	existing.DueDate = incoming.DueDate
	existing.Description = incoming.Description
	existing.Priority = incoming.Priority
	existing.Labels = incoming.Labels
	existing.EstimatedTime = incoming.EstimatedTime
	existing.Status = incoming.Status
}

// taskFromBackup validates a backup record and converts it to a model.
// Blank IDs and zero timestamps are left for the create hook to fill.
func taskFromBackup(item dto.TaskBackupData) (*models.Task, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}

	status, ok := models.ParseStatus(strings.TrimSpace(item.Status))
	if !ok {
		return nil, fmt.Errorf("%w: %q must be one of %v", ErrInvalidStatus, item.Status, models.StatusValues())
	}

	priority, err := parseOptionalPriority(item.Priority)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	if strings.TrimSpace(item.ID) != "" {
		id, err = uuid.Parse(item.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid task ID %q: %w", item.ID, err)
		}
	}

	var dueDate *time.Time
	if item.DueDate != nil && strings.TrimSpace(*item.DueDate) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*item.DueDate))
		if err != nil {
			return nil, fmt.Errorf("invalid due_date %q: %w", *item.DueDate, err)
		}
		dueDate = &parsed
	}

	if item.EstimatedTime != nil && *item.EstimatedTime < 0 {
		return nil, fmt.Errorf("%w, got %v", ErrNegativeEstimatedTime, *item.EstimatedTime)
	}

	return &models.Task{
		ID:            id,
		Title:         title,
		Assignee:      normalizeOptional(item.Assignee),
		DueDate:       dueDate,
		Description:   normalizeOptional(item.Description),
		Priority:      priority,
		Labels:        cleanLabels(item.Labels),
		EstimatedTime: item.EstimatedTime,
		Status:        status,
		CreatedAt:     item.CreatedAt,
		LastModified:  item.LastModified,
	}, nil
}
