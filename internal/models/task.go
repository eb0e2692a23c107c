package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// StatusValues returns all valid status values in board order.
func StatusValues() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusDone}
}

// PriorityValues returns all valid priority values from most to least severe.
func PriorityValues() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// ParseStatus validates a raw string against the status enumeration.
func ParseStatus(s string) (Status, bool) {
	for _, v := range StatusValues() {
		if Status(s) == v {
			return v, true
		}
	}
	return "", false
}

// ParsePriority validates a raw string against the priority enumeration.
func ParsePriority(s string) (Priority, bool) {
	for _, v := range PriorityValues() {
		if Priority(s) == v {
			return v, true
		}
	}
	return "", false
}

// Task is the unit of work tracked on the kanban board.
//
// DeletedAt is a plain nullable timestamp rather than gorm.DeletedAt:
// soft-deleted tasks must remain visible to lookups and listings, which
// GORM's automatic soft-delete scoping would prevent.
type Task struct {
	ID            uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Assignee      *string    `gorm:"type:varchar(255)" json:"assignee"`
	DueDate       *time.Time `gorm:"type:date;index:idx_tasks_due_date" json:"due_date"`
	Description   *string    `gorm:"type:text" json:"description"`
	Priority      *Priority  `gorm:"type:varchar(20);index:idx_tasks_priority" json:"priority"`
	Labels        []string   `gorm:"serializer:json" json:"labels"`
	EstimatedTime *float64   `json:"estimated_time"`
	Status        Status     `gorm:"type:varchar(20);not null;index:idx_tasks_status" json:"status"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastModified  time.Time  `gorm:"not null" json:"last_modified"`
	DeletedAt     *time.Time `json:"deleted_at"`
}

// BeforeCreate assigns the identifier and synchronizes both timestamps.
// Values provided explicitly (e.g. tasks restored from a backup) are kept.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.LastModified.IsZero() {
		t.LastModified = t.CreatedAt
	}
	return nil
}

// BeforeUpdate refreshes last_modified on every mutation, soft deletes
// included.
func (t *Task) BeforeUpdate(tx *gorm.DB) error {
	t.LastModified = time.Now().UTC()
	return nil
}
