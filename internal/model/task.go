package model

import "time"

// Status values the service understands. Storage accepts any string.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Priority values used for summary ranking.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task represents a single item on a user's list together with its subtasks.
type Task struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"index;not null" json:"title"`
	Description *string    `json:"description"`
	Category    string     `gorm:"index" json:"category"`
	Priority    string     `gorm:"index" json:"priority"`
	Status      string     `gorm:"index;default:pending" json:"status"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	OwnerID     string     `gorm:"index;not null" json:"owner_id"`
	Subtasks    []Subtask  `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks"`
}

// IsCompleted reports whether the task counts as done.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether an open task's deadline is strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now) && !t.IsCompleted()
}
