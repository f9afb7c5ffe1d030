package model

// Subtask is a checklist item of a task.
type Subtask struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"index;not null" json:"title"`
	IsCompleted bool   `gorm:"not null" json:"is_completed"`
	TaskID      string `gorm:"index;not null" json:"task_id"`
}
