package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// NoLimit disables the row cap in List.
const NoLimit = -1

// TaskRepository handles CRUD for tasks. Every query is scoped by owner.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task, assigning a fresh id.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	task.ID = uuid.NewString()
	task.Subtasks = []model.Subtask{}
	if err := r.db.WithContext(ctx).Omit("Subtasks").Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// List returns the owner's tasks ordered by creation time, subtasks
// included. Pass NoLimit to fetch every task.
func (r *TaskRepository) List(ctx context.Context, ownerID string, skip, limit int) ([]model.Task, error) {
	var tasks []model.Task
	q := r.withSubtasks(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Offset(skip).
		Limit(limit)
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for i := range tasks {
		ensureSubtasks(&tasks[i])
	}
	return tasks, nil
}

// FindByID loads the task aggregate when it exists and belongs to ownerID.
func (r *TaskRepository) FindByID(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	var task model.Task
	err := r.withSubtasks(ctx).
		Where("id = ? AND owner_id = ?", taskID, ownerID).
		First(&task).Error
	if err != nil {
		return nil, translate(err)
	}
	ensureSubtasks(&task)
	return &task, nil
}

// Exists checks ownership without loading subtasks.
func (r *TaskRepository) Exists(ctx context.Context, ownerID, taskID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND owner_id = ?", taskID, ownerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check task: %w", err)
	}
	return count > 0, nil
}

// Update applies the given column values to an owned task.
func (r *TaskRepository) Update(ctx context.Context, ownerID, taskID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND owner_id = ?", taskID, ownerID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	return nil
}

// Delete removes an owned task and its subtasks. Callers run it inside a
// transaction so both statements commit together.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	db := r.db.WithContext(ctx)
	owned := db.Model(&model.Task{}).Select("id").Where("id = ? AND owner_id = ?", taskID, ownerID)
	if err := db.Where("task_id IN (?)", owned).Delete(&model.Subtask{}).Error; err != nil {
		return fmt.Errorf("delete subtasks: %w", err)
	}
	res := db.Where("id = ? AND owner_id = ?", taskID, ownerID).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) withSubtasks(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("subtasks.id ASC")
	})
}

func ensureSubtasks(task *model.Task) {
	if task.Subtasks == nil {
		task.Subtasks = []model.Subtask{}
	}
}
