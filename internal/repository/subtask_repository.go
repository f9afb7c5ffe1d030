package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// SubtaskRepository handles CRUD for subtasks. Lookups are scoped by the
// parent task id; ownership of the parent is checked by the caller through
// TaskRepository.
type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	subtask.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(subtask).Error; err != nil {
		return fmt.Errorf("create subtask: %w", err)
	}
	return nil
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID string) ([]model.Subtask, error) {
	subtasks := []model.Subtask{}
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id ASC").Find(&subtasks).Error; err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	return subtasks, nil
}

func (r *SubtaskRepository) FindByID(ctx context.Context, taskID, subtaskID string) (*model.Subtask, error) {
	var subtask model.Subtask
	err := r.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", subtaskID, taskID).
		First(&subtask).Error
	if err != nil {
		return nil, translate(err)
	}
	return &subtask, nil
}

func (r *SubtaskRepository) Update(ctx context.Context, taskID, subtaskID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&model.Subtask{}).
		Where("id = ? AND task_id = ?", subtaskID, taskID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update subtask: %w", err)
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, taskID, subtaskID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", subtaskID, taskID).
		Delete(&model.Subtask{})
	if res.Error != nil {
		return fmt.Errorf("delete subtask: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
