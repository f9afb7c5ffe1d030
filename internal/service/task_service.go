package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description *string
	Category    string
	Priority    string
	Status      string
	Deadline    *time.Time
}

// TaskPatch carries the fields of a partial update. Nil pointers are left
// untouched; the Clear flags null out optional columns.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Category         *string
	Priority         *string
	Status           *string
	Deadline         *time.Time
	ClearDeadline    bool
}

// SubtaskInput represents data required to create a subtask.
type SubtaskInput struct {
	Title       string
	IsCompleted bool
}

// SubtaskPatch carries the fields of a partial subtask update.
type SubtaskPatch struct {
	Title       *string
	IsCompleted *bool
}

// TaskService wraps task and subtask business logic. Every operation is
// scoped to the owner passed in.
type TaskService struct {
	store *repository.Store
	now   func() time.Time
}

func NewTaskService(store *repository.Store) *TaskService {
	return &TaskService{store: store, now: time.Now}
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input TaskInput) (*model.Task, error) {
	for _, f := range []struct{ name, value string }{
		{"title", input.Title},
		{"category", input.Category},
		{"priority", input.Priority},
	} {
		if err := requireText(f.name, f.value); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = model.StatusPending
	}

	task := model.Task{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      status,
		Deadline:    input.Deadline,
		CreatedAt:   s.now().UTC(),
		OwnerID:     ownerID,
	}

	if err := s.store.InTx(ctx, func(tx *repository.Store) error {
		return tx.Tasks.Create(ctx, &task)
	}); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns one page of the owner's tasks ordered by creation time.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string, skip, limit int) ([]model.Task, error) {
	if skip < 0 {
		return nil, invalid("skip", "must not be negative")
	}
	if limit < 0 {
		return nil, invalid("limit", "must not be negative")
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.store.Tasks.List(ctx, ownerID, skip, limit)
}

// AllTasks returns every task of the owner without pagination.
func (s *TaskService) AllTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	return s.store.Tasks.List(ctx, ownerID, 0, repository.NoLimit)
}

func (s *TaskService) GetTask(ctx context.Context, taskID, ownerID string) (*model.Task, error) {
	task, err := s.store.Tasks.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, notFound(err, ErrTaskNotFound)
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID, ownerID string, patch TaskPatch) (*model.Task, error) {
	updates, err := patch.columns()
	if err != nil {
		return nil, err
	}

	var task *model.Task
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		ok, err := tx.Tasks.Exists(ctx, ownerID, taskID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTaskNotFound
		}
		if err := tx.Tasks.Update(ctx, ownerID, taskID, updates); err != nil {
			return err
		}
		task, err = tx.Tasks.FindByID(ctx, ownerID, taskID)
		return notFound(err, ErrTaskNotFound)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task with its subtasks and returns the snapshot
// taken before deletion.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, ownerID string) (*model.Task, error) {
	var snapshot *model.Task
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.FindByID(ctx, ownerID, taskID)
		if err != nil {
			return notFound(err, ErrTaskNotFound)
		}
		if err := tx.Tasks.Delete(ctx, ownerID, taskID); err != nil {
			return notFound(err, ErrTaskNotFound)
		}
		snapshot = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *TaskService) CreateSubtask(ctx context.Context, taskID, ownerID string, input SubtaskInput) (*model.Subtask, error) {
	if err := requireText("title", input.Title); err != nil {
		return nil, err
	}

	subtask := model.Subtask{
		Title:       input.Title,
		IsCompleted: input.IsCompleted,
		TaskID:      taskID,
	}
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := requireOwnedTask(ctx, tx, taskID, ownerID); err != nil {
			return err
		}
		return tx.Subtasks.Create(ctx, &subtask)
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (s *TaskService) ListSubtasks(ctx context.Context, taskID, ownerID string) ([]model.Subtask, error) {
	if err := requireOwnedTask(ctx, s.store, taskID, ownerID); err != nil {
		return nil, err
	}
	return s.store.Subtasks.ListByTask(ctx, taskID)
}

// UpdateSubtask checks parent ownership, then membership of the subtask in
// that task, before applying the patch.
func (s *TaskService) UpdateSubtask(ctx context.Context, taskID, subtaskID, ownerID string, patch SubtaskPatch) (*model.Subtask, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		if err := requireText("title", *patch.Title); err != nil {
			return nil, err
		}
		updates["title"] = *patch.Title
	}
	if patch.IsCompleted != nil {
		updates["is_completed"] = *patch.IsCompleted
	}

	var subtask *model.Subtask
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := requireOwnedTask(ctx, tx, taskID, ownerID); err != nil {
			return err
		}
		if _, err := tx.Subtasks.FindByID(ctx, taskID, subtaskID); err != nil {
			return notFound(err, ErrSubtaskNotFound)
		}
		if err := tx.Subtasks.Update(ctx, taskID, subtaskID, updates); err != nil {
			return err
		}
		var err error
		subtask, err = tx.Subtasks.FindByID(ctx, taskID, subtaskID)
		return notFound(err, ErrSubtaskNotFound)
	})
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

func (s *TaskService) DeleteSubtask(ctx context.Context, taskID, subtaskID, ownerID string) (*model.Subtask, error) {
	var snapshot *model.Subtask
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := requireOwnedTask(ctx, tx, taskID, ownerID); err != nil {
			return err
		}
		subtask, err := tx.Subtasks.FindByID(ctx, taskID, subtaskID)
		if err != nil {
			return notFound(err, ErrSubtaskNotFound)
		}
		if err := tx.Subtasks.Delete(ctx, taskID, subtaskID); err != nil {
			return notFound(err, ErrSubtaskNotFound)
		}
		snapshot = subtask
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (p TaskPatch) columns() (map[string]any, error) {
	updates := map[string]any{}
	if p.Title != nil {
		if err := requireText("title", *p.Title); err != nil {
			return nil, err
		}
		updates["title"] = *p.Title
	}
	switch {
	case p.ClearDescription:
		updates["description"] = nil
	case p.Description != nil:
		updates["description"] = *p.Description
	}
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"category", p.Category},
		{"priority", p.Priority},
		{"status", p.Status},
	} {
		if f.value == nil {
			continue
		}
		if err := requireText(f.column, *f.value); err != nil {
			return nil, err
		}
		updates[f.column] = *f.value
	}
	switch {
	case p.ClearDeadline:
		updates["deadline"] = nil
	case p.Deadline != nil:
		updates["deadline"] = *p.Deadline
	}
	return updates, nil
}

func requireOwnedTask(ctx context.Context, store *repository.Store, taskID, ownerID string) error {
	ok, err := store.Tasks.Exists(ctx, ownerID, taskID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

// notFound maps a repository miss onto the domain sentinel and wraps
// anything else as a storage failure.
func notFound(err, sentinel error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return sentinel
	default:
		return fmt.Errorf("storage: %w", err)
	}
}
