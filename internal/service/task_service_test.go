package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

func TestTaskService_CreateDefaultsToPending(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "u@example.com")

	task := f.task(t, owner.ID, "Test Task")

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Test Task", task.Title)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, owner.ID, task.OwnerID)
	assert.NotNil(t, task.Subtasks)
	assert.Empty(t, task.Subtasks)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestTaskService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "u@example.com")

	_, err := f.tasks.CreateTask(context.Background(), owner.ID, TaskInput{Title: " ", Category: "Work", Priority: "high"})
	assert.True(t, isValidation(err))
	_, err = f.tasks.CreateTask(context.Background(), owner.ID, TaskInput{Title: "x", Priority: "high"})
	assert.True(t, isValidation(err))
}

func TestTaskService_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	task := f.task(t, alice.ID, "private")

	_, err := f.tasks.GetTask(ctx, task.ID, bob.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = f.tasks.UpdateTask(ctx, task.ID, bob.ID, TaskPatch{Title: ptr("mine now")})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = f.tasks.DeleteTask(ctx, task.ID, bob.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = f.tasks.CreateSubtask(ctx, task.ID, bob.ID, SubtaskInput{Title: "sneaky"})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = f.tasks.ListSubtasks(ctx, task.ID, bob.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, missing := f.tasks.GetTask(ctx, "does-not-exist", bob.ID)
	assert.Equal(t, missing.Error(), err.Error(), "foreign and absent ids must look the same")

	list, err := f.tasks.ListTasks(ctx, bob.ID, 0, DefaultLimit)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskService_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "u@example.com")
	deadline := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	created, err := f.tasks.CreateTask(ctx, owner.ID, TaskInput{
		Title:       "Write report",
		Description: ptr("quarterly"),
		Category:    "Work",
		Priority:    model.PriorityMedium,
		Deadline:    &deadline,
	})
	require.NoError(t, err)

	updated, err := f.tasks.UpdateTask(ctx, created.ID, owner.ID, TaskPatch{Status: ptr(model.StatusCompleted)})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "quarterly", *updated.Description)
	assert.Equal(t, "Work", updated.Category)
	assert.Equal(t, model.PriorityMedium, updated.Priority)
	require.NotNil(t, updated.Deadline)
	assert.True(t, deadline.Equal(*updated.Deadline))
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	cleared, err := f.tasks.UpdateTask(ctx, created.ID, owner.ID, TaskPatch{ClearDeadline: true, ClearDescription: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.Deadline)
	assert.Nil(t, cleared.Description)
	assert.Equal(t, model.StatusCompleted, cleared.Status)
}

func TestTaskService_ListPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "u@example.com")
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.tasks.now = func() time.Time { return at }
		f.task(t, owner.ID, title)
	}

	page, err := f.tasks.ListTasks(ctx, owner.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Title)
	assert.Equal(t, "c", page[1].Title)

	_, err = f.tasks.ListTasks(ctx, owner.ID, -1, 10)
	assert.True(t, isValidation(err))
	_, err = f.tasks.ListTasks(ctx, owner.ID, 0, -5)
	assert.True(t, isValidation(err))
}

func TestTaskService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "u@example.com")
	task := f.task(t, owner.ID, "parent")
	sub, err := f.tasks.CreateSubtask(ctx, task.ID, owner.ID, SubtaskInput{Title: "child"})
	require.NoError(t, err)

	snapshot, err := f.tasks.DeleteTask(ctx, task.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, snapshot.ID)
	require.Len(t, snapshot.Subtasks, 1)
	assert.Equal(t, sub.ID, snapshot.Subtasks[0].ID)

	_, err = f.tasks.GetTask(ctx, task.ID, owner.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = f.tasks.ListSubtasks(ctx, task.ID, owner.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	orphans, err := f.store.Subtasks.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestTaskService_SubtaskTwoLevelCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "u@example.com")
	first := f.task(t, owner.ID, "first")
	second := f.task(t, owner.ID, "second")

	sub, err := f.tasks.CreateSubtask(ctx, first.ID, owner.ID, SubtaskInput{Title: "step"})
	require.NoError(t, err)
	assert.False(t, sub.IsCompleted)
	assert.Equal(t, first.ID, sub.TaskID)

	_, err = f.tasks.UpdateSubtask(ctx, second.ID, sub.ID, owner.ID, SubtaskPatch{IsCompleted: ptr(true)})
	assert.ErrorIs(t, err, ErrSubtaskNotFound)
	_, err = f.tasks.DeleteSubtask(ctx, second.ID, sub.ID, owner.ID)
	assert.ErrorIs(t, err, ErrSubtaskNotFound)

	updated, err := f.tasks.UpdateSubtask(ctx, first.ID, sub.ID, owner.ID, SubtaskPatch{IsCompleted: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "step", updated.Title)

	loaded, err := f.tasks.GetTask(ctx, first.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Subtasks, 1)
	assert.True(t, loaded.Subtasks[0].IsCompleted)

	deleted, err := f.tasks.DeleteSubtask(ctx, first.ID, sub.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, deleted.ID)

	remaining, err := f.tasks.ListSubtasks(ctx, first.ID, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestTaskService_CreateCompletedSubtask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "u@example.com")
	task := f.task(t, owner.ID, "parent")

	sub, err := f.tasks.CreateSubtask(ctx, task.ID, owner.ID, SubtaskInput{Title: "done already", IsCompleted: true})
	require.NoError(t, err)

	list, err := f.tasks.ListSubtasks(ctx, task.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sub.ID, list[0].ID)
	assert.True(t, list[0].IsCompleted)
}
