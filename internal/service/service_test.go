package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskflow/internal/auth"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// fakeProvider returns canned output and records prompts.
type fakeProvider struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type fixture struct {
	store *repository.Store
	auth  *AuthService
	tasks *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repository.NewStore(db)
	issuer, err := auth.NewTokenIssuer("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	return &fixture{
		store: store,
		auth:  NewAuthService(store.Users, issuer),
		tasks: NewTaskService(store),
	}
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := f.auth.Signup(context.Background(), SignupInput{Email: email, Password: "password123"})
	require.NoError(t, err)
	return u
}

func (f *fixture) task(t *testing.T, ownerID, title string) *model.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), ownerID, TaskInput{
		Title:    title,
		Category: "Work",
		Priority: model.PriorityHigh,
	})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T { return &v }

func isValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
