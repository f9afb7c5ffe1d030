package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// Digest is the per-user snapshot logged by the scheduled job.
type Digest struct {
	Email        string
	Stats        Stats
	NextDeadline *time.Time
}

// DigestService builds periodic per-user task digests from local stats only.
type DigestService struct {
	users *repository.UserRepository
	tasks *TaskService
	now   func() time.Time
}

func NewDigestService(users *repository.UserRepository, tasks *TaskService) *DigestService {
	return &DigestService{users: users, tasks: tasks, now: time.Now}
}

// Build computes the digest for one user.
func (s *DigestService) Build(ctx context.Context, user model.User) (Digest, error) {
	tasks, err := s.tasks.AllTasks(ctx, user.ID)
	if err != nil {
		return Digest{}, err
	}
	d := Digest{Email: user.Email, Stats: ComputeStats(tasks, s.now())}
	if top := TopTasks(tasks, 1); len(top) == 1 {
		d.NextDeadline = top[0].Deadline
	}
	return d, nil
}

// Run logs a digest for every user. A failing user is logged and skipped;
// the returned count is the number of digests written.
func (s *DigestService) Run(ctx context.Context) (int, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	written := 0
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		d, err := s.Build(ctx, user)
		if err != nil {
			slog.Error("task digest failed", "user_id", user.ID, "error", err)
			continue
		}
		attrs := []any{
			"email", d.Email,
			"total", d.Stats.Total,
			"pending", d.Stats.Pending,
			"overdue", d.Stats.Overdue,
			"high_priority", d.Stats.HighPriority,
			"completion_rate", d.Stats.CompletionRate,
		}
		if d.NextDeadline != nil {
			attrs = append(attrs, "next_deadline", d.NextDeadline.Format(time.RFC3339))
		}
		slog.Info("task digest", attrs...)
		written++
	}
	return written, nil
}
