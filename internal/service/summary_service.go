package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"taskflow/internal/ai"
	"taskflow/internal/model"
)

const (
	maxPromptTasks = 20
	maxTopTasks    = 3
	noDeadline     = "None"
	deadlineLayout = "2006-01-02 15:04:05-07:00"
)

// Stats are computed locally from the full task list.
type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	Overdue        int `json:"overdue"`
	HighPriority   int `json:"highPriority"`
	CompletionRate int `json:"completionRate"`
}

// Insight is one narrative observation produced by the provider.
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SummaryReport blends local stats with provider insights.
type SummaryReport struct {
	Stats       Stats        `json:"stats"`
	Insights    []Insight    `json:"insights"`
	ActionItems []string     `json:"actionItems"`
	TopTasks    []model.Task `json:"topTasks"`
}

// promptTask is the reduced projection sent to the provider.
type promptTask struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Deadline string `json:"deadline"`
}

type providerAnswer struct {
	Insights    []Insight `json:"insights"`
	ActionItems []string  `json:"actionItems"`
}

// FallbackObserver is notified whenever provider output is replaced.
type FallbackObserver func(reason error)

// SummaryService builds the AI summary for a user's tasks.
type SummaryService struct {
	tasks      *TaskService
	provider   ai.Provider
	now        func() time.Time
	onFallback FallbackObserver
}

// NewSummaryService accepts a nil provider; Summarize then reports
// ErrAIUnconfigured.
func NewSummaryService(tasks *TaskService, provider ai.Provider, onFallback FallbackObserver) *SummaryService {
	return &SummaryService{tasks: tasks, provider: provider, now: time.Now, onFallback: onFallback}
}

// Summarize never fails because of the provider: provider errors are
// logged and replaced with fixed fallback content.
func (s *SummaryService) Summarize(ctx context.Context, user *model.User) (*SummaryReport, error) {
	if s.provider == nil {
		return nil, ErrAIUnconfigured
	}

	tasks, err := s.tasks.AllTasks(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := ComputeStats(tasks, now)
	prompt, err := buildPrompt(user.Email, stats, projectOpenTasks(tasks))
	if err != nil {
		return nil, err
	}

	answer, err := s.ask(ctx, prompt)
	if err != nil {
		slog.Warn("AI generation failed, using fallback", "user_id", user.ID, "error", err)
		if s.onFallback != nil {
			s.onFallback(err)
		}
		answer = fallbackAnswer()
	}

	return &SummaryReport{
		Stats:       stats,
		Insights:    answer.Insights,
		ActionItems: answer.ActionItems,
		TopTasks:    TopTasks(tasks, maxTopTasks),
	}, nil
}

func (s *SummaryService) ask(ctx context.Context, prompt string) (providerAnswer, error) {
	raw, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return providerAnswer{}, err
	}
	return parseAnswer(raw)
}

// ComputeStats counts totals, overdue and open high-priority tasks.
func ComputeStats(tasks []model.Task, now time.Time) Stats {
	var st Stats
	st.Total = len(tasks)
	for _, t := range tasks {
		if t.IsCompleted() {
			st.Completed++
			continue
		}
		st.Pending++
		if t.IsOverdue(now) {
			st.Overdue++
		}
		if t.Priority == model.PriorityHigh {
			st.HighPriority++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = st.Completed * 100 / st.Total
	}
	return st
}

// TopTasks picks up to n open tasks by earliest deadline, then priority.
// Tasks without a deadline sort last.
func TopTasks(tasks []model.Task, n int) []model.Task {
	open := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsCompleted() {
			open = append(open, t)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		switch {
		case a.Deadline == nil && b.Deadline != nil:
			return false
		case a.Deadline != nil && b.Deadline == nil:
			return true
		case a.Deadline != nil && b.Deadline != nil && !a.Deadline.Equal(*b.Deadline):
			return a.Deadline.Before(*b.Deadline)
		}
		return priorityRank(a.Priority) < priorityRank(b.Priority)
	})
	if len(open) > n {
		open = open[:n]
	}
	return open
}

func priorityRank(p string) int {
	switch p {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	case model.PriorityLow:
		return 2
	default:
		return 3
	}
}

func projectOpenTasks(tasks []model.Task) []promptTask {
	out := make([]promptTask, 0, maxPromptTasks)
	for _, t := range tasks {
		if t.IsCompleted() {
			continue
		}
		deadline := noDeadline
		if t.Deadline != nil {
			deadline = t.Deadline.Format(deadlineLayout)
		}
		out = append(out, promptTask{
			Title:    t.Title,
			Category: t.Category,
			Priority: t.Priority,
			Deadline: deadline,
		})
		if len(out) == maxPromptTasks {
			break
		}
	}
	return out
}

func buildPrompt(email string, stats Stats, open []promptTask) (string, error) {
	listing, err := json.MarshalIndent(open, "    ", "  ")
	if err != nil {
		return "", fmt.Errorf("encode task projection: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a productivity assistant. Analyze these pending tasks for user %s.\n\n", email)
	b.WriteString("Stats:\n")
	fmt.Fprintf(&b, "- Completion Rate: %d%%\n", stats.CompletionRate)
	fmt.Fprintf(&b, "- Overdue: %d\n", stats.Overdue)
	fmt.Fprintf(&b, "- High Priority Pending: %d\n\n", stats.HighPriority)
	b.WriteString("Pending Tasks:\n    ")
	b.Write(listing)
	fmt.Fprintf(&b, "\n(List truncated to top %d if too long)\n\n", maxPromptTasks)
	b.WriteString(`Return a JSON object with exactly this structure:
{
    "insights": [
        { "type": "warning" | "success" | "info", "title": "Short Title", "description": "One sentence description" }
    ],
    "actionItems": [
        "Actionable advice 1",
        "Actionable advice 2"
    ]
}

Rules:
- Generate 3-4 insights based on the stats and tasks.
- If completion rate < 50%, include a warning insight.
- If overdue > 0, include a warning insight.
- "actionItems" should be specific recommendations based on the tasks provided.
- Do NOT return markdown formatting, just raw JSON.
`)
	return b.String(), nil
}

// parseAnswer decodes provider output, tolerating markdown code fences.
// Missing keys decode as empty lists.
func parseAnswer(raw string) (providerAnswer, error) {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var answer providerAnswer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return providerAnswer{}, fmt.Errorf("decode provider answer: %w", err)
	}
	if answer.Insights == nil {
		answer.Insights = []Insight{}
	}
	if answer.ActionItems == nil {
		answer.ActionItems = []string{}
	}
	return answer, nil
}

func fallbackAnswer() providerAnswer {
	return providerAnswer{
		Insights: []Insight{{
			Type:        "info",
			Title:       "AI Unavailable",
			Description: "Could not generate personalized insights at this time.",
		}},
		ActionItems: []string{"Focus on high priority tasks", "Check your deadlines"},
	}
}
