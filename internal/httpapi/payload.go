package httpapi

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their JSON key.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}

// optional distinguishes an absent key from an explicit null.
type optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

type signupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"full_name"`
}

type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
}

type taskCreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Priority    string  `json:"priority" binding:"required"`
	Status      string  `json:"status"`
	Deadline    *string `json:"deadline"`
}

func (r taskCreateRequest) input() (service.TaskInput, error) {
	in := service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
		Status:      r.Status,
	}
	if r.Deadline != nil {
		deadline, err := parseDeadline(*r.Deadline)
		if err != nil {
			return in, err
		}
		in.Deadline = deadline
	}
	return in, nil
}

type taskUpdateRequest struct {
	Title       *string          `json:"title"`
	Description optional[string] `json:"description"`
	Category    *string          `json:"category"`
	Priority    *string          `json:"priority"`
	Status      *string          `json:"status"`
	Deadline    optional[string] `json:"deadline"`
}

func (r taskUpdateRequest) patch() (service.TaskPatch, error) {
	p := service.TaskPatch{
		Title:    r.Title,
		Category: r.Category,
		Priority: r.Priority,
		Status:   r.Status,
	}
	if r.Description.Set {
		if r.Description.Valid && r.Description.Value != "" {
			p.Description = &r.Description.Value
		} else {
			p.ClearDescription = true
		}
	}
	if r.Deadline.Set {
		var raw string
		if r.Deadline.Valid {
			raw = r.Deadline.Value
		}
		deadline, err := parseDeadline(raw)
		if err != nil {
			return p, err
		}
		if deadline == nil {
			p.ClearDeadline = true
		} else {
			p.Deadline = deadline
		}
	}
	return p, nil
}

type subtaskCreateRequest struct {
	Title       string `json:"title" binding:"required"`
	IsCompleted bool   `json:"is_completed"`
}

type subtaskUpdateRequest struct {
	Title       *string `json:"title"`
	IsCompleted *bool   `json:"is_completed"`
}

// Layouts without an offset are read as UTC.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDeadline returns nil for an empty value.
func parseDeadline(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, &service.ValidationError{Field: "deadline", Reason: "expected an ISO 8601 date or datetime"}
}
