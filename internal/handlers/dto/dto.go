package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"taskmanager/internal/models/user"
	"taskmanager/internal/service"
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Normalize обрезает пробелы до валидации
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// Deadline принимает RFC 3339 или просто дату YYYY-MM-DD (полночь UTC)
type Deadline struct {
	time.Time
}

func (d *Deadline) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("deadline must be a string: %w", err)
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			d.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("deadline %q is not an ISO 8601 date", raw)
}

func (d *Deadline) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

type CreateTaskRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Deadline    *Deadline `json:"deadline"`
	Tags        []string  `json:"tags"`
}

func (r CreateTaskRequest) ToInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Deadline:    r.Deadline.ptr(),
		Tags:        r.Tags,
	}
}

// UpdateTaskRequest: отсутствующее или null поле не меняется
type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *string   `json:"priority"`
	Status      *string   `json:"status"`
	Deadline    *Deadline `json:"deadline"`
	Tags        []string  `json:"tags"`
}

func (r UpdateTaskRequest) ToInput() service.UpdateTaskInput {
	return service.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Deadline:    r.Deadline.ptr(),
		Tags:        r.Tags,
	}
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
