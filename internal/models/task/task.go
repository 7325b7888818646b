package task

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	Status      Status     `json:"status" db:"status"`
	Deadline    *time.Time `json:"deadline" db:"deadline"`
	Tags        []string   `json:"tags" db:"tags"`
	IsOverdue   bool       `json:"is_overdue" db:"is_overdue"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
}

type Status string
type Priority string

const StatusPending Status = "Pending"
const StatusInProgress Status = "In Progress"
const StatusCompleted Status = "Completed"

const PriorityLow Priority = "Low"
const PriorityMedium Priority = "Medium"
const PriorityHigh Priority = "High"

const MaxTitleLength = 255

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("неизвестный статус %q", s)
}

func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("неизвестный приоритет %q", s)
}

// Filter - условия выборки списка задач владельца
type Filter struct {
	Status   *Status
	Priority *Priority
	Search   string
}

// Page - пагинация, страницы считаются с 1
type Page struct {
	Number int
	Limit  int
}

const DefaultPageLimit = 20
const MaxPageLimit = 100
const MaxPageNumber = 1_000_000

func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset не бывает отрицательным, при переполнении возвращается math.MaxInt
func (p Page) Offset() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}

// Clone возвращает копию задачи без общих указателей и срезов
func (t *Task) Clone() *Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		c.UpdatedAt = &u
	}
	if t.CompletedAt != nil {
		ca := *t.CompletedAt
		c.CompletedAt = &ca
	}
	c.Tags = append([]string{}, t.Tags...)
	return &c
}
