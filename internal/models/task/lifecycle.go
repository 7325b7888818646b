package task

import (
	"time"

	"github.com/google/uuid"
)

// DeriveOverdue: дедлайн задан, уже прошёл, и задача не завершена.
func DeriveOverdue(deadline *time.Time, status Status, now time.Time) bool {
	return deadline != nil && deadline.Before(now) && status != StatusCompleted
}

// OnStatusChange возвращает новое значение completed_at при смене статуса.
func OnStatusChange(oldStatus, newStatus Status, completedAt *time.Time, now time.Time) *time.Time {
	switch {
	case newStatus == StatusCompleted && oldStatus != StatusCompleted:
		t := now
		return &t
	case newStatus != StatusCompleted && oldStatus == StatusCompleted:
		return nil
	default:
		return completedAt
	}
}

// New собирает задачу со значениями по умолчанию. Флаг просрочки выставляет только воркер.
func New(owner uuid.UUID, title string, now time.Time, options ...TaskOption) *Task {
	t := &Task{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     title,
		Priority:  PriorityMedium,
		Status:    StatusPending,
		Tags:      []string{},
		CreatedAt: now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	t.CompletedAt = OnStatusChange(StatusPending, t.Status, nil, now)
	return t
}

// Apply применяет частичное обновление. Поля с nil не трогаются.
func (p Patch) Apply(t *Task, now time.Time) {
	oldStatus := t.Status

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Deadline != nil {
		d := *p.Deadline
		t.Deadline = &d
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, p.Tags...)
	}
	if p.Status != nil {
		t.Status = *p.Status
		t.CompletedAt = OnStatusChange(oldStatus, t.Status, t.CompletedAt, now)
	}

	// API может только снять флаг просрочки, выставляет его воркер
	if t.IsOverdue && !DeriveOverdue(t.Deadline, t.Status, now) {
		t.IsOverdue = false
	}

	updated := now
	t.UpdatedAt = &updated
}
