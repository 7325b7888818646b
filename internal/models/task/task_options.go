package task

import (
	"time"
)

type TaskOption func(*Task)

func WithDescription(description *string) TaskOption {
	if description == nil {
		return nil
	}
	d := *description
	return func(task *Task) {
		task.Description = &d
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithDeadline(deadline *time.Time) TaskOption {
	if deadline == nil || deadline.IsZero() {
		return nil
	}
	d := *deadline
	return func(task *Task) {
		task.Deadline = &d
	}
}

func WithTags(tags []string) TaskOption {
	if tags == nil {
		return nil
	}
	return func(task *Task) {
		task.Tags = append([]string{}, tags...)
	}
}

// Patch - частичное обновление задачи, nil означает "не менять"
type Patch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Status      *Status
	Deadline    *time.Time
	Tags        []string
}
