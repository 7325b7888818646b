package task_test

import (
	"math"
	"taskmanager/internal/models/task"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

// TestDeriveOverdue проверяет вычисление просрочки
func TestDeriveOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		deadline *time.Time
		status   task.Status
		expected bool
	}{
		{name: "no deadline", deadline: nil, status: task.StatusPending, expected: false},
		{name: "future deadline", deadline: &future, status: task.StatusPending, expected: false},
		{name: "deadline equals now", deadline: &now, status: task.StatusPending, expected: false},
		{name: "past deadline pending", deadline: &past, status: task.StatusPending, expected: true},
		{name: "past deadline in progress", deadline: &past, status: task.StatusInProgress, expected: true},
		{name: "past deadline completed", deadline: &past, status: task.StatusCompleted, expected: false},
		{name: "no deadline completed", deadline: nil, status: task.StatusCompleted, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, task.DeriveOverdue(tt.deadline, tt.status, now))
		})
	}
}

// TestOnStatusChange проверяет переходы completed_at
func TestOnStatusChange(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-24 * time.Hour)

	t.Run("to completed sets now", func(t *testing.T) {
		got := task.OnStatusChange(task.StatusPending, task.StatusCompleted, nil, now)
		require.NotNil(t, got)
		assert.Equal(t, now, *got)
	})

	t.Run("leaving completed clears", func(t *testing.T) {
		got := task.OnStatusChange(task.StatusCompleted, task.StatusInProgress, &earlier, now)
		assert.Nil(t, got)
	})

	t.Run("completed to completed keeps value", func(t *testing.T) {
		got := task.OnStatusChange(task.StatusCompleted, task.StatusCompleted, &earlier, now)
		require.NotNil(t, got)
		assert.Equal(t, earlier, *got)
	})

	t.Run("pending to in progress keeps nil", func(t *testing.T) {
		got := task.OnStatusChange(task.StatusPending, task.StatusInProgress, nil, now)
		assert.Nil(t, got)
	})
}

func TestNew(t *testing.T) {
	now := time.Now()
	owner := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		created := task.New(owner, "Write report", now)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, owner, created.UserID)
		assert.Equal(t, task.StatusPending, created.Status)
		assert.Equal(t, task.PriorityMedium, created.Priority)
		assert.Empty(t, created.Tags)
		assert.NotNil(t, created.Tags)
		assert.Nil(t, created.CompletedAt)
		assert.False(t, created.IsOverdue)
	})

	t.Run("past deadline is not flagged on create", func(t *testing.T) {
		deadline := now.Add(-time.Hour)
		created := task.New(owner, "Late", now, task.WithDeadline(&deadline))
		assert.False(t, created.IsOverdue)
		require.NotNil(t, created.Deadline)
	})

	t.Run("created as completed", func(t *testing.T) {
		created := task.New(owner, "Done", now, task.WithStatus(task.StatusCompleted))
		require.NotNil(t, created.CompletedAt)
		assert.Equal(t, now, *created.CompletedAt)
	})

	t.Run("nil options are skipped", func(t *testing.T) {
		created := task.New(owner, "x", now, task.WithDescription(nil), task.WithTags(nil), task.WithPriority(""))
		assert.Nil(t, created.Description)
		assert.Equal(t, task.PriorityMedium, created.Priority)
	})
}

// TestPatch_Apply проверяет частичное обновление
func TestPatch_Apply(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)

	base := func() *task.Task {
		return &task.Task{
			ID:          uuid.New(),
			Title:       "Original",
			Description: ptr("desc"),
			Priority:    task.PriorityLow,
			Status:      task.StatusPending,
			Deadline:    &past,
			Tags:        []string{"a"},
			IsOverdue:   true,
		}
	}

	t.Run("absent fields are kept", func(t *testing.T) {
		tk := base()
		task.Patch{Title: ptr("New")}.Apply(tk, now)

		assert.Equal(t, "New", tk.Title)
		assert.Equal(t, "desc", *tk.Description)
		assert.Equal(t, task.PriorityLow, tk.Priority)
		assert.Equal(t, []string{"a"}, tk.Tags)
		assert.True(t, tk.IsOverdue)
		require.NotNil(t, tk.UpdatedAt)
	})

	t.Run("completing sets completed_at and clears overdue", func(t *testing.T) {
		tk := base()
		task.Patch{Status: ptr(task.StatusCompleted)}.Apply(tk, now)

		require.NotNil(t, tk.CompletedAt)
		assert.Equal(t, now, *tk.CompletedAt)
		assert.False(t, tk.IsOverdue)
	})

	t.Run("reopening clears completed_at", func(t *testing.T) {
		tk := base()
		tk.Status = task.StatusCompleted
		tk.CompletedAt = &past
		tk.IsOverdue = false

		task.Patch{Status: ptr(task.StatusInProgress)}.Apply(tk, now)

		assert.Nil(t, tk.CompletedAt)
		assert.False(t, tk.IsOverdue, "reopening never sets the flag")
	})

	t.Run("moving deadline to future clears overdue", func(t *testing.T) {
		tk := base()
		future := now.Add(time.Hour)
		task.Patch{Deadline: &future}.Apply(tk, now)

		assert.False(t, tk.IsOverdue)
	})

	t.Run("empty tags replace", func(t *testing.T) {
		tk := base()
		task.Patch{Tags: []string{}}.Apply(tk, now)
		assert.Empty(t, tk.Tags)
	})
}

func TestParseStatusAndPriority(t *testing.T) {
	s, err := task.ParseStatus("In Progress")
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, s)

	_, err = task.ParseStatus("done")
	assert.Error(t, err)

	p, err := task.ParsePriority("High")
	require.NoError(t, err)
	assert.Equal(t, task.PriorityHigh, p)

	_, err = task.ParsePriority("urgent")
	assert.Error(t, err)
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, 10, task.NewPage(2, 10).Offset())
	assert.Equal(t, 0, task.NewPage(0, 0).Offset())
	assert.Equal(t, task.DefaultPageLimit, task.NewPage(1, 0).Limit)
	assert.Equal(t, task.MaxPageLimit, task.NewPage(1, 1000).Limit)
	assert.Equal(t, task.MaxPageNumber, task.NewPage(math.MaxInt, 100).Number)
}

func TestPage_OffsetOverflow(t *testing.T) {
	huge := task.Page{Number: math.MaxInt, Limit: 100}
	assert.Equal(t, math.MaxInt, huge.Offset())

	assert.Equal(t, 0, task.Page{Number: -5, Limit: 10}.Offset())
	assert.Equal(t, 0, task.Page{Number: 3, Limit: 0}.Offset())
	assert.Equal(t, (task.MaxPageNumber-1)*task.MaxPageLimit, task.NewPage(task.MaxPageNumber, task.MaxPageLimit).Offset())
}
