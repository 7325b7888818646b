package analytics

import "math"

// Counts - количество задач владельца по состояниям
type Counts struct {
	Total      int64
	Completed  int64
	Pending    int64
	InProgress int64
	Overdue    int64
}

type Summary struct {
	TotalTasks      int64   `json:"total_tasks"`
	CompletedTasks  int64   `json:"completed_tasks"`
	PendingTasks    int64   `json:"pending_tasks"`
	InProgressTasks int64   `json:"in_progress_tasks"`
	OverdueTasks    int64   `json:"overdue_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
}

type DayTrend struct {
	Date           string `json:"date"`
	TasksCreated   int64  `json:"tasks_created"`
	TasksCompleted int64  `json:"tasks_completed"`
}

const TrendDays = 7

// CompletionRate в процентах, округление до двух знаков; 0 при пустом списке.
func CompletionRate(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return math.Round(rate*100) / 100
}

func NewSummary(c Counts) Summary {
	return Summary{
		TotalTasks:      c.Total,
		CompletedTasks:  c.Completed,
		PendingTasks:    c.Pending,
		InProgressTasks: c.InProgress,
		OverdueTasks:    c.Overdue,
		CompletionRate:  CompletionRate(c.Completed, c.Total),
	}
}
