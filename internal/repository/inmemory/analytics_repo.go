package inmemory

import (
	"context"
	"sort"
	"taskmanager/internal/models/analytics"
	"taskmanager/internal/models/task"
	"time"

	"github.com/google/uuid"
)

func (s *Storage) StatusCounts(ctx context.Context, owner uuid.UUID) (analytics.Counts, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var c analytics.Counts
	for _, t := range s.storage {
		if t.UserID != owner {
			continue
		}
		c.Total++
		switch t.Status {
		case task.StatusCompleted:
			c.Completed++
		case task.StatusPending:
			c.Pending++
		case task.StatusInProgress:
			c.InProgress++
		}
		if t.IsOverdue {
			c.Overdue++
		}
	}
	return c, nil
}

// DailyTrend группирует задачи по дню создания (UTC), новые дни первыми.
func (s *Storage) DailyTrend(ctx context.Context, owner uuid.UUID, since time.Time) ([]analytics.DayTrend, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	byDay := make(map[string]*analytics.DayTrend)
	for _, t := range s.storage {
		if t.UserID != owner || t.CreatedAt.Before(since) {
			continue
		}
		day := t.CreatedAt.UTC().Format(time.DateOnly)
		trend, ok := byDay[day]
		if !ok {
			trend = &analytics.DayTrend{Date: day}
			byDay[day] = trend
		}
		trend.TasksCreated++
		if t.Status == task.StatusCompleted {
			trend.TasksCompleted++
		}
	}

	res := make([]analytics.DayTrend, 0, len(byDay))
	for _, trend := range byDay {
		res = append(res, *trend)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date > res[j].Date })
	return res, nil
}
