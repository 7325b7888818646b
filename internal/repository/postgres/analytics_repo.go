package postgres

import (
	"context"
	"fmt"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/analytics"
	"taskmanager/internal/models/task"
	"time"

	"github.com/google/uuid"
)

func (s *Storage) StatusCounts(ctx context.Context, owner uuid.UUID) (analytics.Counts, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("status counts", start)

	query := `SELECT
				COUNT(*),
				COUNT(*) FILTER (WHERE status = $2),
				COUNT(*) FILTER (WHERE status = $3),
				COUNT(*) FILTER (WHERE status = $4),
				COUNT(*) FILTER (WHERE is_overdue)
			FROM tasks
			WHERE user_id = $1`

	var c analytics.Counts
	err := s.pool.QueryRow(ctx, query,
		owner,
		task.StatusCompleted,
		task.StatusPending,
		task.StatusInProgress,
	).Scan(&c.Total, &c.Completed, &c.Pending, &c.InProgress, &c.Overdue)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return analytics.Counts{}, fmt.Errorf("подсчёт задач: %w", err)
	}
	return c, nil
}

// DailyTrend группирует задачи по дню создания (UTC), новые дни первыми.
func (s *Storage) DailyTrend(ctx context.Context, owner uuid.UUID, since time.Time) ([]analytics.DayTrend, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("daily trend", start)

	query := `SELECT
				to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
				COUNT(*),
				COUNT(*) FILTER (WHERE status = $3)
			FROM tasks
			WHERE user_id = $1 AND created_at >= $2
			GROUP BY day
			ORDER BY day DESC`

	rows, err := s.pool.Query(ctx, query, owner, since, task.StatusCompleted)
	if err != nil {
		logger.Error("Repository: Не удалось получить динамику", err)
		return nil, fmt.Errorf("динамика задач: %w", err)
	}
	defer rows.Close()

	trend := []analytics.DayTrend{}
	for rows.Next() {
		var d analytics.DayTrend
		if err := rows.Scan(&d.Date, &d.TasksCreated, &d.TasksCompleted); err != nil {
			return nil, fmt.Errorf("сканирование динамики: %w", err)
		}
		trend = append(trend, d)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return trend, nil
}
