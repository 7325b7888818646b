package postgres

import (
	"context"
	"fmt"
	"strings"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, user_id, title, description, priority, status, deadline, tags,
	is_overdue, created_at, updated_at, completed_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.Deadline,
		&t.Tags,
		&t.IsOverdue,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func (s *Storage) Insert(ctx context.Context, taskToCreate *task.Task) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("insert task", start)

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	if taskToCreate.Tags == nil {
		taskToCreate.Tags = []string{}
	}

	query := `INSERT INTO tasks
				(id, user_id, title, description, priority, status, deadline, tags, is_overdue, created_at, completed_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.pool.Exec(ctx, query,
		taskToCreate.ID,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Priority,
		taskToCreate.Status,
		taskToCreate.Deadline,
		taskToCreate.Tags,
		taskToCreate.IsOverdue,
		taskToCreate.CreatedAt,
		taskToCreate.CompletedAt,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", mapError(err))
	}
	return nil
}

func (s *Storage) FindByID(ctx context.Context, id, owner uuid.UUID) (*task.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("find task", start)

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1 AND user_id = $2`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id, owner))
	if err != nil {
		err = mapError(err)
		if !isNotFound(err) {
			logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// задачи владельца по фильтру, новые первыми
func (s *Storage) ListByOwner(ctx context.Context, owner uuid.UUID, filter task.Filter, page task.Page) ([]*task.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("list tasks", start)

	where := []string{"user_id = $1"}
	args := []any{owner}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`SELECT %s
				FROM tasks
				WHERE %s
				ORDER BY created_at DESC, id
				LIMIT $%d OFFSET $%d`,
		taskColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

// Update блокирует строку, применяет патч и сохраняет результат в одной транзакции.
func (s *Storage) Update(ctx context.Context, id, owner uuid.UUID, patch task.Patch, now time.Time) (*task.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("update task", start)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err)
		return nil, fmt.Errorf("начало транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1 AND user_id = $2
				FOR UPDATE`

	existing, err := scanTask(tx.QueryRow(ctx, query, id, owner))
	if err != nil {
		err = mapError(err)
		if !isNotFound(err) {
			logger.Error("Repository: Не удалось получить задачу для обновления", err)
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	patch.Apply(existing, now)

	update := `UPDATE tasks
			SET title = $1,
				description = $2,
				priority = $3,
				status = $4,
				deadline = $5,
				tags = $6,
				is_overdue = $7,
				updated_at = $8,
				completed_at = $9
			WHERE id = $10`

	_, err = tx.Exec(ctx, update,
		existing.Title,
		existing.Description,
		existing.Priority,
		existing.Status,
		existing.Deadline,
		existing.Tags,
		existing.IsOverdue,
		existing.UpdatedAt,
		existing.CompletedAt,
		existing.ID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}
	return existing, nil
}

func (s *Storage) Delete(ctx context.Context, id, owner uuid.UUID) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("delete task", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return false, fmt.Errorf("удаление задачи: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkOverdue помечает просроченные незавершённые задачи. Уже помеченные не трогает.
func (s *Storage) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("mark overdue", start)

	query := `UPDATE tasks
			SET is_overdue = TRUE,
				updated_at = $1
			WHERE deadline < $1
				AND status <> $2
				AND is_overdue = FALSE`

	tag, err := s.pool.Exec(ctx, query, now, task.StatusCompleted)
	if err != nil {
		logger.Error("Repository: Не удалось пометить просроченные задачи", err)
		return 0, fmt.Errorf("пометка просроченных: %w", err)
	}
	return tag.RowsAffected(), nil
}
