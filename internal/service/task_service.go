package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	repo "taskmanager/internal/repository"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    string
	Status      string
	Deadline    *time.Time
	Tags        []string
}

// UpdateTaskInput: nil означает "не менять"
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	Deadline    *time.Time
	Tags        []string
}

type ListTasksInput struct {
	Status   string
	Priority string
	Search   string
	Page     int
	Limit    int
}

type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

func NewTaskService(repo TaskRepository, opts ...Option) *TaskService {
	s := applyOptions(opts)
	return &TaskService{
		repo: repo,
		now:  s.now,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка хранилища: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, owner uuid.UUID, in CreateTaskInput) (*task.Task, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	var status task.Status
	if in.Status != "" {
		if status, err = task.ParseStatus(in.Status); err != nil {
			return nil, NewValidationError("status", "must be one of Pending, In Progress, Completed")
		}
	}

	var priority task.Priority
	if in.Priority != "" {
		if priority, err = task.ParsePriority(in.Priority); err != nil {
			return nil, NewValidationError("priority", "must be one of Low, Medium, High")
		}
	}

	newTask := task.New(owner, title, s.now(),
		task.WithDescription(in.Description),
		task.WithPriority(priority),
		task.WithStatus(status),
		task.WithDeadline(in.Deadline),
		task.WithTags(in.Tags),
	)

	if err := s.repo.Insert(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Debug("Service: Задача создана", zap.String("task_id", newTask.ID.String()))
	return newTask, nil
}

func (s *TaskService) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.FindByID(ctx, id, owner)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("Task")
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, owner uuid.UUID, in ListTasksInput) ([]*task.Task, error) {
	var filter task.Filter

	if in.Status != "" {
		status, err := task.ParseStatus(in.Status)
		if err != nil {
			return nil, NewValidationError("status", "must be one of Pending, In Progress, Completed")
		}
		filter.Status = &status
	}
	if in.Priority != "" {
		priority, err := task.ParsePriority(in.Priority)
		if err != nil {
			return nil, NewValidationError("priority", "must be one of Low, Medium, High")
		}
		filter.Priority = &priority
	}
	filter.Search = strings.TrimSpace(in.Search)

	tasks, err := s.repo.ListByOwner(ctx, owner, filter, task.NewPage(in.Page, in.Limit))
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, in UpdateTaskInput) (*task.Task, error) {
	var patch task.Patch

	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if in.Status != nil {
		status, err := task.ParseStatus(*in.Status)
		if err != nil {
			return nil, NewValidationError("status", "must be one of Pending, In Progress, Completed")
		}
		patch.Status = &status
	}
	if in.Priority != nil {
		priority, err := task.ParsePriority(*in.Priority)
		if err != nil {
			return nil, NewValidationError("priority", "must be one of Low, Medium, High")
		}
		patch.Priority = &priority
	}
	patch.Description = in.Description
	patch.Deadline = in.Deadline
	patch.Tags = in.Tags

	updated, err := s.repo.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("Task")
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id, owner)
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if !deleted {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		return NewNotFound("Task")
	}
	return nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", NewValidationError("title", "is required")
	}
	if utf8.RuneCountInString(title) > task.MaxTitleLength {
		return "", NewValidationError("title", fmt.Sprintf("must be at most %d characters", task.MaxTitleLength))
	}
	return title, nil
}
