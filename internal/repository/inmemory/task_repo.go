package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"
	"time"

	"github.com/google/uuid"
)

// Storage держит задачи и пользователей в памяти. Используется в тестах и в режиме repository.type=inmemory.
type Storage struct {
	storage map[uuid.UUID]*task.Task
	users   map[uuid.UUID]*user.User
	mtx     *sync.RWMutex
	ids     []uuid.UUID // порядок вставки задач
}

func NewStorage() *Storage {
	return &Storage{
		storage: make(map[uuid.UUID]*task.Task),
		users:   make(map[uuid.UUID]*user.User),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Close() {}

func (s *Storage) Insert(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	if taskToCreate.Tags == nil {
		taskToCreate.Tags = []string{}
	}

	s.storage[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *Storage) FindByID(ctx context.Context, id, owner uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok || taskToGet.UserID != owner {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

// задачи владельца, новые первыми
func (s *Storage) ListByOwner(ctx context.Context, owner uuid.UUID, filter task.Filter, page task.Page) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*task.Task{}
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.storage[s.ids[i]]
		if t.UserID != owner || !matches(t, filter) {
			continue
		}
		matched = append(matched, t)
	}

	// вставка может идти не по порядку created_at
	sortByCreatedDesc(matched)

	res := []*task.Task{}
	offset := page.Offset()
	if offset < 0 || offset >= len(matched) {
		return res, nil
	}
	for i := offset; i < len(matched); i++ {
		if len(res) >= page.Limit {
			break
		}
		res = append(res, matched[i].Clone())
	}
	return res, nil
}

func (s *Storage) Update(ctx context.Context, id, owner uuid.UUID, patch task.Patch, now time.Time) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.UserID != owner {
		return nil, repo.ErrNotFound
	}

	patch.Apply(existing, now)
	return existing.Clone(), nil
}

func (s *Storage) Delete(ctx context.Context, id, owner uuid.UUID) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.UserID != owner {
		return false, nil
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return true, nil
}

func (s *Storage) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var affected int64
	for _, t := range s.storage {
		if t.IsOverdue || !task.DeriveOverdue(t.Deadline, t.Status, now) {
			continue
		}
		t.IsOverdue = true
		updated := now
		t.UpdatedAt = &updated
		affected++
	}
	return affected, nil
}

func matches(t *task.Task, filter task.Filter) bool {
	if filter.Status != nil && t.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && t.Priority != *filter.Priority {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		inTitle := strings.Contains(strings.ToLower(t.Title), needle)
		inDescription := t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
		if !inTitle && !inDescription {
			return false
		}
	}
	return true
}

func sortByCreatedDesc(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
