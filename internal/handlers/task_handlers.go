package handlers

import (
	"net/http"
	"strconv"
	"taskmanager/internal/auth"
	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	"taskmanager/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page, ok := queryInt(w, r, "page", 1, task.MaxPageNumber)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", task.DefaultPageLimit, task.MaxPageLimit)
	if !ok {
		return
	}

	tasks, err := s.TaskService.ListTasks(r.Context(), owner, service.ListTasksInput{
		Status:   query.Get("status"),
		Priority: query.Get("priority"),
		Search:   query.Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("tasks", tasks))
}

func (s *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), owner, request.ToInput())
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.String("user_id", owner.String()))

	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Task created successfully"),
		toPayload("task", created),
	)
}

func (s *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	found, err := s.TaskService.GetTask(r.Context(), owner, id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task", found))
}

func (s *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), owner, id, request.ToInput())
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Task updated successfully"),
		toPayload("task", updated),
	)
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), owner, id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP: Задача удалена",
		zap.String("task_id", id.String()),
		zap.String("user_id", owner.String()))

	responseWithJSON(w, http.StatusOK, toPayload("message", "Task deleted successfully"))
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: Хранилище недоступно", zap.Error(err))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "down"),
			toPayload("timestamp", time.Now().UTC()),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("timestamp", time.Now().UTC()),
	)
}

func ownerFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return identity.UserID, true
}

func taskIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))

		responseWithValidationError(w, "Invalid task id", map[string]any{"id": "must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// queryInt читает целое из диапазона [1, max]
func queryInt(w http.ResponseWriter, r *http.Request, name string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 || value > max {
		reason := "must be an integer between 1 and " + strconv.Itoa(max)
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", name),
			zap.String("value", raw),
			zap.String("client_ip", r.RemoteAddr))

		responseWithValidationError(w, "Invalid query parameter '"+name+"'", map[string]any{name: reason})
		return 0, false
	}
	return value, true
}
