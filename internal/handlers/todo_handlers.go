package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"todoService/internal/handlers/dto"
	"todoService/internal/logger"
	"todoService/internal/middleware"
	"todoService/internal/service"

	"go.uber.org/zap"
)

// лимит тела запроса: 100 KiB
const maxBodyBytes = 100 << 10

const (
	messageInvalidID        = "Invalid or missing ID"
	messageInvalidIDOrTitle = "Invalid ID or missing title"
	messageTitleRequired    = "Title is required"
)

type TodoHandler struct {
	TodoService Service
	Repository  string
}

func NewTodoHandler(todoService Service, repository string) *TodoHandler {
	return &TodoHandler{
		TodoService: todoService,
		Repository:  repository,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// POST /todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("request_id", middleware.GetRequestID(r.Context())))

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Content-Type must be application/json", nil)
		return
	}

	var request dto.CreateTodoRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if request.Title == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		handleBusinessError(w, service.NewValidationError("title", "required"), messageTitleRequired)
		return
	}

	isCompleted := request.IsCompleted != nil && *request.IsCompleted

	created, err := h.TodoService.CreateTodo(r.Context(), request.Title, isCompleted)
	if err != nil {
		// создание исторически отвечает 400 на любые сбои
		handleServiceError(w, err, http.StatusBadRequest, "create_todo")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("todo_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithSuccess(w, http.StatusCreated, "Todo created successfully", dto.FromTodo(created))
}

// GET /find?searchTerm=
func (h *TodoHandler) FindTodos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("request_id", middleware.GetRequestID(r.Context())))

	todos, err := h.TodoService.FindTodos(r.Context(), r.URL.Query().Get("searchTerm"))
	if err != nil {
		handleServiceError(w, err, http.StatusInternalServerError, "find_todos")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(todos)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithSuccess(w, http.StatusOK, "Todos fetched successfully", dto.FromTodoList(todos))
}

// GET /todo?id=
func (h *TodoHandler) GetTodoByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("request_id", middleware.GetRequestID(r.Context())))

	id, err := parseID(r)
	if err != nil {
		h.invalidID(w, r, err, messageInvalidID)
		return
	}

	item, err := h.TodoService.GetTodoByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, http.StatusInternalServerError, "get_todo")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.Int64("todo_id", item.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithSuccess(w, http.StatusOK, "Todo fetched successfully", dto.FromTodo(item))
}

// PATCH /todo?id= {title}
func (h *TodoHandler) UpdateTodoTitle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("request_id", middleware.GetRequestID(r.Context())))

	id, err := parseID(r)
	if err != nil {
		h.invalidID(w, r, err, messageInvalidIDOrTitle)
		return
	}

	var request dto.UpdateTodoRequest
	if checkContentType(r, "application/json") {
		if err := decodeJSON(w, r, &request); err != nil {
			logger.Warn("HTTP: ошибка чтения JSON",
				zap.Error(err),
				zap.String("client_ip", r.RemoteAddr))
			request.Title = ""
		}
	}

	if request.Title == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		handleBusinessError(w, service.NewValidationError("title", "required"), messageInvalidIDOrTitle)
		return
	}

	err = h.TodoService.UpdateTodoTitle(r.Context(), id, request.Title)
	if err != nil {
		handleServiceError(w, err, http.StatusInternalServerError, "update_todo")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithSuccess(w, http.StatusOK, "Todo updated successfully", nil)
}

// PATCH /mark-completed?id=
func (h *TodoHandler) MarkTodoCompleted(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("request_id", middleware.GetRequestID(r.Context())))

	id, err := parseID(r)
	if err != nil {
		h.invalidID(w, r, err, messageInvalidID)
		return
	}

	err = h.TodoService.MarkTodoCompleted(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, http.StatusInternalServerError, "mark_completed")
		return
	}

	logger.Info("HTTP_OUT: Задача выполнена",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithSuccess(w, http.StatusOK, "Todo marked as completed", nil)
}

// DELETE /todo?id=
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("request_id", middleware.GetRequestID(r.Context())))

	id, err := parseID(r)
	if err != nil {
		h.invalidID(w, r, err, messageInvalidID)
		return
	}

	err = h.TodoService.DeleteTodo(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, http.StatusInternalServerError, "delete_todo")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithSuccess(w, http.StatusOK, "Todo deleted successfully", nil)
}

// GET /health
func (h *TodoHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	health := dto.HealthResponse{
		Service:    "todo-service",
		Repository: h.Repository,
	}

	if err := h.TodoService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис недоступен", err)
		responseWithError(w, http.StatusServiceUnavailable, "Service is unhealthy", health)
		return
	}

	responseWithSuccess(w, http.StatusOK, "Service is healthy", health)
}

func (h *TodoHandler) invalidID(w http.ResponseWriter, r *http.Request, err error, message string) {
	logger.Warn("HTTP: Не удалось получить id",
		zap.Error(err),
		zap.String("query", r.URL.RawQuery),
		zap.String("client_ip", r.RemoteAddr))

	handleBusinessError(w, service.NewValidationError("id", "must be an integer"), message)
}
