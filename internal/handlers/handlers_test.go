package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todoService/internal/handlers"
	"todoService/internal/models/todo"
	"todoService/internal/repository"
	"todoService/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTodoService - мок сервиса
type MockTodoService struct {
	mock.Mock
}

func (m *MockTodoService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTodoService) CreateTodo(ctx context.Context, title string, isCompleted bool) (*todo.Todo, error) {
	args := m.Called(ctx, title, isCompleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*todo.Todo), args.Error(1)
}

func (m *MockTodoService) FindTodos(ctx context.Context, searchTerm string) ([]*todo.Todo, error) {
	args := m.Called(ctx, searchTerm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*todo.Todo), args.Error(1)
}

func (m *MockTodoService) GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*todo.Todo), args.Error(1)
}

func (m *MockTodoService) UpdateTodoTitle(ctx context.Context, id int64, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockTodoService) MarkTodoCompleted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTodoService) DeleteTodo(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ handlers.Service = (*MockTodoService)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

var createdAt = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

// TestTodoHandler_HealthCheck тестирует HealthCheck
func TestTodoHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTodoService)
		expectedStatus int
		expectSuccess  bool
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockTodoService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectSuccess:  true,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockTodoService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("service unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTodoService)
			tt.setupMock(mockService)

			handler := handlers.NewTodoHandler(mockService, "inmemory")

			req := httptest.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()

			handler.HealthCheck(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectSuccess, env.Success)
			assert.Contains(t, w.Body.String(), "todo-service")

			mockService.AssertExpectations(t)
		})
	}
}

// TestTodoHandler_CreateTodo тестирует создание задачи
func TestTodoHandler_CreateTodo(t *testing.T) {
	tests := []struct {
		name            string
		requestBody     string
		contentType     string
		setupMock       func(*MockTodoService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:        "success - create todo",
			requestBody: `{"title": "Buy milk"}`,
			contentType: "application/json",
			setupMock: func(m *MockTodoService) {
				m.On("CreateTodo", mock.Anything, "Buy milk", false).
					Return(&todo.Todo{ID: 1, Title: "Buy milk", CreatedAt: createdAt, UpdatedAt: createdAt}, nil)
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Todo created successfully",
		},
		{
			name:        "success - completed flag and charset",
			requestBody: `{"title": "Done already", "isCompleted": true}`,
			contentType: "application/json; charset=utf-8",
			setupMock: func(m *MockTodoService) {
				m.On("CreateTodo", mock.Anything, "Done already", true).
					Return(&todo.Todo{ID: 2, Title: "Done already", IsCompleted: true}, nil)
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Todo created successfully",
		},
		{
			name:            "error - invalid content type",
			requestBody:     `{"title": "Buy milk"}`,
			contentType:     "text/plain",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Content-Type must be application/json",
		},
		{
			name:            "error - invalid JSON",
			requestBody:     `{invalid json}`,
			contentType:     "application/json",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid request body",
		},
		{
			name:            "error - missing title",
			requestBody:     `{"isCompleted": false}`,
			contentType:     "application/json",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Title is required",
		},
		{
			name:        "error - not acknowledged",
			requestBody: `{"title": "Buy milk"}`,
			contentType: "application/json",
			setupMock: func(m *MockTodoService) {
				m.On("CreateTodo", mock.Anything, "Buy milk", false).
					Return(nil, service.NewNotAcknowledged(repository.ErrNotAcknowledged))
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Could not create todo",
		},
		{
			name:        "error - service error",
			requestBody: `{"title": "Buy milk"}`,
			contentType: "application/json",
			setupMock: func(m *MockTodoService) {
				m.On("CreateTodo", mock.Anything, "Buy milk", false).
					Return(nil, errors.New("secret connection string leaked"))
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTodoService)
			tt.setupMock(mockService)

			handler := handlers.NewTodoHandler(mockService, "inmemory")

			req := httptest.NewRequest("POST", "/todos", strings.NewReader(tt.requestBody))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			handler.CreateTodo(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedMessage, env.Message)
			assert.Equal(t, tt.expectedStatus == http.StatusCreated, env.Success)
			assert.NotContains(t, w.Body.String(), "secret")

			mockService.AssertExpectations(t)
		})
	}
}

// TestTodoHandler_CreateTodo_ResponseShape проверяет поля созданной задачи
func TestTodoHandler_CreateTodo_ResponseShape(t *testing.T) {
	mockService := new(MockTodoService)
	mockService.On("CreateTodo", mock.Anything, "Buy milk", false).
		Return(&todo.Todo{ID: 1, Title: "Buy milk", CreatedAt: createdAt, UpdatedAt: createdAt}, nil)

	handler := handlers.NewTodoHandler(mockService, "inmemory")
	req := httptest.NewRequest("POST", "/todos", strings.NewReader(`{"title":"Buy milk"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.CreateTodo(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "Buy milk", data["title"])
	assert.Equal(t, false, data["isCompleted"])
	assert.Equal(t, "2024-03-10T09:30:00Z", data["createdAt"])
	assert.Equal(t, data["createdAt"], data["updatedAt"])
}

// TestTodoHandler_FindTodos тестирует поиск
func TestTodoHandler_FindTodos(t *testing.T) {
	t.Run("success - with search term", func(t *testing.T) {
		mockService := new(MockTodoService)
		mockService.On("FindTodos", mock.Anything, "milk").
			Return([]*todo.Todo{{ID: 1, Title: "Buy Milk"}}, nil)

		handler := handlers.NewTodoHandler(mockService, "inmemory")
		req := httptest.NewRequest("GET", "/find?searchTerm=milk", nil)
		w := httptest.NewRecorder()

		handler.FindTodos(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "Todos fetched successfully", env.Message)

		var data []map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Len(t, data, 1)
		assert.Equal(t, "Buy Milk", data[0]["title"])
		mockService.AssertExpectations(t)
	})

	t.Run("success - empty result is an array", func(t *testing.T) {
		mockService := new(MockTodoService)
		mockService.On("FindTodos", mock.Anything, "").Return([]*todo.Todo{}, nil)

		handler := handlers.NewTodoHandler(mockService, "inmemory")
		req := httptest.NewRequest("GET", "/find", nil)
		w := httptest.NewRecorder()

		handler.FindTodos(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.JSONEq(t, `[]`, string(env.Data))
	})

	t.Run("error - service error", func(t *testing.T) {
		mockService := new(MockTodoService)
		mockService.On("FindTodos", mock.Anything, "").Return(nil, errors.New("db down"))

		handler := handlers.NewTodoHandler(mockService, "inmemory")
		req := httptest.NewRequest("GET", "/find", nil)
		w := httptest.NewRecorder()

		handler.FindTodos(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "Something went wrong", env.Message)
		assert.JSONEq(t, `null`, string(env.Error))
	})
}

// TestTodoHandler_GetTodoByID тестирует получение задачи
func TestTodoHandler_GetTodoByID(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		setupMock       func(*MockTodoService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:  "success",
			query: "id=1",
			setupMock: func(m *MockTodoService) {
				m.On("GetTodoByID", mock.Anything, int64(1)).Return(&todo.Todo{ID: 1, Title: "Buy milk"}, nil)
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Todo fetched successfully",
		},
		{
			name:            "error - unparseable id",
			query:           "id=abc",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid or missing ID",
		},
		{
			name:            "error - trailing garbage",
			query:           "id=12abc",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid or missing ID",
		},
		{
			name:            "error - missing id",
			query:           "",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid or missing ID",
		},
		{
			name:  "error - not found",
			query: "id=9999",
			setupMock: func(m *MockTodoService) {
				m.On("GetTodoByID", mock.Anything, int64(9999)).
					Return(nil, service.NewNotFound(9999, repository.ErrNotFound))
			},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Todo not found",
		},
		{
			name:  "error - service error",
			query: "id=1",
			setupMock: func(m *MockTodoService) {
				m.On("GetTodoByID", mock.Anything, int64(1)).Return(nil, errors.New("db down"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTodoService)
			tt.setupMock(mockService)

			handler := handlers.NewTodoHandler(mockService, "inmemory")
			req := httptest.NewRequest("GET", "/todo?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.GetTodoByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedMessage, env.Message)
			mockService.AssertExpectations(t)
		})
	}
}

// TestTodoHandler_UpdateTodoTitle тестирует обновление названия
func TestTodoHandler_UpdateTodoTitle(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		requestBody     string
		contentType     string
		setupMock       func(*MockTodoService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:        "success",
			query:       "id=3",
			requestBody: `{"title": "New title"}`,
			contentType: "application/json",
			setupMock: func(m *MockTodoService) {
				m.On("UpdateTodoTitle", mock.Anything, int64(3), "New title").Return(nil)
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Todo updated successfully",
		},
		{
			name:            "error - invalid id",
			query:           "id=x",
			requestBody:     `{"title": "New title"}`,
			contentType:     "application/json",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid ID or missing title",
		},
		{
			name:            "error - missing title",
			query:           "id=3",
			requestBody:     `{}`,
			contentType:     "application/json",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid ID or missing title",
		},
		{
			name:            "error - body is not JSON",
			query:           "id=3",
			requestBody:     `title=New`,
			contentType:     "application/x-www-form-urlencoded",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid ID or missing title",
		},
		{
			name:        "error - not found",
			query:       "id=3",
			requestBody: `{"title": "New title"}`,
			contentType: "application/json",
			setupMock: func(m *MockTodoService) {
				m.On("UpdateTodoTitle", mock.Anything, int64(3), "New title").
					Return(service.NewNotFound(3, repository.ErrNotFound))
			},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Todo not found",
		},
		{
			name:        "error - service error",
			query:       "id=3",
			requestBody: `{"title": "New title"}`,
			contentType: "application/json",
			setupMock: func(m *MockTodoService) {
				m.On("UpdateTodoTitle", mock.Anything, int64(3), "New title").Return(errors.New("db down"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTodoService)
			tt.setupMock(mockService)

			handler := handlers.NewTodoHandler(mockService, "inmemory")
			req := httptest.NewRequest("PATCH", "/todo?"+tt.query, strings.NewReader(tt.requestBody))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			handler.UpdateTodoTitle(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedMessage, env.Message)
			if tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `null`, string(env.Data))
			}
			mockService.AssertExpectations(t)
		})
	}
}

// TestTodoHandler_MarkTodoCompleted тестирует отметку о выполнении
func TestTodoHandler_MarkTodoCompleted(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		setupMock       func(*MockTodoService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:  "success",
			query: "id=2",
			setupMock: func(m *MockTodoService) {
				m.On("MarkTodoCompleted", mock.Anything, int64(2)).Return(nil)
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Todo marked as completed",
		},
		{
			name:            "error - invalid id",
			query:           "id=1.5",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid or missing ID",
		},
		{
			name:  "error - not found",
			query: "id=2",
			setupMock: func(m *MockTodoService) {
				m.On("MarkTodoCompleted", mock.Anything, int64(2)).
					Return(service.NewNotFound(2, repository.ErrNotFound))
			},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Todo not found",
		},
		{
			name:  "error - service error",
			query: "id=2",
			setupMock: func(m *MockTodoService) {
				m.On("MarkTodoCompleted", mock.Anything, int64(2)).Return(errors.New("db down"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTodoService)
			tt.setupMock(mockService)

			handler := handlers.NewTodoHandler(mockService, "inmemory")
			req := httptest.NewRequest("PATCH", "/mark-completed?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.MarkTodoCompleted(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedMessage, env.Message)
			mockService.AssertExpectations(t)
		})
	}
}

// TestTodoHandler_DeleteTodo тестирует удаление
func TestTodoHandler_DeleteTodo(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		setupMock       func(*MockTodoService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:  "success",
			query: "id=4",
			setupMock: func(m *MockTodoService) {
				m.On("DeleteTodo", mock.Anything, int64(4)).Return(nil)
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Todo deleted successfully",
		},
		{
			name:            "error - invalid id",
			query:           "id=",
			setupMock:       func(m *MockTodoService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid or missing ID",
		},
		{
			name:  "error - not found",
			query: "id=4",
			setupMock: func(m *MockTodoService) {
				m.On("DeleteTodo", mock.Anything, int64(4)).
					Return(service.NewNotFound(4, repository.ErrNotFound))
			},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Todo not found",
		},
		{
			name:  "error - service error",
			query: "id=4",
			setupMock: func(m *MockTodoService) {
				m.On("DeleteTodo", mock.Anything, int64(4)).Return(errors.New("db down"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTodoService)
			tt.setupMock(mockService)

			handler := handlers.NewTodoHandler(mockService, "inmemory")
			req := httptest.NewRequest("DELETE", "/todo?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.DeleteTodo(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedMessage, env.Message)
			mockService.AssertExpectations(t)
		})
	}
}

// TestTodoHandler_ErrorBody проверяет, что клиент видит только код ошибки и детали
func TestTodoHandler_ErrorBody(t *testing.T) {
	mockService := new(MockTodoService)
	mockService.On("GetTodoByID", mock.Anything, int64(9999)).
		Return(nil, service.NewNotFound(9999, repository.ErrNotFound))

	handler := handlers.NewTodoHandler(mockService, "inmemory")
	req := httptest.NewRequest("GET", "/todo?id=9999", nil)
	w := httptest.NewRecorder()

	handler.GetTodoByID(w, req)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)

	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Error, &body))
	assert.Equal(t, "NOT_FOUND", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(9999), details["id"])
}
