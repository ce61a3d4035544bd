package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoService/internal/logger"
	"todoService/internal/models/todo"
	rep "todoService/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type RepoType string

const (
	MongoType    RepoType = "mongo"
	PostgresType RepoType = "postgres"
	InMemoryType RepoType = "inmemory"
)

type TodoService struct {
	repo     TodoRepository
	RepoType RepoType
	now      func() time.Time
}

func NewTodoService(repo TodoRepository, repoType RepoType) TodoService {
	return TodoService{
		repo:     repo,
		RepoType: repoType,
		now:      defaultNow,
	}
}

// WithClock подменяет источник времени, нужен в тестах
func (s TodoService) WithClock(now func() time.Time) TodoService {
	s.now = now
	return s
}

// время храним в UTC с точностью до миллисекунд: столько сохраняет MongoDB
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *TodoService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса (%s): %w", s.RepoType, err)
	}
	return nil
}

func (s *TodoService) CreateTodo(ctx context.Context, title string, isCompleted bool) (*todo.Todo, error) {
	if title == "" {
		return nil, NewValidationError("title", "required")
	}

	now := s.now()
	newTodo := &todo.Todo{
		Title:       title,
		IsCompleted: isCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, newTodo); err != nil {
		if errors.Is(err, rep.ErrNotAcknowledged) {
			logger.Warn("Service: Запись не подтверждена базой", zap.Error(err))
			return nil, NewNotAcknowledged(err)
		}
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("todo_id", newTodo.ID))
	return newTodo, nil
}

func (s *TodoService) FindTodos(ctx context.Context, searchTerm string) ([]*todo.Todo, error) {
	filter := todo.Filter{SearchTerm: strings.TrimSpace(searchTerm)}

	todos, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("поиск задач: %w", err)
	}
	if todos == nil {
		todos = []*todo.Todo{}
	}
	return todos, nil
}

func (s *TodoService) GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(id, err)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return item, nil
}

func (s *TodoService) UpdateTodoTitle(ctx context.Context, id int64, title string) error {
	if title == "" {
		return NewValidationError("title", "required")
	}
	return s.update(ctx, id, todo.WithTitle(title))
}

// повторная отметка не ошибка: состояние остаётся тем же, меняется только updatedAt
func (s *TodoService) MarkTodoCompleted(ctx context.Context, id int64) error {
	return s.update(ctx, id, todo.WithCompleted())
}

func (s *TodoService) update(ctx context.Context, id int64, options ...todo.PatchOption) error {
	options = append(options, todo.WithUpdatedAt(s.now()))

	err := s.repo.Update(ctx, id, todo.NewPatch(options...))
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return NewNotFound(id, err)
		}
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return NewNotFound(id, err)
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}
