package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"todoService/internal/logger"
	"todoService/internal/models/todo"
	repo "todoService/internal/repository"
)

type TodoStorage struct {
	storage map[int64]*todo.Todo
	mtx     *sync.RWMutex
	lastID  int64
}

func NewTodoStorage() *TodoStorage {
	return &TodoStorage{
		storage: make(map[int64]*todo.Todo),
		mtx:     &sync.RWMutex{},
	}
}

func (s *TodoStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

// Create назначает следующий id под той же блокировкой, что и вставка,
// поэтому конкурентные вызовы не получают одинаковых id
func (s *TodoStorage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.lastID++
	todoToCreate.ID = s.lastID
	s.storage[todoToCreate.ID] = todoToCreate.Clone()
	return nil
}

func (s *TodoStorage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	todoToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return todoToGet.Clone(), nil
}

// поиск по подстроке без учёта регистра, новые задачи первыми
func (s *TodoStorage) Find(ctx context.Context, filter todo.Filter) ([]*todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	term := strings.ToLower(filter.SearchTerm)
	res := []*todo.Todo{}

	for _, t := range s.storage {
		if term != "" && !strings.Contains(strings.ToLower(t.Title), term) {
			continue
		}
		res = append(res, t.Clone())
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})

	return res, nil
}

func (s *TodoStorage) Update(ctx context.Context, id int64, patch todo.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	todoToUpdate, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}

	patch.Apply(todoToUpdate)
	return nil
}

// удаление без возможности восстановления
func (s *TodoStorage) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}
