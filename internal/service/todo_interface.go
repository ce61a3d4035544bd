package service

import (
	"context"

	"todoService/internal/models/todo"
)

type TodoRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *todo.Todo) error
	GetByID(context.Context, int64) (*todo.Todo, error)
	Find(context.Context, todo.Filter) ([]*todo.Todo, error)
	Update(context.Context, int64, todo.Patch) error
	Delete(context.Context, int64) error
}
