package handlers

import (
	"context"

	"todoService/internal/models/todo"
)

type Service interface {
	HealthCheck(context.Context) error
	CreateTodo(context.Context, string, bool) (*todo.Todo, error)
	FindTodos(context.Context, string) ([]*todo.Todo, error)
	GetTodoByID(context.Context, int64) (*todo.Todo, error)
	UpdateTodoTitle(context.Context, int64, string) error
	MarkTodoCompleted(context.Context, int64) error
	DeleteTodo(context.Context, int64) error
}
