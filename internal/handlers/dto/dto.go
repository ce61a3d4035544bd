package dto

import (
	"time"

	"todoService/internal/models/todo"
)

type CreateTodoRequest struct {
	Title       string `json:"title"`
	IsCompleted *bool  `json:"isCompleted,omitempty"`
}

type UpdateTodoRequest struct {
	Title string `json:"title"`
}

type TodoResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type HealthResponse struct {
	Service    string `json:"service"`
	Repository string `json:"repository"`
}

func FromTodo(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTodoList(todos []*todo.Todo) []TodoResponse {
	result := make([]TodoResponse, len(todos))
	for i, t := range todos {
		result[i] = FromTodo(t)
	}
	return result
}
