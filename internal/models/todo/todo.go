package todo

import (
	"time"
)

// Todo - единственная сущность сервиса.
// ID назначается хранилищем при создании, внутренний _id базы наружу не отдаётся.
type Todo struct {
	ID          int64     `bson:"id" db:"id"`
	Title       string    `bson:"title" db:"title"`
	IsCompleted bool      `bson:"isCompleted" db:"is_completed"`
	CreatedAt   time.Time `bson:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `bson:"updatedAt" db:"updated_at"`
}

// Filter описывает выборку для поиска. Пустой SearchTerm означает все задачи.
type Filter struct {
	SearchTerm string
}

// Clone возвращает независимую копию, чтобы хранилища не отдавали наружу свои указатели
func (t *Todo) Clone() *Todo {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
