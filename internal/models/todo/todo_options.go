package todo

import (
	"time"
)

// Patch - частичное обновление задачи. nil поля не трогаются.
type Patch struct {
	Title       *string
	IsCompleted *bool
	UpdatedAt   time.Time
}

type PatchOption func(*Patch)

func WithTitle(title string) PatchOption {
	return func(p *Patch) {
		p.Title = &title
	}
}

func WithCompleted() PatchOption {
	return func(p *Patch) {
		completed := true
		p.IsCompleted = &completed
	}
}

func WithUpdatedAt(updatedAt time.Time) PatchOption {
	return func(p *Patch) {
		p.UpdatedAt = updatedAt
	}
}

func NewPatch(options ...PatchOption) Patch {
	p := Patch{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&p)
	}
	return p
}

// Apply переносит изменения на задачу, используется in-memory хранилищем
func (p Patch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if !p.UpdatedAt.IsZero() {
		t.UpdatedAt = p.UpdatedAt
	}
}
