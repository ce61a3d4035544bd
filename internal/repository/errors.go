package repository

import "errors"

var (
	ErrNotFound        = errors.New("todo not found")
	ErrNotAcknowledged = errors.New("write not acknowledged")
	ErrDuplicateID     = errors.New("duplicate todo id")
)
