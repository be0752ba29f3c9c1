package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/learning-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// StudentStore captures the persistence operations the auth core needs.
type StudentStore interface {
	CreateStudent(ctx context.Context, student models.Student) (models.Student, error)
	FindByEmail(ctx context.Context, email string) (models.Student, error)
	FindByID(ctx context.Context, id string) (models.Student, error)
}

// Backend is a StudentStore with a connection lifecycle.
type Backend interface {
	StudentStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
