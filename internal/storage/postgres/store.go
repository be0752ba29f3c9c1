package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/hongminglow/learning-be/internal/models"
	"github.com/hongminglow/learning-be/internal/storage"
)

// Ensure Store satisfies the storage.Backend interface at compile time.
var _ storage.Backend = (*Store)(nil)

// pool is the subset of pgxpool.Pool used by Store; pgxmock satisfies it in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store provides Postgres-backed persistence for students.
type Store struct {
	pool pool
}

// NewStudentStore connects to the database at databaseURL.
// Schema changes are applied separately through Migrator.
func NewStudentStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{pool: p}, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(p pool) *Store {
	return &Store{pool: p}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.With("operation", "ping postgres").Wrap(err)
	}
	return nil
}

// Close releases database resources.
func (s *Store) Close(context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// CreateStudent inserts a new student row. The caller assigns the ID.
func (s *Store) CreateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	const query = `
		INSERT INTO students (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at;
	`
	row := s.pool.QueryRow(ctx, query, student.ID, student.Name, student.Email, student.PasswordHash)
	if err := row.Scan(&student.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.Student{}, oops.With("email", student.Email).Wrap(storage.ErrAlreadyExists)
		}
		return models.Student{}, oops.
			With("operation", "insert student").
			With("email", student.Email).
			Wrap(err)
	}
	return student, nil
}

// FindByEmail fetches a student by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.Student, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at
		FROM students
		WHERE email = $1;
	`
	student, err := scanStudent(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		return models.Student{}, oops.With("operation", "find student by email").With("email", email).Wrap(err)
	}
	return student, nil
}

// FindByID fetches a student by primary key.
func (s *Store) FindByID(ctx context.Context, id string) (models.Student, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at
		FROM students
		WHERE id = $1;
	`
	student, err := scanStudent(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.Student{}, oops.With("operation", "find student by id").With("id", id).Wrap(err)
	}
	return student, nil
}

func scanStudent(row pgx.Row) (models.Student, error) {
	var student models.Student
	if err := row.Scan(&student.ID, &student.Name, &student.Email, &student.PasswordHash, &student.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Student{}, storage.ErrNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}
