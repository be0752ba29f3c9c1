// Package auth implements student registration, login and token handling.
package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/hongminglow/learning-be/internal/models"
	"github.com/hongminglow/learning-be/internal/storage"
)

// Service registers and authenticates students against a credential store.
type Service struct {
	store  storage.StudentStore
	hasher PasswordHasher
	newID  func() string
}

// NewService creates a Service.
func NewService(store storage.StudentStore, hasher PasswordHasher) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		newID:  func() string { return ulid.Make().String() },
	}
}

// Register creates a student with a hashed password. The email must already
// be normalized by the caller.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.Student, error) {
	_, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return models.Student{}, oops.Code("AUTH_DUPLICATE_EMAIL").With("email", email).Wrap(ErrDuplicateEmail)
	case !errors.Is(err, storage.ErrNotFound):
		return models.Student{}, storeUnavailable("find student by email", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return models.Student{}, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	created, err := s.store.CreateStudent(ctx, models.Student{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.Student{}, oops.Code("AUTH_DUPLICATE_EMAIL").With("email", email).Wrap(ErrDuplicateEmail)
		}
		return models.Student{}, storeUnavailable("create student", err)
	}
	return created, nil
}

// Authenticate returns the student whose email and password match.
// Unknown email and wrong password yield the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.Student, error) {
	student, lookupErr := s.store.FindByEmail(ctx, email)
	exists := lookupErr == nil
	if lookupErr != nil && !errors.Is(lookupErr, storage.ErrNotFound) {
		return models.Student{}, storeUnavailable("find student by email", lookupErr)
	}

	target := student.PasswordHash
	if !exists {
		target = s.hasher.DummyHash()
	}

	// Always compare so unknown emails cost the same as known ones.
	ok, err := s.hasher.Compare(ctx, target, password)
	if err != nil {
		if !exists {
			return models.Student{}, invalidCredentials()
		}
		return models.Student{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "compare password").
			With("student_id", student.ID).
			Wrap(err)
	}
	if !exists || !ok {
		return models.Student{}, invalidCredentials()
	}
	return student, nil
}

// Profile returns the student for an already verified principal ID.
func (s *Service) Profile(ctx context.Context, principalID string) (models.Student, error) {
	student, err := s.store.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Student{}, oops.Code("AUTH_STUDENT_NOT_FOUND").With("id", principalID).Wrap(ErrNotFound)
		}
		return models.Student{}, storeUnavailable("find student by id", err)
	}
	return student, nil
}

func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
}

// storeUnavailable wraps err so it matches both ErrStoreUnavailable and the cause.
func storeUnavailable(operation string, err error) error {
	return oops.Code("AUTH_STORE_UNAVAILABLE").
		With("operation", operation).
		Wrap(errors.Join(ErrStoreUnavailable, err))
}
