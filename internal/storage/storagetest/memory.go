// Package storagetest provides an in-memory StudentStore for tests.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/learning-be/internal/models"
	"github.com/hongminglow/learning-be/internal/storage"
)

var _ storage.Backend = (*MemoryStore)(nil)

// MemoryStore keeps students in maps keyed by ID and email.
// Setting Err makes every call fail with it.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]models.Student
	byEmail map[string]string
	Err     error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]models.Student),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryStore) CreateStudent(_ context.Context, student models.Student) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Student{}, m.Err
	}
	if _, ok := m.byEmail[student.Email]; ok {
		return models.Student{}, storage.ErrAlreadyExists
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	m.byID[student.ID] = student
	m.byEmail[student.Email] = student.ID
	return student, nil
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Student{}, m.Err
	}
	id, ok := m.byEmail[email]
	if !ok {
		return models.Student{}, storage.ErrNotFound
	}
	return m.byID[id], nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Student{}, m.Err
	}
	student, ok := m.byID[id]
	if !ok {
		return models.Student{}, storage.ErrNotFound
	}
	return student, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

func (m *MemoryStore) Close(context.Context) error { return nil }

// Delete removes a student, standing in for an administrative delete.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byID[id]; ok {
		delete(m.byEmail, s.Email)
		delete(m.byID, id)
	}
}

// Len reports how many students are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
