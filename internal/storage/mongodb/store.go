// Package mongodb persists students in a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/hongminglow/learning-be/internal/models"
	"github.com/hongminglow/learning-be/internal/storage"
)

// DefaultDatabase is used when the connection string names no database.
const DefaultDatabase = "onlineLearning"

const collectionName = "students"

var _ storage.Backend = (*Store)(nil)

// studentDocument is the stored shape of a student.
type studentDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d studentDocument) model() models.Student {
	return models.Student{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// Store provides MongoDB-backed persistence for students.
type Store struct {
	coll *mongo.Collection
}

// NewStudentStore connects to uri and ensures the unique email index.
func NewStudentStore(ctx context.Context, uri string) (*Store, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongo uri: %w", err)
	}
	database := cs.Database
	if database == "" {
		database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	s := NewWithCollection(client.Database(database).Collection(collectionName))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewWithCollection wraps an existing collection.
func NewWithCollection(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// EnsureIndexes creates the unique index on email.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("students_email_unique"),
	})
	if err != nil {
		return oops.With("operation", "create email index").Wrap(err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return oops.With("operation", "ping mongo").Wrap(err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}

// CreateStudent inserts a new student document. The caller assigns the ID.
func (s *Store) CreateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	if student.CreatedAt.IsZero() {
		// BSON dates carry millisecond precision.
		student.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	doc := studentDocument{
		ID:           student.ID,
		Name:         student.Name,
		Email:        student.Email,
		PasswordHash: student.PasswordHash,
		CreatedAt:    student.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
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
	student, err := s.findOne(ctx, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return models.Student{}, oops.With("operation", "find student by email").With("email", email).Wrap(err)
	}
	return student, nil
}

// FindByID fetches a student by _id.
func (s *Store) FindByID(ctx context.Context, id string) (models.Student, error) {
	student, err := s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return models.Student{}, oops.With("operation", "find student by id").With("id", id).Wrap(err)
	}
	return student, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.D) (models.Student, error) {
	var doc studentDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Student{}, storage.ErrNotFound
		}
		return models.Student{}, err
	}
	return doc.model(), nil
}
