package auth

import (
	"context"
	"crypto/rand"
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	// Hash returns a salted one-way hash of password.
	Hash(ctx context.Context, password string) (string, error)

	// Compare reports whether password matches hash. A mismatch is (false, nil).
	Compare(ctx context.Context, hash, password string) (bool, error)

	// DummyHash returns a valid hash that matches no real password. It lets
	// callers spend the same time on unknown accounts as on known ones.
	DummyHash() string
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost  int
	dummy string
}

// NewBcryptHasher creates a hasher with the given cost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, oops.Code("AUTH_INVALID_BCRYPT_COST").
			With("cost", cost).
			Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	// bcrypt only reads the first 72 bytes; a random 32 byte secret is never guessable.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, oops.Code("AUTH_DUMMY_HASH_FAILED").Wrap(err)
	}
	dummy, err := bcrypt.GenerateFromPassword(secret, cost)
	if err != nil {
		return nil, oops.Code("AUTH_DUMMY_HASH_FAILED").Wrap(err)
	}

	return &BcryptHasher{cost: cost, dummy: string(dummy)}, nil
}

// Hash produces a bcrypt hash of password.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	hash, err := run(ctx, func() (string, error) {
		b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
		return string(b), err
	})
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return hash, nil
}

// Compare checks password against hash in constant time.
func (h *BcryptHasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	return run(ctx, func() (bool, error) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
		}
	})
}

// DummyHash returns the hash generated at construction.
func (h *BcryptHasher) DummyHash() string {
	return h.dummy
}
