package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultTokenTTL matches the 360000 second lifetime clients already expect.
const DefaultTokenTTL = 100 * time.Hour

// TokenManager issues and verifies HS256 JWTs for authenticated students.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token whose subject is principalID.
func (t *TokenManager) Issue(principalID string) (string, error) {
	if len(t.secret) == 0 {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Errorf("signing secret is empty")
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   principalID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").With("principal_id", principalID).Wrap(err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// principal ID carried in the subject claim.
func (t *TokenManager) Verify(tokenString string) (string, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		options = append(options, jwt.WithIssuer(t.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		// jwt only reports expiry once the signature has checked out.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", oops.Code("AUTH_TOKEN_EXPIRED").Wrap(ErrTokenExpired)
		}
		return "", oops.Code("AUTH_TOKEN_INVALID").With("reason", err.Error()).Wrap(ErrTokenInvalid)
	}
	if !token.Valid || claims.Subject == "" {
		return "", oops.Code("AUTH_TOKEN_INVALID").With("reason", "missing subject").Wrap(ErrTokenInvalid)
	}
	return claims.Subject, nil
}
