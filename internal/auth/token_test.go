package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/learning-be/internal/errutil"
)

func newTestTokens(secret string) *TokenManager {
	return NewTokenManager(secret, "learning-test", time.Hour)
}

func TestTokenManager_IssueThenVerify(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens("super-secret")

	tok, err := tokens.Issue("student-123")
	require.NoError(t, err)

	got, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "student-123", got)
}

func TestTokenManager_IssueSetsClaims(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokenManager("k", "learning-test", 0)
	tokens.now = func() time.Time { return issuedAt }

	tok, err := tokens.Issue("p1")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.Subject)
	assert.Equal(t, "learning-test", claims.Issuer)
	assert.True(t, issuedAt.Equal(claims.IssuedAt.Time))
	assert.True(t, issuedAt.Add(DefaultTokenTTL).Equal(claims.ExpiresAt.Time))
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens("secret")
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := tokens.Issue("u1")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
	errutil.AssertErrorCode(t, err, "AUTH_TOKEN_EXPIRED")
}

func TestTokenManager_AlteredSignature(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens("secret")
	tok, err := tokens.Issue("u1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	// The first character carries the high bits of the first signature byte.
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = tokens.Verify(tampered)
	require.ErrorIs(t, err, ErrTokenInvalid)
	errutil.AssertErrorCode(t, err, "AUTH_TOKEN_INVALID")
}

func TestTokenManager_AlteredSignatureOnExpiredToken(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens("secret")
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := tokens.Issue("u1")
	require.NoError(t, err)
	tokens.now = time.Now

	_, err = tokens.Verify(tok + "x")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestTokens("right-secret").Issue("u2")
	require.NoError(t, err)

	_, err = newTestTokens("wrong-secret").Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("k", "other-service", time.Hour).Issue("u3")
	require.NoError(t, err)

	_, err = newTestTokens("k").Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{
		Issuer:    "learning-test",
		Subject:   "u4",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = newTestTokens("k").Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsMissingSubject(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens("k")
	tok, err := tokens.Issue("")
	require.NoError(t, err)

	_, err = tokens.Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_Malformed(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := newTestTokens("k").Verify(input)
		require.ErrorIs(t, err, ErrTokenInvalid, "input %q", input)
	}
}

func TestTokenManager_IssueWithoutSecret(t *testing.T) {
	t.Parallel()

	_, err := newTestTokens("").Issue("u5")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_TOKEN_SIGN_FAILED")
}
