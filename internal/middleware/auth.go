package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/learning-be/internal/auth"
	"github.com/hongminglow/learning-be/internal/http/respond"
	"github.com/hongminglow/learning-be/internal/metrics"
)

// LegacyTokenHeader is accepted when no Authorization header is sent.
const LegacyTokenHeader = "x-auth-token"

// TokenVerifier validates a raw token and returns the principal ID it names.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type (
	principalKey     struct{}
	principalSlotKey struct{}
)

// PrincipalID returns the authenticated principal stored by RequireAuth.
func PrincipalID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}

// WithPrincipalID stores id as the authenticated principal. The request
// logger, when present, picks the ID up for its completion line.
func WithPrincipalID(ctx context.Context, id string) context.Context {
	if slot, ok := ctx.Value(principalSlotKey{}).(*principalSlot); ok {
		slot.id = id
	}
	return context.WithValue(ctx, principalKey{}, id)
}

func withPrincipalSlot(ctx context.Context, slot *principalSlot) context.Context {
	return context.WithValue(ctx, principalSlotKey{}, slot)
}

// RequireAuth rejects requests without a valid token with 401 and otherwise
// runs next with the principal ID in the request context. Rejections never
// say why the token was refused.
func RequireAuth(verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractToken(r)
			if !ok {
				m.RecordVerification(metrics.VerifyMissing)
				respond.Message(w, http.StatusUnauthorized, respond.MsgUnauthorized)
				return
			}

			principalID, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					m.RecordVerification(metrics.VerifyExpired)
				} else {
					m.RecordVerification(metrics.VerifyInvalid)
				}
				respond.Message(w, http.StatusUnauthorized, respond.MsgUnauthorized)
				return
			}

			m.RecordVerification(metrics.VerifyAuthorized)
			next.ServeHTTP(w, r.WithContext(WithPrincipalID(r.Context(), principalID)))
		})
	}
}

func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		return bearerToken(header)
	}
	token := strings.TrimSpace(r.Header.Get(LegacyTokenHeader))
	return token, token != ""
}

func bearerToken(value string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
