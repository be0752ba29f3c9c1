package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_MetricsEndpoint(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)

	_, err := server.Start()
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	}()
	require.NotEmpty(t, server.Addr())

	server.Metrics().RecordAuth("register", OutcomeSuccess)

	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, "# HELP")
	assert.Contains(t, out, "go_")
	assert.Contains(t, out, "learning_auth_attempts_total")
}

func TestServer_StartTwice(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)
	_, err := server.Start()
	require.NoError(t, err)
	defer func() { _ = server.Stop(context.Background()) }()

	_, err = server.Start()
	assert.Error(t, err)
}

func TestServer_StopWhenNotRunning(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)
	assert.NoError(t, server.Stop(context.Background()))
	assert.Equal(t, "", server.Addr())
}

func TestServer_Liveness(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/liveness", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestServer_Readiness(t *testing.T) {
	tests := []struct {
		name      string
		readiness ReadinessChecker
		wantCode  int
		wantBody  string
	}{
		{name: "no checker", readiness: nil, wantCode: http.StatusOK, wantBody: "ok\n"},
		{
			name:      "store reachable",
			readiness: func(context.Context) error { return nil },
			wantCode:  http.StatusOK,
			wantBody:  "ok\n",
		},
		{
			name:      "store down",
			readiness: func(context.Context) error { return errors.New("connection refused") },
			wantCode:  http.StatusServiceUnavailable,
			wantBody:  "not ready\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer("127.0.0.1:0", tt.readiness, nil)
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/readiness", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}
