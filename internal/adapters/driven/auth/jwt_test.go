package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logship/logsh/internal/core/domain"
)

type failingSecret struct{}

func (failingSecret) Fetch(_ context.Context) (string, error) {
	return "", errors.New("no terminal")
}

func TestJWTExchanger_FetchToken(t *testing.T) {
	var got tokenRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/token", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]string{"token": "abc123"})
	}))
	defer server.Close()

	exchanger := NewJWTExchanger(server.Client()).WithClock(fixedClock)
	jwt, err := exchanger.FetchToken(context.Background(), server.URL+"/", "alice", StaticCredential("hunter2"))

	require.NoError(t, err)
	assert.Equal(t, "abc123", jwt.Token)
	require.NotNil(t, jwt.Expires)
	assert.Equal(t, testNow.Add(24*time.Hour), *jwt.Expires)
	assert.Equal(t, tokenRequest{Username: "alice", Password: "hunter2"}, got)
}

func TestJWTExchanger_ServerExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": "t", "expires": "2024-03-01T13:00:00Z"})
	}))
	defer server.Close()

	jwt, err := NewJWTExchanger(server.Client()).WithClock(fixedClock).
		FetchToken(context.Background(), server.URL, "alice", StaticCredential("pw"))

	require.NoError(t, err)
	assert.True(t, jwt.Expires.Equal(testNow.Add(time.Hour)))
}

func TestJWTExchanger_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid username or password", "errors": []any{}})
	}))
	defer server.Close()

	_, err := NewJWTExchanger(server.Client()).FetchToken(context.Background(), server.URL, "alice", StaticCredential("wrong"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
	assert.Contains(t, err.Error(), "invalid username or password")
	assert.Contains(t, err.Error(), "401")
}

func TestJWTExchanger_EmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	}))
	defer server.Close()

	_, err := NewJWTExchanger(server.Client()).FetchToken(context.Background(), server.URL, "alice", StaticCredential("pw"))

	assert.True(t, errors.Is(err, domain.ErrNetwork))
}

func TestJWTExchanger_CredentialSourceFailure(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) { hits++ }))
	defer server.Close()

	_, err := NewJWTExchanger(server.Client()).FetchToken(context.Background(), server.URL, "alice", failingSecret{})

	assert.True(t, errors.Is(err, domain.ErrBasicAuth))
	assert.Zero(t, hits)
}

func TestJWTExchanger_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewJWTExchanger(http.DefaultClient).FetchToken(context.Background(), url, "alice", StaticCredential("pw"))

	assert.True(t, errors.Is(err, domain.ErrNetwork))
}

func TestStaticCredential(t *testing.T) {
	secret, err := StaticCredential("pw").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pw", secret)

	_, err = StaticCredential("").Fetch(context.Background())
	assert.Error(t, err)
}
