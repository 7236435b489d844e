package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/logship/logsh/internal/core/domain"
)

func storedGrant(tokenEndpoint string) *domain.OAuthData {
	expiresIn := int64(60)
	return &domain.OAuthData{
		Received:      testNow.Add(-time.Hour),
		ClientID:      "logsh-cli",
		TokenEndpoint: tokenEndpoint,
		Scopes:        []string{"openid"},
		Token: domain.OAuthToken{
			AccessToken:  "old-access",
			RefreshToken: "old-refresh",
			ExpiresIn:    &expiresIn,
		},
		Flow: domain.OAuthFlowDevice,
	}
}

func TestRefresh_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	var form url.Values
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		form = r.PostForm
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "new-access", "token_type": "Bearer", "expires_in": 900})
	}))
	defer idp.Close()

	engine := NewOAuthEngine(idp.Client(), &recordingPrompter{}, Options{}).WithClock(fixedClock)
	data, err := engine.Refresh(context.Background(), storedGrant(idp.URL+"/token"))

	require.NoError(t, err)
	assert.Equal(t, "refresh_token", form.Get("grant_type"))
	assert.Equal(t, "old-refresh", form.Get("refresh_token"))
	assert.Equal(t, "logsh-cli", form.Get("client_id"))

	assert.Equal(t, "new-access", data.Token.AccessToken)
	assert.Equal(t, "old-refresh", data.Token.RefreshToken)
	assert.Equal(t, testNow, data.Received)
	assert.Equal(t, domain.OAuthFlowDevice, data.Flow)
	require.NotNil(t, data.Token.ExpiresIn)
	assert.Equal(t, int64(900), *data.Token.ExpiresIn)
	assert.False(t, data.IsExpired(testNow.Add(900*time.Second)))
}

func TestRefresh_Rotated(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "a", "refresh_token": "rotated", "expires_in": 60})
	}))
	defer idp.Close()

	data, err := NewOAuthEngine(idp.Client(), &recordingPrompter{}, Options{}).
		Refresh(context.Background(), storedGrant(idp.URL+"/token"))

	require.NoError(t, err)
	assert.Equal(t, "rotated", data.Token.RefreshToken)
}

func TestRefresh_Rejected(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
	}))
	defer idp.Close()

	_, err := NewOAuthEngine(idp.Client(), &recordingPrompter{}, Options{}).
		Refresh(context.Background(), storedGrant(idp.URL+"/token"))

	assert.True(t, errors.Is(err, domain.ErrTokenExchange), "got %v", err)
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	grant := storedGrant("https://idp.example/token")
	grant.Token.RefreshToken = ""

	_, err := NewOAuthEngine(http.DefaultClient, &recordingPrompter{}, Options{}).Refresh(context.Background(), grant)

	assert.True(t, errors.Is(err, domain.ErrNoRefreshToken))
}

func TestNewGrant_ExpiryFromAbsoluteTime(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(90 * time.Second)}

	data := newGrant(idpConfig("https://idp"), domain.OAuthFlowCode, tok, testNow)

	require.NotNil(t, data.Token.ExpiresIn)
	assert.Equal(t, int64(90), *data.Token.ExpiresIn)
}
