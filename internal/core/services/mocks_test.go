package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driven"
)

// mockStore keeps the configuration in memory.
type mockStore struct {
	cfg     *domain.Configuration
	saves   int
	loadErr error
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{cfg: domain.NewConfiguration()}
}

func (m *mockStore) Path() string { return "/tmp/logsh/config.json" }

func (m *mockStore) Load(_ context.Context) (*domain.Configuration, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.cfg, nil
}

func (m *mockStore) Save(_ context.Context, cfg *domain.Configuration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.cfg = cfg
	m.saves++
	return nil
}

// mockJWT returns a fixed token and records the username it was called with.
type mockJWT struct {
	token    string
	err      error
	username string
	password string
	server   string
}

func (m *mockJWT) FetchToken(
	ctx context.Context,
	server, username string,
	password domain.CredentialSource,
) (*domain.JwtAuth, error) {
	m.server = server
	m.username = username
	if m.err != nil {
		return nil, m.err
	}
	pw, err := password.Fetch(ctx)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrBasicAuth, err)
	}
	m.password = pw
	expires := time.Now().Add(domain.JwtValidity)
	return &domain.JwtAuth{Token: m.token, Expires: &expires}, nil
}

// mockOAuth records which engine operations ran.
type mockOAuth struct {
	discovered   *domain.OAuthConfig
	discoverErr  error
	discoverHits int

	grant        *domain.OAuthData
	authorizeErr error
	authorized   []domain.OAuthFlow
	lastConfig   domain.OAuthConfig

	refreshed   *domain.OAuthData
	refreshErr  error
	refreshHits int
}

func (m *mockOAuth) Discover(_ context.Context, _ string) (*domain.OAuthConfig, error) {
	m.discoverHits++
	if m.discoverErr != nil {
		return nil, m.discoverErr
	}
	return m.discovered, nil
}

func (m *mockOAuth) Authorize(_ context.Context, cfg domain.OAuthConfig, flow domain.OAuthFlow) (*domain.OAuthData, error) {
	m.authorized = append(m.authorized, flow)
	m.lastConfig = cfg
	if m.authorizeErr != nil {
		return nil, m.authorizeErr
	}
	return m.grant, nil
}

func (m *mockOAuth) Refresh(_ context.Context, _ *domain.OAuthData) (*domain.OAuthData, error) {
	m.refreshHits++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.refreshed, nil
}

// mockClient serves a fixed identity.
type mockClient struct {
	user      domain.User
	subs      []domain.Subscription
	whoamiErr error
	tokens    []string
}

func (m *mockClient) WhoAmI(_ context.Context, _, token string) (*domain.User, error) {
	m.tokens = append(m.tokens, token)
	if m.whoamiErr != nil {
		return nil, m.whoamiErr
	}
	u := m.user
	return &u, nil
}

func (m *mockClient) Subscriptions(_ context.Context, _, token string, _ uuid.UUID) ([]domain.Subscription, error) {
	m.tokens = append(m.tokens, token)
	return append([]domain.Subscription(nil), m.subs...), nil
}

type staticSecret string

func (s staticSecret) Fetch(_ context.Context) (string, error) { return string(s), nil }

var (
	_ driven.ConfigStore   = (*mockStore)(nil)
	_ driven.JWTExchanger  = (*mockJWT)(nil)
	_ driven.OAuthEngine   = (*mockOAuth)(nil)
	_ driven.LogshipClient = (*mockClient)(nil)
)

func int64Ptr(v int64) *int64 { return &v }
