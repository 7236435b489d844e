package services

import (
	"context"
	"time"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driven"
	"github.com/logship/logsh/internal/logger"
)

// Authenticator turns auth requests into stored credentials and keeps
// stored credentials usable.
type Authenticator struct {
	jwt   driven.JWTExchanger
	oauth driven.OAuthEngine
	now   func() time.Time
}

// NewAuthenticator creates an Authenticator using the wall clock.
func NewAuthenticator(jwt driven.JWTExchanger, oauth driven.OAuthEngine) *Authenticator {
	return &Authenticator{jwt: jwt, oauth: oauth, now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

// Authenticate executes req against the connection's server and returns the
// new credential. The connection itself is not modified.
func (a *Authenticator) Authenticate(
	ctx context.Context,
	conn *domain.Connection,
	req *domain.AuthRequest,
) (*domain.AuthData, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch req.Kind() {
	case domain.AuthKindJwt:
		logger.Debug("exchanging password for %s at %s", req.Jwt.Username, conn.BaseURL())
		jwt, err := a.jwt.FetchToken(ctx, conn.BaseURL(), req.Jwt.Username, req.Jwt.Password)
		if err != nil {
			return nil, err
		}
		return &domain.AuthData{Jwt: jwt}, nil

	case domain.AuthKindOAuth:
		if req.OAuth.Flow == domain.OAuthFlowRefresh {
			return a.refresh(ctx, conn.Auth)
		}

		cfg := req.OAuth.OAuthConfig
		if cfg.ClientID == "" {
			discovered, err := a.oauth.Discover(ctx, conn.BaseURL())
			if err != nil {
				return nil, err
			}
			cfg = *discovered
		}
		logger.Debug("starting %s flow for client %s", req.OAuth.Flow, cfg.ClientID)
		data, err := a.oauth.Authorize(ctx, cfg, req.OAuth.Flow)
		if err != nil {
			return nil, err
		}
		return domain.NewOAuthAuthData(data), nil
	}

	return nil, domain.NewAuthError(domain.ErrNoAuthentication, nil)
}

func (a *Authenticator) refresh(ctx context.Context, stored *domain.AuthData) (*domain.AuthData, error) {
	if stored.Kind() != domain.AuthKindOAuth || !stored.OAuth.CanRefresh() {
		return nil, domain.NewOAuthError(domain.ErrNoRefreshToken, "", nil)
	}
	data, err := a.oauth.Refresh(ctx, stored.OAuth)
	if err != nil {
		return nil, err
	}
	return domain.NewOAuthAuthData(data), nil
}

// EnsureValid makes sure conn carries a usable credential.
//
// With a request, it always authenticates and overwrites the stored
// credential. Without one, the stored credential is checked: an expired
// OAuth grant with a refresh token is refreshed in place, anything else
// that has expired fails with domain.ErrExpired. changed reports whether
// conn.Auth was replaced and needs to be persisted.
func (a *Authenticator) EnsureValid(
	ctx context.Context,
	conn *domain.Connection,
	req *domain.AuthRequest,
) (changed bool, err error) {
	if req != nil {
		auth, err := a.Authenticate(ctx, conn, req)
		if err != nil {
			return false, err
		}
		conn.Auth = auth
		return true, nil
	}

	now := a.now()
	switch conn.Auth.Kind() {
	case domain.AuthKindNone:
		return false, domain.NewAuthError(domain.ErrNoAuthentication, nil)

	case domain.AuthKindJwt:
		if conn.Auth.Jwt.IsExpired(now) {
			return false, domain.NewAuthError(domain.ErrExpired, nil)
		}
		return false, nil

	case domain.AuthKindOAuth:
		if !conn.Auth.OAuth.IsExpired(now) {
			return false, nil
		}
		if !conn.Auth.OAuth.CanRefresh() {
			return false, domain.NewAuthError(domain.ErrExpired, domain.NewOAuthError(domain.ErrNoRefreshToken, "", nil))
		}
		logger.Debug("access token expired, refreshing")
		auth, err := a.refresh(ctx, conn.Auth)
		if err != nil {
			return false, domain.NewAuthError(domain.ErrExpired, err)
		}
		conn.Auth = auth
		return true, nil
	}

	return false, nil
}
