package auth

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/logger"
)

// Refresh exchanges the stored refresh token for a new grant. The stored
// refresh token is kept when the server does not rotate it.
func (e *OAuthEngine) Refresh(ctx context.Context, data *domain.OAuthData) (*domain.OAuthData, error) {
	if data == nil || !data.CanRefresh() {
		return nil, domain.NewOAuthError(domain.ErrNoRefreshToken, "", nil)
	}

	cfg := data.Config()
	oc, err := e.oauth2Config(cfg, "")
	if err != nil {
		return nil, err
	}

	logger.Debug("[POST] %s (refresh_token)", cfg.TokenEndpoint)
	received := e.now()
	tok, err := oc.TokenSource(e.withClient(ctx), &oauth2.Token{RefreshToken: data.Token.RefreshToken}).Token()
	if err != nil {
		return nil, tokenError(err)
	}

	grant := newGrant(cfg, data.Flow, tok, received)
	if grant.Token.RefreshToken == "" {
		grant.Token.RefreshToken = data.Token.RefreshToken
	}
	return grant, nil
}
