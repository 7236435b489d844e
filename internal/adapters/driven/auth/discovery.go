package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/logger"
)

// Discover fetches the OAuth configuration advertised at {server}/auth/oauth.
func (e *OAuthEngine) Discover(ctx context.Context, server string) (*domain.OAuthConfig, error) {
	endpoint := strings.TrimRight(server, "/") + "/auth/oauth"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("[GET] %s", endpoint)
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, domain.NewOAuthError(domain.ErrMissingEndpoint, "oauth is not configured for this server", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, domain.NewAuthError(domain.ErrNetwork, statusError(resp))
	}

	var cfg domain.OAuthConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, domain.NewOAuthError(domain.ErrOAuthParse, endpoint, fmt.Errorf("decode oauth configuration: %w", err))
	}
	if cfg.ClientID == "" {
		return nil, domain.NewOAuthError(domain.ErrMissingEndpoint, "clientId", nil)
	}
	if cfg.TokenEndpoint == "" {
		return nil, domain.NewOAuthError(domain.ErrMissingEndpoint, "tokenEndpoint", nil)
	}
	cfg.Scopes = domain.NormalizeScopes(cfg.Scopes)
	return &cfg, nil
}
