package driven

import (
	"context"
	"time"

	"github.com/logship/logsh/internal/core/domain"
)

// JWTExchanger exchanges a username and password for a bearer token.
type JWTExchanger interface {
	// FetchToken posts the credentials to the server's token endpoint.
	// The password source is only consulted once the request is being built.
	FetchToken(ctx context.Context, server, username string, password domain.CredentialSource) (*domain.JwtAuth, error)
}

// OAuthEngine drives the OAuth2 protocol against the identity provider.
type OAuthEngine interface {
	// Discover fetches the OAuth configuration advertised by the server.
	// Returns domain.ErrMissingEndpoint when the server has OAuth disabled.
	Discover(ctx context.Context, server string) (*domain.OAuthConfig, error)

	// Authorize runs an interactive flow (device or code) and returns the grant.
	Authorize(ctx context.Context, cfg domain.OAuthConfig, flow domain.OAuthFlow) (*domain.OAuthData, error)

	// Refresh exchanges the stored refresh token for a new grant.
	Refresh(ctx context.Context, data *domain.OAuthData) (*domain.OAuthData, error)
}

// AuthPrompter presents interactive OAuth steps to the operator.
type AuthPrompter interface {
	// DeviceCode shows where and with which code to approve a device login.
	DeviceCode(verificationURI, userCode string, expiry time.Time)

	// AuthorizeURL shows the URL that starts a browser login.
	AuthorizeURL(url string)
}
