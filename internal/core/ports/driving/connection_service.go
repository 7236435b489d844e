package driving

import (
	"context"

	"github.com/logship/logsh/internal/core/domain"
)

// AddConnectionRequest describes a connection to create or replace.
type AddConnectionRequest struct {
	// Name is the configuration key.
	Name string
	// Server is the base URL. When empty, the server of an existing entry
	// with the same name is reused.
	Server string
	// Auth is the credential request executed before the connection is saved.
	Auth *domain.AuthRequest
	// MakeDefault points the default at this connection. The first
	// connection always becomes the default.
	MakeDefault bool
}

// LoginRequest re-authenticates an existing connection.
type LoginRequest struct {
	// Name selects the connection; empty means the default connection.
	Name string
	// Password is consulted for password-exchange connections.
	Password domain.CredentialSource
	// Flow overrides the OAuth flow; empty reuses the stored flow.
	Flow domain.OAuthFlow
}

// ConnectionSummary is a row of the connection listing.
type ConnectionSummary struct {
	Name          string
	Server        string
	Username      string
	AuthKind      domain.AuthKind
	IsDefault     bool
	Authenticated bool
}

// ConnectionService manages named connections and their credentials.
type ConnectionService interface {
	// Add authenticates a new connection, resolves its identity and saves it.
	Add(ctx context.Context, req AddConnectionRequest) (*domain.NamedConnection, error)

	// Login re-authenticates a stored connection using its existing scheme and
	// makes it the default.
	// Returns domain.ErrNoAuthentication if the connection has no credential.
	Login(ctx context.Context, req LoginRequest) (*domain.NamedConnection, error)

	// Remove deletes a connection and reports whether it existed.
	Remove(ctx context.Context, name string) (bool, error)

	// SetDefault makes the named connection the default.
	// Returns domain.ErrConnectionNotFound if it does not exist.
	SetDefault(ctx context.Context, name string) error

	// List returns all connections sorted by name.
	List(ctx context.Context) ([]ConnectionSummary, error)

	// Resolve returns the named connection, or the default when name is empty.
	Resolve(ctx context.Context, name string) (*domain.NamedConnection, error)

	// BearerToken returns a token that is valid as far as the client can
	// tell, refreshing OAuth grants silently when possible.
	BearerToken(ctx context.Context, name string) (string, error)

	// WhoAmI asks the server who the connection is authenticated as.
	WhoAmI(ctx context.Context, name string) (*domain.User, error)

	// Subscriptions lists the subscriptions available to the connection.
	Subscriptions(ctx context.Context, name string) ([]domain.Subscription, error)

	// SetDefaultSubscription selects a subscription by name or ID.
	SetDefaultSubscription(ctx context.Context, name, subscription string) (string, error)
}
