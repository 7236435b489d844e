package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driven"
	"github.com/logship/logsh/internal/core/ports/driving"
	"github.com/logship/logsh/internal/logger"
)

// Ensure ConnectionService implements the interface.
var _ driving.ConnectionService = (*ConnectionService)(nil)

// ConnectionService manages the configured connections. Every operation
// loads the configuration, works on it and saves it when it changed.
type ConnectionService struct {
	store  driven.ConfigStore
	auth   *Authenticator
	client driven.LogshipClient
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(
	store driven.ConfigStore,
	auth *Authenticator,
	client driven.LogshipClient,
) *ConnectionService {
	return &ConnectionService{store: store, auth: auth, client: client}
}

// Add authenticates a new connection, resolves its identity and saves it.
func (s *ConnectionService) Add(
	ctx context.Context,
	req driving.AddConnectionRequest,
) (*domain.NamedConnection, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("connection name is required")
	}

	cfg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	server := strings.TrimSpace(req.Server)
	if server == "" {
		existing, ok := cfg.Get(name)
		if !ok || existing.Server == "" {
			return nil, domain.NewConnectError(domain.ErrMissingServer, name, nil)
		}
		server = existing.Server
	}

	conn := domain.NewConnection(server)
	if _, err := s.auth.EnsureValid(ctx, conn, req.Auth); err != nil {
		return nil, domain.NewConnectError(nil, name, err)
	}
	if err := s.refreshIdentity(ctx, conn); err != nil {
		return nil, domain.NewConnectError(nil, name, err)
	}

	if cfg.Upsert(name, conn, req.MakeDefault) {
		logger.Info("replaced connection %q", name)
	}
	if err := s.store.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return &domain.NamedConnection{Name: name, Connection: conn}, nil
}

// Login re-authenticates a stored connection with the scheme it already uses.
func (s *ConnectionService) Login(
	ctx context.Context,
	req driving.LoginRequest,
) (*domain.NamedConnection, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	named, err := s.resolve(cfg, req.Name)
	if err != nil {
		return nil, err
	}
	conn := named.Connection

	var authReq *domain.AuthRequest
	switch conn.Auth.Kind() {
	case domain.AuthKindJwt:
		if conn.Username == "" {
			return nil, domain.NewConnectError(nil, named.Name, domain.NewAuthError(domain.ErrBasicAuth, nil))
		}
		authReq = domain.NewJwtRequest(conn.Username, req.Password)
	case domain.AuthKindOAuth:
		authReq = domain.NewOAuthRequest(loginFlow(req.Flow, conn.Auth.OAuth.Flow))
	default:
		return nil, domain.NewConnectError(nil, named.Name, domain.NewAuthError(domain.ErrNoAuthentication, nil))
	}

	if _, err := s.auth.EnsureValid(ctx, conn, authReq); err != nil {
		return nil, domain.NewConnectError(nil, named.Name, err)
	}
	if err := s.refreshIdentity(ctx, conn); err != nil {
		return nil, domain.NewConnectError(nil, named.Name, err)
	}
	// A successful login makes the connection the default, as add does.
	cfg.DefaultConnection = named.Name
	if err := s.store.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return named, nil
}

// loginFlow picks the flow for a re-login. A stored Refresh flow falls back
// to the device flow since the grant it came from is unknown.
func loginFlow(requested, stored domain.OAuthFlow) domain.OAuthFlow {
	if requested != "" {
		return requested
	}
	if stored == domain.OAuthFlowCode {
		return domain.OAuthFlowCode
	}
	return domain.OAuthFlowDevice
}

// Remove deletes a connection. The default pointer is left untouched so a
// removed default falls back to the remaining connections.
func (s *ConnectionService) Remove(ctx context.Context, name string) (bool, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if !cfg.Remove(name) {
		return false, nil
	}
	if err := s.store.Save(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// SetDefault makes the named connection the default.
func (s *ConnectionService) SetDefault(ctx context.Context, name string) error {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := cfg.SetDefault(name); err != nil {
		return err
	}
	return s.store.Save(ctx, cfg)
}

// List returns all connections sorted by name.
func (s *ConnectionService) List(ctx context.Context) ([]driving.ConnectionSummary, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	defaultName := ""
	if res, ok := cfg.ResolveDefault(); ok {
		defaultName = res.Name
	}

	names := cfg.Names()
	summaries := make([]driving.ConnectionSummary, 0, len(names))
	for _, name := range names {
		conn, ok := cfg.Get(name)
		if !ok {
			continue
		}
		summaries = append(summaries, driving.ConnectionSummary{
			Name:          name,
			Server:        conn.Server,
			Username:      conn.Username,
			AuthKind:      conn.Auth.Kind(),
			IsDefault:     name == defaultName,
			Authenticated: conn.IsAuthenticated(),
		})
	}
	return summaries, nil
}

// Resolve returns the named connection, or the default when name is empty.
func (s *ConnectionService) Resolve(ctx context.Context, name string) (*domain.NamedConnection, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolve(cfg, name)
}

func (s *ConnectionService) resolve(cfg *domain.Configuration, name string) (*domain.NamedConnection, error) {
	if name != "" {
		conn, ok := cfg.Get(name)
		if !ok {
			return nil, domain.NewConnectError(domain.ErrConnectionNotFound, name, nil)
		}
		return &domain.NamedConnection{Name: name, Connection: conn}, nil
	}

	res, ok := cfg.ResolveDefault()
	if !ok {
		return nil, domain.NewConfigError(domain.ErrNoDefaultConnection, s.store.Path(), nil)
	}
	if res.Stale {
		logger.Warn("default connection %q not found, using %q", cfg.DefaultConnection, res.Name)
	}
	named := res.NamedConnection
	return &named, nil
}

// BearerToken returns a usable token for the connection, saving the
// configuration when a silent refresh replaced the credential.
func (s *ConnectionService) BearerToken(ctx context.Context, name string) (string, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	named, err := s.resolve(cfg, name)
	if err != nil {
		return "", err
	}
	return s.bearerToken(ctx, cfg, named)
}

func (s *ConnectionService) bearerToken(
	ctx context.Context,
	cfg *domain.Configuration,
	named *domain.NamedConnection,
) (string, error) {
	changed, err := s.auth.EnsureValid(ctx, named.Connection, nil)
	if err != nil {
		return "", domain.NewConnectError(nil, named.Name, err)
	}
	if changed {
		logger.Debug("persisting refreshed credential for %q", named.Name)
		if err := s.store.Save(ctx, cfg); err != nil {
			return "", err
		}
	}
	return named.Connection.BearerToken(), nil
}

// WhoAmI asks the server who the connection is authenticated as.
func (s *ConnectionService) WhoAmI(ctx context.Context, name string) (*domain.User, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	named, err := s.resolve(cfg, name)
	if err != nil {
		return nil, err
	}
	token, err := s.bearerToken(ctx, cfg, named)
	if err != nil {
		return nil, err
	}
	user, err := s.client.WhoAmI(ctx, named.Connection.BaseURL(), token)
	if err != nil {
		return nil, domain.NewConnectError(nil, named.Name, err)
	}
	return user, nil
}

// Subscriptions lists the subscriptions available to the connection and
// records them on it.
func (s *ConnectionService) Subscriptions(ctx context.Context, name string) ([]domain.Subscription, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	named, err := s.resolve(cfg, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.bearerToken(ctx, cfg, named); err != nil {
		return nil, err
	}

	conn := named.Connection
	if conn.UserID == nil {
		user, err := s.client.WhoAmI(ctx, conn.BaseURL(), conn.BearerToken())
		if err != nil {
			return nil, domain.NewConnectError(nil, named.Name, err)
		}
		conn.SetIdentity(*user)
	}
	subs, err := s.client.Subscriptions(ctx, conn.BaseURL(), conn.BearerToken(), *conn.UserID)
	if err != nil {
		return nil, domain.NewConnectError(nil, named.Name, err)
	}
	conn.SetSubscriptions(subs)
	if err := s.store.Save(ctx, cfg); err != nil {
		return nil, err
	}

	sort.Slice(subs, func(i, j int) bool { return subs[i].AccountName < subs[j].AccountName })
	return subs, nil
}

// SetDefaultSubscription selects a stored subscription by name or ID.
func (s *ConnectionService) SetDefaultSubscription(ctx context.Context, name, subscription string) (string, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	named, err := s.resolve(cfg, name)
	if err != nil {
		return "", err
	}
	selected, err := named.Connection.SelectSubscription(subscription)
	if err != nil {
		return "", domain.NewConnectError(nil, named.Name, err)
	}
	if err := s.store.Save(ctx, cfg); err != nil {
		return "", err
	}
	return selected, nil
}

// refreshIdentity records the whoami result and subscription set on conn.
func (s *ConnectionService) refreshIdentity(ctx context.Context, conn *domain.Connection) error {
	token := conn.BearerToken()
	user, err := s.client.WhoAmI(ctx, conn.BaseURL(), token)
	if err != nil {
		return err
	}
	conn.SetIdentity(*user)

	subs, err := s.client.Subscriptions(ctx, conn.BaseURL(), token, user.UserID)
	if err != nil {
		return err
	}
	conn.SetSubscriptions(subs)
	logger.Debug("connection identity: %s", conn)
	return nil
}
