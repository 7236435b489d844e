package auth

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driven"
)

// Ensure OAuthEngine implements the interface.
var _ driven.OAuthEngine = (*OAuthEngine)(nil)

// Options tunes the interactive OAuth flows.
type Options struct {
	// MaxPoll bounds how long the device flow polls and the code flow waits
	// for its callback.
	MaxPoll time.Duration
	// RedirectPort is the loopback port for the code flow; 0 picks a free one.
	RedirectPort int
}

// OAuthEngine runs OAuth2 flows with golang.org/x/oauth2.
type OAuthEngine struct {
	client   *http.Client
	prompter driven.AuthPrompter
	opts     Options
	now      func() time.Time
	pollUnit time.Duration
}

// NewOAuthEngine creates an OAuthEngine.
func NewOAuthEngine(client *http.Client, prompter driven.AuthPrompter, opts Options) *OAuthEngine {
	if opts.MaxPoll <= 0 {
		opts.MaxPoll = 15 * time.Minute
	}
	return &OAuthEngine{
		client:   client,
		prompter: prompter,
		opts:     opts,
		now:      time.Now,
		pollUnit: time.Second,
	}
}

// WithClock replaces the clock used to stamp received grants.
func (e *OAuthEngine) WithClock(now func() time.Time) *OAuthEngine {
	e.now = now
	return e
}

// WithPollUnit scales the device flow intervals, which the server reports
// in seconds.
func (e *OAuthEngine) WithPollUnit(unit time.Duration) *OAuthEngine {
	if unit > 0 {
		e.pollUnit = unit
	}
	return e
}

// Authorize runs the device or code flow.
func (e *OAuthEngine) Authorize(
	ctx context.Context,
	cfg domain.OAuthConfig,
	flow domain.OAuthFlow,
) (*domain.OAuthData, error) {
	switch flow {
	case domain.OAuthFlowDevice, "":
		return e.deviceFlow(ctx, cfg)
	case domain.OAuthFlowCode:
		return e.codeFlow(ctx, cfg)
	default:
		return nil, domain.NewOAuthError(domain.ErrFlowNotSupported, string(flow), nil)
	}
}

// withClient makes x/oauth2 use the engine's HTTP client.
func (e *OAuthEngine) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, e.client)
}

// oauth2Config validates the endpoints and builds the client configuration.
func (e *OAuthEngine) oauth2Config(cfg domain.OAuthConfig, redirectURL string) (*oauth2.Config, error) {
	if cfg.ClientID == "" {
		return nil, domain.NewOAuthError(domain.ErrMissingEndpoint, "client_id", nil)
	}
	if err := checkEndpoint("token_endpoint", cfg.TokenEndpoint); err != nil {
		return nil, err
	}
	if cfg.AuthorizeEndpoint != "" {
		if err := checkEndpoint("authorize_endpoint", cfg.AuthorizeEndpoint); err != nil {
			return nil, err
		}
	}
	if cfg.DeviceEndpoint != "" {
		if err := checkEndpoint("device_endpoint", cfg.DeviceEndpoint); err != nil {
			return nil, err
		}
	}

	return &oauth2.Config{
		ClientID: cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:       cfg.AuthorizeEndpoint,
			TokenURL:      cfg.TokenEndpoint,
			DeviceAuthURL: cfg.DeviceEndpoint,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      domain.NormalizeScopes(cfg.Scopes),
	}, nil
}

func checkEndpoint(name, raw string) error {
	if raw == "" {
		return domain.NewOAuthError(domain.ErrMissingEndpoint, name, nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return domain.NewOAuthError(domain.ErrOAuthParse, name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return domain.NewOAuthError(domain.ErrOAuthParse, name, errors.New("absolute URL required"))
	}
	return nil
}

// newGrant converts a token endpoint response into a stored grant.
func newGrant(cfg domain.OAuthConfig, flow domain.OAuthFlow, tok *oauth2.Token, received time.Time) *domain.OAuthData {
	grant := &domain.OAuthData{
		Received:          received.UTC(),
		ClientID:          cfg.ClientID,
		AuthorizeEndpoint: cfg.AuthorizeEndpoint,
		TokenEndpoint:     cfg.TokenEndpoint,
		DeviceEndpoint:    cfg.DeviceEndpoint,
		Scopes:            domain.NormalizeScopes(cfg.Scopes),
		Token: domain.OAuthToken{
			AccessToken:  tok.AccessToken,
			TokenType:    tok.TokenType,
			RefreshToken: tok.RefreshToken,
		},
		Flow: flow,
	}

	switch {
	case tok.ExpiresIn > 0:
		n := tok.ExpiresIn
		grant.Token.ExpiresIn = &n
	case !tok.Expiry.IsZero():
		// x/oauth2 stamps Expiry against the wall clock
		n := int64(math.Round(time.Until(tok.Expiry).Seconds()))
		if n < 0 {
			n = 0
		}
		grant.Token.ExpiresIn = &n
	}
	return grant
}

// tokenError classifies a failed x/oauth2 token request.
func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return domain.NewAuthError(domain.ErrNetwork, err)
	}
	return oauthCodeError(re.ErrorCode, re.ErrorDescription, err)
}

// oauthCodeError maps an RFC 6749/8628 error code to its error kind.
func oauthCodeError(code, description string, cause error) error {
	detail := code
	if description != "" {
		detail = code + ": " + description
	}
	switch code {
	case "access_denied":
		return domain.NewOAuthError(domain.ErrAccessDenied, detail, cause)
	case "expired_token":
		return domain.NewOAuthError(domain.ErrDeviceCodeExpired, detail, cause)
	default:
		return domain.NewOAuthError(domain.ErrTokenExchange, detail, cause)
	}
}
