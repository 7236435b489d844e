package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// JwtValidity is the client-side validity window assigned to password-exchange
// tokens when the server does not advertise an expiry.
const JwtValidity = 24 * time.Hour

// AuthKind identifies which AuthData or AuthRequest variant is active.
type AuthKind string

const (
	// AuthKindNone means no credential is present.
	AuthKindNone AuthKind = ""
	// AuthKindJwt is the username/password exchange scheme.
	AuthKindJwt AuthKind = "Jwt"
	// AuthKindOAuth is the OAuth2 scheme.
	AuthKindOAuth AuthKind = "OAuth"
)

// OAuthFlow identifies the OAuth2 grant used to obtain a token.
type OAuthFlow string

const (
	// OAuthFlowDevice is the device authorization grant.
	OAuthFlowDevice OAuthFlow = "Device"
	// OAuthFlowCode is the authorization code grant with PKCE.
	OAuthFlowCode OAuthFlow = "Code"
	// OAuthFlowRefresh exchanges a stored refresh token.
	OAuthFlowRefresh OAuthFlow = "Refresh"
)

// ParseOAuthFlow parses a flow name case-insensitively.
func ParseOAuthFlow(s string) (OAuthFlow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "device":
		return OAuthFlowDevice, nil
	case "code", "browser":
		return OAuthFlowCode, nil
	case "refresh":
		return OAuthFlowRefresh, nil
	default:
		return "", NewOAuthError(ErrFlowNotSupported, s, nil)
	}
}

// AuthData is the credential stored on a connection. Exactly one variant is
// set; the JSON form is externally tagged ({"Jwt": {...}} or {"OAuth": {...}}).
type AuthData struct {
	Jwt   *JwtAuth   `json:"Jwt,omitempty"`
	OAuth *OAuthData `json:"OAuth,omitempty"`
}

// JwtAuth is an opaque bearer token from the password exchange.
type JwtAuth struct {
	Token   string     `json:"token"`
	Expires *time.Time `json:"expires"`
}

// OAuthData is a complete OAuth2 grant.
type OAuthData struct {
	Received          time.Time  `json:"received"`
	ClientID          string     `json:"client_id"`
	AuthorizeEndpoint string     `json:"authorize_endpoint"`
	TokenEndpoint     string     `json:"token_endpoint"`
	DeviceEndpoint    string     `json:"device_endpoint,omitempty"`
	Scopes            []string   `json:"scopes"`
	Token             OAuthToken `json:"token"`
	Flow              OAuthFlow  `json:"flow"`
}

// OAuthToken holds the token endpoint response.
type OAuthToken struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresIn is the lifetime in seconds reported by the server; nil when not reported.
	ExpiresIn *int64 `json:"expires_in,omitempty"`
}

// OAuthConfig is the client configuration needed to run an OAuth flow,
// either advertised by the server or supplied by the caller.
type OAuthConfig struct {
	ClientID          string   `json:"clientId"`
	AuthorizeEndpoint string   `json:"authorizeEndpoint"`
	DeviceEndpoint    string   `json:"deviceEndpoint"`
	TokenEndpoint     string   `json:"tokenEndpoint"`
	Scopes            []string `json:"scopes"`
}

// NewJwtAuthData wraps a JWT token.
func NewJwtAuthData(token string, expires *time.Time) *AuthData {
	return &AuthData{Jwt: &JwtAuth{Token: token, Expires: expires}}
}

// NewOAuthAuthData wraps an OAuth grant.
func NewOAuthAuthData(data *OAuthData) *AuthData {
	return &AuthData{OAuth: data}
}

// Kind returns the active variant.
func (a *AuthData) Kind() AuthKind {
	switch {
	case a == nil:
		return AuthKindNone
	case a.Jwt != nil:
		return AuthKindJwt
	case a.OAuth != nil:
		return AuthKindOAuth
	default:
		return AuthKindNone
	}
}

// Validate checks that exactly one variant is set.
func (a *AuthData) Validate() error {
	if a == nil {
		return nil
	}
	switch {
	case a.Jwt != nil && a.OAuth != nil:
		return errors.New("auth: both Jwt and OAuth variants are set")
	case a.Jwt == nil && a.OAuth == nil:
		return errors.New("auth: no variant is set")
	}
	return nil
}

// BearerToken returns the opaque secret sent in the Authorization header.
func (a *AuthData) BearerToken() string {
	switch a.Kind() {
	case AuthKindJwt:
		return a.Jwt.Token
	case AuthKindOAuth:
		return a.OAuth.Token.AccessToken
	default:
		return ""
	}
}

// IsExpired reports whether the credential is past its expiry at now.
func (a *AuthData) IsExpired(now time.Time) bool {
	switch a.Kind() {
	case AuthKindJwt:
		return a.Jwt.IsExpired(now)
	case AuthKindOAuth:
		return a.OAuth.IsExpired(now)
	default:
		return false
	}
}

// IsExpired reports whether the client-assigned expiry has passed.
// Tokens without an expiry are left to the server to judge.
func (j *JwtAuth) IsExpired(now time.Time) bool {
	if j.Expires == nil {
		return false
	}
	return now.After(*j.Expires)
}

// maxExpiresIn is the largest lifetime in seconds a time.Duration can hold.
const maxExpiresIn = math.MaxInt64 / int64(time.Second)

// Expiry returns received + expires_in, or false when the server did not
// report a lifetime. A lifetime too large to represent yields the zero time,
// so the grant reads as expired.
func (d *OAuthData) Expiry() (time.Time, bool) {
	if d.Token.ExpiresIn == nil {
		return time.Time{}, false
	}
	secs := *d.Token.ExpiresIn
	if secs > maxExpiresIn {
		return time.Time{}, true
	}
	return d.Received.Add(time.Duration(secs) * time.Second), true
}

// IsExpired is true iff now is strictly after the expiry instant.
func (d *OAuthData) IsExpired(now time.Time) bool {
	expiry, ok := d.Expiry()
	if !ok {
		return false
	}
	return now.After(expiry)
}

// CanRefresh reports whether a refresh token is stored.
func (d *OAuthData) CanRefresh() bool {
	return d.Token.RefreshToken != ""
}

// Config returns the client configuration the grant was obtained with.
func (d *OAuthData) Config() OAuthConfig {
	return OAuthConfig{
		ClientID:          d.ClientID,
		AuthorizeEndpoint: d.AuthorizeEndpoint,
		DeviceEndpoint:    d.DeviceEndpoint,
		TokenEndpoint:     d.TokenEndpoint,
		Scopes:            d.Scopes,
	}
}

// NormalizeScopes returns the scope set sorted and without duplicates or blanks.
func NormalizeScopes(scopes []string) []string {
	seen := make(map[string]bool, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// CredentialSource produces a secret on demand, so interactive prompts only
// happen when a password is actually needed.
type CredentialSource interface {
	Fetch(ctx context.Context) (string, error)
}

// AuthRequest asks for a fresh credential. Exactly one variant is set.
type AuthRequest struct {
	Jwt   *JwtRequest
	OAuth *OAuthRequest
}

// JwtRequest exchanges a username and password for a token.
type JwtRequest struct {
	Username string
	Password CredentialSource
}

// OAuthRequest runs an OAuth flow. An empty ClientID makes the
// authenticator discover the configuration from the server.
type OAuthRequest struct {
	OAuthConfig
	Flow OAuthFlow
}

// NewJwtRequest builds a password exchange request.
func NewJwtRequest(username string, password CredentialSource) *AuthRequest {
	return &AuthRequest{Jwt: &JwtRequest{Username: username, Password: password}}
}

// NewOAuthRequest builds a request that discovers the server configuration.
func NewOAuthRequest(flow OAuthFlow) *AuthRequest {
	return &AuthRequest{OAuth: &OAuthRequest{Flow: flow}}
}

// Kind returns the active variant.
func (r *AuthRequest) Kind() AuthKind {
	switch {
	case r == nil:
		return AuthKindNone
	case r.Jwt != nil:
		return AuthKindJwt
	case r.OAuth != nil:
		return AuthKindOAuth
	default:
		return AuthKindNone
	}
}

// Validate checks that exactly one variant is set and carries what it needs.
func (r *AuthRequest) Validate() error {
	if r == nil {
		return errors.New("auth request is nil")
	}
	if r.Jwt != nil && r.OAuth != nil {
		return errors.New("auth request: both Jwt and OAuth variants are set")
	}
	switch r.Kind() {
	case AuthKindJwt:
		if strings.TrimSpace(r.Jwt.Username) == "" {
			return errors.New("auth request: username is required")
		}
		if r.Jwt.Password == nil {
			return errors.New("auth request: password source is required")
		}
	case AuthKindOAuth:
		switch r.OAuth.Flow {
		case OAuthFlowDevice, OAuthFlowCode, OAuthFlowRefresh:
		default:
			return fmt.Errorf("auth request: %w: %q", ErrFlowNotSupported, r.OAuth.Flow)
		}
	default:
		return errors.New("auth request: no variant is set")
	}
	return nil
}
