package domain

import (
	"errors"
	"fmt"
)

// Configuration error kinds.
var (
	// ErrNoHome indicates the user's home directory could not be determined.
	ErrNoHome = errors.New("unable to determine home directory")

	// ErrInvalidConfigPath indicates an explicitly configured path is unusable.
	ErrInvalidConfigPath = errors.New("unable to use specified configuration path")

	// ErrConfigRead indicates the configuration file could not be read.
	ErrConfigRead = errors.New("unable to read configuration")

	// ErrConfigWrite indicates the configuration file could not be written.
	ErrConfigWrite = errors.New("unable to save configuration")

	// ErrConfigSerialize indicates the configuration could not be encoded.
	ErrConfigSerialize = errors.New("unable to serialize configuration")

	// ErrConfigDeserialize indicates the configuration file is malformed.
	ErrConfigDeserialize = errors.New("unable to deserialize configuration")

	// ErrNoDefaultConnection indicates no connection is configured.
	ErrNoDefaultConnection = errors.New("no default connection found")

	// ErrNoDefaultSubscription indicates the connection has no subscriptions.
	ErrNoDefaultSubscription = errors.New("no default subscription found")
)

// Authentication error kinds.
var (
	// ErrNetwork indicates a transport failure or a non-2xx response.
	ErrNetwork = errors.New("an error occurred with the request")

	// ErrExpired indicates the stored credential timed out and cannot be refreshed.
	ErrExpired = errors.New("the specified authentication has timed out and cannot be automatically refreshed")

	// ErrBasicAuth indicates the password could not be obtained.
	ErrBasicAuth = errors.New("basic auth error")

	// ErrOAuth indicates an OAuth protocol failure; the cause is an *OAuthError.
	ErrOAuth = errors.New("oauth error")

	// ErrNoAuthentication indicates the connection has never been authenticated.
	ErrNoAuthentication = errors.New("authentication is not configured for this connection")
)

// OAuth protocol error kinds.
var (
	// ErrOAuthParse indicates an endpoint URL could not be parsed.
	ErrOAuthParse = errors.New("url parse error")

	// ErrMissingEndpoint indicates a required endpoint is missing or OAuth is disabled.
	ErrMissingEndpoint = errors.New("missing or empty endpoint")

	// ErrDeviceAuthorization indicates the device authorization request was rejected.
	ErrDeviceAuthorization = errors.New("device authorization rejected")

	// ErrTokenExchange indicates the token endpoint rejected the grant.
	ErrTokenExchange = errors.New("token exchange rejected")

	// ErrAccessDenied indicates the user denied the authorization request.
	ErrAccessDenied = errors.New("access denied")

	// ErrDeviceCodeExpired indicates the device code expired before authorization completed.
	ErrDeviceCodeExpired = errors.New("device code expired")

	// ErrNoRefreshToken indicates a refresh was requested without a stored refresh token.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrFlowNotSupported indicates an unknown OAuth flow was requested.
	ErrFlowNotSupported = errors.New("oauth flow not supported")
)

// Connection error kinds.
var (
	// ErrConnectionNotFound indicates no connection exists with the given name.
	ErrConnectionNotFound = errors.New("no connection exists with name")

	// ErrMissingServer indicates a new connection was added without a server.
	ErrMissingServer = errors.New("missing required argument \"server\" for new connection")

	// ErrSubscriptionNotFound indicates the requested subscription does not exist.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// ConfigError describes a failure in the configuration store.
type ConfigError struct {
	Kind error
	Path string
	Err  error
}

// NewConfigError wraps err with a configuration error kind.
func NewConfigError(kind error, path string, err error) *ConfigError {
	return &ConfigError{Kind: kind, Path: path, Err: err}
}

func (e *ConfigError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() []error { return compact(e.Kind, e.Err) }

// AuthError describes an authentication failure.
type AuthError struct {
	Kind error
	Err  error
}

// NewAuthError wraps err with an authentication error kind.
func NewAuthError(kind error, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() []error { return compact(e.Kind, e.Err) }

// OAuthError describes an OAuth protocol failure. Detail names the
// endpoint or server-provided code involved.
type OAuthError struct {
	Kind   error
	Detail string
	Err    error
}

// NewOAuthError returns an *AuthError of kind ErrOAuth wrapping an *OAuthError.
func NewOAuthError(kind error, detail string, err error) *AuthError {
	return &AuthError{Kind: ErrOAuth, Err: &OAuthError{Kind: kind, Detail: detail, Err: err}}
}

func (e *OAuthError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OAuthError) Unwrap() []error { return compact(e.Kind, e.Err) }

// ConnectError describes a failure while operating on a named connection.
// Kind is nil when the error only adds the connection name to Err.
type ConnectError struct {
	Kind error
	Name string
	Err  error
}

// NewConnectError wraps err for the named connection.
func NewConnectError(kind error, name string, err error) *ConnectError {
	return &ConnectError{Kind: kind, Name: name, Err: err}
}

func (e *ConnectError) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s %q", e.Kind, e.Name)
	case e.Err != nil:
		return fmt.Sprintf("connection %q: %v", e.Name, e.Err)
	default:
		return fmt.Sprintf("connection %q failed", e.Name)
	}
}

func (e *ConnectError) Unwrap() []error { return compact(e.Kind, e.Err) }

func compact(errs ...error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
