package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrappers_ExposeKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{
			name: "config",
			err:  NewConfigError(ErrConfigRead, "/etc/logsh.json", cause),
			kind: ErrConfigRead,
			msg:  "unable to read configuration (/etc/logsh.json): connection refused",
		},
		{
			name: "auth",
			err:  NewAuthError(ErrNetwork, cause),
			kind: ErrNetwork,
			msg:  "an error occurred with the request: connection refused",
		},
		{
			name: "oauth",
			err:  NewOAuthError(ErrAccessDenied, "access_denied", cause),
			kind: ErrAccessDenied,
			msg:  "oauth error: access denied: access_denied: connection refused",
		},
		{
			name: "connect",
			err:  NewConnectError(ErrConnectionNotFound, "prod", cause),
			kind: ErrConnectionNotFound,
			msg:  `no connection exists with name "prod": connection refused`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.kind))
			assert.True(t, errors.Is(tt.err, cause))
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestOAuthError_IsReachableThroughAuthError(t *testing.T) {
	err := NewConnectError(nil, "prod", NewAuthError(ErrExpired, NewOAuthError(ErrNoRefreshToken, "", nil)))

	assert.True(t, errors.Is(err, ErrExpired))
	assert.True(t, errors.Is(err, ErrOAuth))
	assert.True(t, errors.Is(err, ErrNoRefreshToken))

	var oe *OAuthError
	assert.True(t, errors.As(err, &oe))
	assert.Equal(t, ErrNoRefreshToken, oe.Kind)
	assert.Equal(t, `connection "prod": `+err.Err.Error(), err.Error())
}
