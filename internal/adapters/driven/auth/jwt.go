package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driven"
	"github.com/logship/logsh/internal/logger"
)

// Ensure JWTExchanger implements the interface.
var _ driven.JWTExchanger = (*JWTExchanger)(nil)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// JWTExchanger exchanges a username and password at {server}/auth/token.
type JWTExchanger struct {
	client *http.Client
	now    func() time.Time
}

// NewJWTExchanger creates a JWTExchanger.
func NewJWTExchanger(client *http.Client) *JWTExchanger {
	return &JWTExchanger{client: client, now: time.Now}
}

// WithClock replaces the clock used to stamp client-side expiries.
func (j *JWTExchanger) WithClock(now func() time.Time) *JWTExchanger {
	j.now = now
	return j
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token   string     `json:"token"`
	Expires *time.Time `json:"expires,omitempty"`
}

// FetchToken posts the credentials and returns the issued token. When the
// server does not report an expiry the token is assumed valid for
// domain.JwtValidity.
func (j *JWTExchanger) FetchToken(
	ctx context.Context,
	server, username string,
	password domain.CredentialSource,
) (*domain.JwtAuth, error) {
	secret, err := password.Fetch(ctx)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrBasicAuth, err)
	}

	body, err := json.Marshal(tokenRequest{Username: username, Password: secret})
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrBasicAuth, err)
	}

	endpoint := strings.TrimRight(server, "/") + "/auth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.Debug("[POST] %s", endpoint)
	received := j.now()
	resp, err := j.client.Do(req)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewAuthError(domain.ErrNetwork, statusError(resp))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, domain.NewAuthError(domain.ErrNetwork, fmt.Errorf("decode token response: %w", err))
	}
	if token.Token == "" {
		return nil, domain.NewAuthError(domain.ErrNetwork, fmt.Errorf("token response from %s has no token", endpoint))
	}

	expires := token.Expires
	if expires == nil {
		e := received.Add(domain.JwtValidity)
		expires = &e
	}
	return &domain.JwtAuth{Token: token.Token, Expires: expires}, nil
}

// statusError describes a non-2xx response, using the server's error
// message when the body carries one.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if msg := gjson.GetBytes(body, "message").String(); msg != "" {
		return fmt.Errorf("%s: %s", resp.Status, msg)
	}
	return fmt.Errorf("%s", resp.Status)
}
