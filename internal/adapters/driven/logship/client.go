// Package logship is the client for the bearer-authenticated logship API.
package logship

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driven"
	"github.com/logship/logsh/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.LogshipClient = (*Client)(nil)

// Client calls the logship API.
type Client struct {
	http *http.Client
}

// NewClient creates a Client on top of an HTTP client.
func NewClient(httpClient *http.Client) *Client {
	return &Client{http: httpClient}
}

// WhoAmI returns the user the token belongs to.
func (c *Client) WhoAmI(ctx context.Context, server, token string) (*domain.User, error) {
	var user domain.User
	if err := c.getJSON(ctx, server, "whoami", token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Subscriptions lists the accounts the user can access.
func (c *Client) Subscriptions(
	ctx context.Context,
	server, token string,
	userID uuid.UUID,
) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	if err := c.getJSON(ctx, server, "users/"+userID.String()+"/accounts", token, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) getJSON(ctx context.Context, server, path, token string, out any) error {
	endpoint := strings.TrimRight(strings.TrimSpace(server), "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))

	logger.Debug("[GET] %s", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewAuthError(domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := WrapError(resp.StatusCode); err != nil {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
