package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/logger"
)

const (
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
	// defaultPollInterval applies when the device endpoint omits one.
	defaultPollInterval = 5
)

// deviceFlow runs the device authorization grant.
func (e *OAuthEngine) deviceFlow(ctx context.Context, cfg domain.OAuthConfig) (*domain.OAuthData, error) {
	if cfg.DeviceEndpoint == "" {
		return nil, domain.NewOAuthError(domain.ErrMissingEndpoint, "device_endpoint", nil)
	}
	oc, err := e.oauth2Config(cfg, "")
	if err != nil {
		return nil, err
	}

	logger.Debug("[POST] %s", cfg.DeviceEndpoint)
	da, err := oc.DeviceAuth(e.withClient(ctx))
	if err != nil {
		return nil, domain.NewOAuthError(domain.ErrDeviceAuthorization, cfg.DeviceEndpoint, err)
	}

	verification := da.VerificationURIComplete
	if verification == "" {
		verification = da.VerificationURI
	}
	e.prompter.DeviceCode(verification, da.UserCode, da.Expiry)

	tok, received, err := e.pollDeviceToken(ctx, oc, da)
	if err != nil {
		return nil, err
	}
	return newGrant(cfg, domain.OAuthFlowDevice, tok, received), nil
}

// pollDeviceToken polls the token endpoint until the user approves, denies
// or the device code expires.
func (e *OAuthEngine) pollDeviceToken(
	ctx context.Context,
	oc *oauth2.Config,
	da *oauth2.DeviceAuthResponse,
) (*oauth2.Token, time.Time, error) {
	interval := da.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	deadline := time.Now().Add(e.opts.MaxPoll)
	if !da.Expiry.IsZero() && da.Expiry.Before(deadline) {
		deadline = da.Expiry
	}
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	expired := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return domain.NewOAuthError(domain.ErrDeviceCodeExpired, "", nil)
	}

	pacer := newPollPacer(time.Duration(interval)*e.pollUnit, slowDownSteps*e.pollUnit)
	for {
		if err := pacer.Wait(pollCtx); err != nil {
			return nil, time.Time{}, expired()
		}

		received := e.now()
		tok, code, err := e.exchangeDeviceCode(pollCtx, oc, da.DeviceCode)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, time.Time{}, expired()
			}
			return nil, time.Time{}, err
		}

		switch code {
		case "":
			return tok, received, nil
		case "authorization_pending":
			continue
		case "slow_down":
			pacer.SlowDown()
			logger.Debug("device flow asked to slow down, polling every %s", pacer.Interval())
		default:
			return nil, time.Time{}, oauthCodeError(code, "", nil)
		}
	}
}

// exchangeDeviceCode makes one token request. It returns either a token or
// the OAuth error code from the response.
func (e *OAuthEngine) exchangeDeviceCode(
	ctx context.Context,
	oc *oauth2.Config,
	deviceCode string,
) (*oauth2.Token, string, error) {
	form := url.Values{
		"grant_type":  {deviceGrantType},
		"client_id":   {oc.ClientID},
		"device_code": {deviceCode},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oc.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, "", domain.NewAuthError(domain.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", domain.NewAuthError(domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", domain.NewAuthError(domain.ErrNetwork, err)
	}

	if code := gjson.GetBytes(body, "error").String(); code != "" {
		return nil, code, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", domain.NewOAuthError(domain.ErrTokenExchange, resp.Status, nil)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, "", domain.NewOAuthError(domain.ErrTokenExchange, "decode token response", err)
	}
	if tok.AccessToken == "" {
		return nil, "", domain.NewOAuthError(domain.ErrTokenExchange, "token response has no access_token", nil)
	}
	return &tok, "", nil
}
