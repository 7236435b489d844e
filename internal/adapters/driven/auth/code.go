package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/logger"
)

const callbackPath = "/callback"

type callbackResult struct {
	code string
	err  error
}

// codeFlow runs the authorization code grant with PKCE, receiving the
// redirect on a loopback listener.
func (e *OAuthEngine) codeFlow(ctx context.Context, cfg domain.OAuthConfig) (*domain.OAuthData, error) {
	if cfg.AuthorizeEndpoint == "" {
		return nil, domain.NewOAuthError(domain.ErrMissingEndpoint, "authorize_endpoint", nil)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", e.opts.RedirectPort))
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrNetwork, fmt.Errorf("start callback listener: %w", err))
	}
	redirectURL := fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)

	oc, err := e.oauth2Config(cfg, redirectURL)
	if err != nil {
		_ = ln.Close()
		return nil, err
	}

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, callbackHandler(state, results))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Debug("callback server stopped: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Debug("waiting for authorization callback on %s", redirectURL)
	e.prompter.AuthorizeURL(oc.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)))

	waitCtx, cancel := context.WithTimeout(ctx, e.opts.MaxPoll)
	defer cancel()

	var res callbackResult
	select {
	case res = <-results:
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, domain.NewOAuthError(domain.ErrTokenExchange, "timed out waiting for the authorization callback", nil)
	}
	if res.err != nil {
		return nil, res.err
	}

	received := e.now()
	tok, err := oc.Exchange(e.withClient(ctx), res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, tokenError(err)
	}
	return newGrant(cfg, domain.OAuthFlowCode, tok, received), nil
}

// callbackHandler delivers the first callback outcome on results.
func callbackHandler(state string, results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = domain.NewOAuthError(domain.ErrTokenExchange, "state mismatch in authorization callback", nil)
		case q.Get("error") != "":
			res.err = oauthCodeError(q.Get("error"), q.Get("error_description"), nil)
		case q.Get("code") == "":
			res.err = domain.NewOAuthError(domain.ErrTokenExchange, "authorization callback has no code", nil)
		default:
			res.code = q.Get("code")
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if res.err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "logsh login failed: %v\n", res.err)
		} else {
			fmt.Fprintln(w, "logsh login complete. You can close this window.")
		}

		select {
		case results <- res:
		default:
		}
	}
}
