package auth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/logship/logsh/internal/core/domain"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// recordingPrompter records what would be shown to the operator and can
// act on an authorize URL like a browser would.
type recordingPrompter struct {
	mu           sync.Mutex
	userCode     string
	verification string
	authorizeURL string
	onAuthorize  func(authURL string)
}

func (p *recordingPrompter) DeviceCode(verificationURI, userCode string, _ time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verification = verificationURI
	p.userCode = userCode
}

func (p *recordingPrompter) AuthorizeURL(u string) {
	p.mu.Lock()
	p.authorizeURL = u
	hook := p.onAuthorize
	p.mu.Unlock()
	if hook != nil {
		hook(u)
	}
}

// fakeIdP is a minimal identity provider. tokenResponses are served in
// order to device token polls; the last one repeats.
type fakeIdP struct {
	t *testing.T

	mu             sync.Mutex
	deviceStatus   int
	deviceExpires  int
	deviceInterval int
	tokenResponses []tokenReply
	polls          []time.Time
	forms          []url.Values
}

type tokenReply struct {
	status int
	body   map[string]any
}

func pending() tokenReply {
	return tokenReply{status: http.StatusBadRequest, body: map[string]any{"error": "authorization_pending"}}
}

func oauthFailure(code string) tokenReply {
	return tokenReply{status: http.StatusBadRequest, body: map[string]any{"error": code}}
}

func granted(access, refresh string, expiresIn int) tokenReply {
	body := map[string]any{"access_token": access, "token_type": "Bearer", "expires_in": expiresIn}
	if refresh != "" {
		body["refresh_token"] = refresh
	}
	return tokenReply{status: http.StatusOK, body: body}
}

func (f *fakeIdP) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/device", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			f.t.Errorf("parse device form: %v", err)
		}
		f.mu.Lock()
		f.forms = append(f.forms, r.PostForm)
		status := f.deviceStatus
		f.mu.Unlock()

		if status != 0 && status != http.StatusOK {
			writeJSON(w, status, map[string]any{"error": "invalid_client"})
			return
		}
		expires := f.deviceExpires
		if expires == 0 {
			expires = 600
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"device_code":      "device-123",
			"user_code":        "ABCD-EFGH",
			"verification_uri": "https://idp.example/activate",
			"expires_in":       expires,
			"interval":         f.deviceInterval,
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			f.t.Errorf("parse token form: %v", err)
		}
		f.mu.Lock()
		f.polls = append(f.polls, time.Now())
		f.forms = append(f.forms, r.PostForm)
		idx := len(f.polls) - 1
		if idx >= len(f.tokenResponses) {
			idx = len(f.tokenResponses) - 1
		}
		reply := f.tokenResponses[idx]
		f.mu.Unlock()

		writeJSON(w, reply.status, reply.body)
	})
	return mux
}

func (f *fakeIdP) pollTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.polls...)
}

func (f *fakeIdP) lastForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[len(f.forms)-1]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func idpConfig(base string) domain.OAuthConfig {
	return domain.OAuthConfig{
		ClientID:          "logsh-cli",
		AuthorizeEndpoint: base + "/authorize",
		DeviceEndpoint:    base + "/device",
		TokenEndpoint:     base + "/token",
		Scopes:            []string{"openid", "offline_access"},
	}
}
