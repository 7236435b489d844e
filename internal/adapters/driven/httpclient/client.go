// Package httpclient builds the HTTP client shared by every logsh adapter.
package httpclient

import (
	"net/http"
	"os"
	"time"
)

// HostnameHeader carries the local machine name on every request.
const HostnameHeader = "x-ls-hostname"

// New returns a client with the given timeout whose requests carry the
// logsh user agent and hostname headers.
func New(timeout time.Duration, version string) *http.Client {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			base:      http.DefaultTransport,
			userAgent: "logsh/" + version,
			hostname:  hostname,
		},
	}
}

type headerTransport struct {
	base      http.RoundTripper
	userAgent string
	hostname  string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	req.Header.Set(HostnameHeader, t.hostname)
	return t.base.RoundTrip(req)
}
