// Package auth talks to the logship server and its identity provider to
// obtain credentials.
//
// This package provides:
//   - Password exchange for server-issued bearer tokens
//   - OAuth2 configuration discovery
//   - OAuth2 device authorization and authorization code (PKCE) flows
//   - Refresh-token exchange
//   - Password sources for interactive and scripted use
//
// # Endpoints
//
// The logship server exposes:
//   - POST {server}/auth/token with {"username", "password"}
//   - GET {server}/auth/oauth, which answers 204 when OAuth is disabled
//
// # Device Flow Pacing
//
// Token polling starts after one interval and never runs faster than the
// interval returned by the device endpoint. Each slow_down response adds
// five seconds. Polling stops at the earlier of the device code expiry and
// the configured maximum poll duration.
package auth
