// Package browser opens URLs in the user's default browser.
package browser

import (
	"github.com/skratchdot/open-golang/open"

	"github.com/logship/logsh/internal/logger"
)

// Opener opens a URL. It is replaced in tests.
type Opener func(url string) error

// Default opens URLs with the platform handler.
var Default Opener = open.Run

// Open opens url, logging instead of failing when no browser is available.
// It reports whether the browser was launched.
func Open(opener Opener, url string) bool {
	if opener == nil {
		return false
	}
	if err := opener(url); err != nil {
		logger.Debug("could not open browser: %v", err)
		return false
	}
	return true
}
