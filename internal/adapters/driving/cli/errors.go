package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/logship/logsh/internal/adapters/driven/logship"
	"github.com/logship/logsh/internal/core/domain"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const (
	hintLogin      = "# Execute logsh config connection login to authenticate again."
	hintList       = "# Execute logsh config connection ls to view available connections."
	hintAdd        = "# Execute logsh config connection add --help for help with adding connections."
	hintSubList    = "# Execute logsh subscription ls to view available subscriptions."
	hintConfigPath = "# Execute logsh config path --validate to check the configuration file."
)

// errorHints returns follow-up suggestions for a failed command.
func errorHints(err error) []string {
	switch {
	case errors.Is(err, domain.ErrNoDefaultConnection), errors.Is(err, domain.ErrMissingServer):
		return []string{hintAdd}
	case errors.Is(err, domain.ErrConnectionNotFound):
		return []string{hintList, hintAdd}
	case errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrNoAuthentication),
		errors.Is(err, logship.ErrUnauthorised):
		return []string{hintLogin, hintList}
	case errors.Is(err, domain.ErrDeviceCodeExpired), errors.Is(err, domain.ErrAccessDenied):
		return []string{hintLogin}
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		return []string{hintSubList}
	case errors.Is(err, domain.ErrConfigDeserialize), errors.Is(err, domain.ErrConfigRead):
		return []string{hintConfigPath}
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, logship.ErrServerError):
		return []string{hintAdd}
	default:
		return nil
	}
}

// printError renders err with its hints.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
	for _, h := range errorHints(err) {
		fmt.Fprintln(w, hintStyle.Render(h))
	}
}
