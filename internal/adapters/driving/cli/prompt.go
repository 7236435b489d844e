package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/logship/logsh/internal/adapters/driven/browser"
	"github.com/logship/logsh/internal/core/ports/driven"
)

// Ensure Prompter implements the interface.
var _ driven.AuthPrompter = (*Prompter)(nil)

var codeStyle = lipgloss.NewStyle().Bold(true)

// Prompter shows OAuth login steps on the terminal and optionally opens
// the browser.
type Prompter struct {
	out    io.Writer
	opener browser.Opener
}

// NewPrompter writes to out. A nil opener never launches a browser.
func NewPrompter(out io.Writer, opener browser.Opener) *Prompter {
	return &Prompter{out: out, opener: opener}
}

// DeviceCode prints the verification URI and user code.
func (p *Prompter) DeviceCode(verificationURI, userCode string, expiry time.Time) {
	fmt.Fprintf(p.out, "To sign in, visit %s and enter the code %s\n", verificationURI, codeStyle.Render(userCode))
	if !expiry.IsZero() {
		fmt.Fprintf(p.out, "The code expires at %s.\n", expiry.Local().Format(time.Kitchen))
	}
	if browser.Open(p.opener, verificationURI) {
		fmt.Fprintln(p.out, "Opened the verification page in your browser.")
	}
	fmt.Fprintln(p.out, "Waiting for approval...")
}

// AuthorizeURL prints the login URL and tries to open it.
func (p *Prompter) AuthorizeURL(url string) {
	if browser.Open(p.opener, url) {
		fmt.Fprintln(p.out, "Continue the login in your browser.")
		fmt.Fprintf(p.out, "If nothing opened, visit: %s\n", url)
		return
	}
	fmt.Fprintf(p.out, "To sign in, visit: %s\n", url)
}
