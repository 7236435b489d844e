package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/logship/logsh/internal/core/domain"
)

// StaticCredential is a password given up front, e.g. on the command line.
type StaticCredential string

// Fetch returns the password.
func (s StaticCredential) Fetch(_ context.Context) (string, error) {
	if s == "" {
		return "", errors.New("password is empty")
	}
	return string(s), nil
}

// PromptCredential reads a password from the terminal without echo.
type PromptCredential struct {
	Prompt string
	In     *os.File
	Out    io.Writer
}

// NewPromptCredential prompts on stderr and reads from stdin.
func NewPromptCredential(prompt string) *PromptCredential {
	return &PromptCredential{Prompt: prompt, In: os.Stdin, Out: os.Stderr}
}

// Fetch prompts for and reads the password.
func (p *PromptCredential) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot prompt for password: stdin is not a terminal (use --password)")
	}

	fmt.Fprint(p.Out, p.Prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(secret) == 0 {
		return "", errors.New("password is empty")
	}
	return string(secret), nil
}

// Ensure the sources implement the interface.
var (
	_ domain.CredentialSource = StaticCredential("")
	_ domain.CredentialSource = (*PromptCredential)(nil)
)
