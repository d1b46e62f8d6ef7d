package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for credentials.
type Prompter interface {
	Prompt(ctx context.Context) (username, password string, err error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context) (string, string, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(ctx context.Context) (string, string, error) {
	return f(ctx)
}

// TerminalPrompter reads the username from In and the password without echo
// when In is a terminal.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	// Username skips the username question when set.
	Username string
}

// NewTerminalPrompter prompts on stdin and stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// Prompt implements Prompter.
func (p *TerminalPrompter) Prompt(ctx context.Context) (string, string, error) {
	reader := bufio.NewReader(p.In)

	username := p.Username
	if username == "" {
		_, _ = fmt.Fprint(p.Out, "Username: ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}

		username = strings.TrimSpace(line)
	}

	_, _ = fmt.Fprint(p.Out, "Password: ")

	if file, ok := p.In.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		password, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(p.Out)

		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}

		return username, string(password), ctx.Err()
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}

	return username, strings.TrimRight(line, "\r\n"), ctx.Err()
}
