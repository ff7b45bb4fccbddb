package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"fieldmark/internal/identity"
)

// terminalPrompter implements field.NamePrompter and field.Confirmer on the
// controlling terminal. A non-interactive stdin counts as a dismissed
// prompt, never as an error.
type terminalPrompter struct {
	in  *os.File
	out *os.File
}

func newTerminalPrompter() *terminalPrompter {
	return &terminalPrompter{in: os.Stdin, out: os.Stderr}
}

func (p *terminalPrompter) interactive() bool {
	return term.IsTerminal(int(p.in.Fd()))
}

// PromptName asks for a collector name. Blank input, EOF, or a
// non-interactive stdin dismisses the prompt.
func (p *terminalPrompter) PromptName(_ context.Context) (string, bool, error) {
	if !p.interactive() {
		return "", false, nil
	}

	fmt.Fprintf(p.out, "Collector name for today (1-%d characters, empty to cancel): ", identity.MaxNameLength)
	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil {
		// EOF: treat as dismissed.
		return "", false, nil
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", false, nil
	}
	return name, true, nil
}

// ConfirmClear asks for explicit confirmation naming the exact point count.
func (p *terminalPrompter) ConfirmClear(_ context.Context, count int) (bool, error) {
	if !p.interactive() {
		return false, nil
	}

	fmt.Fprintf(p.out, "Delete ALL %d points? This cannot be undone. [y/N]: ", count)
	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// readPassphrase reads a passphrase without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(data), nil
}
