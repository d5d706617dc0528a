package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal asks for login credentials on the controlling terminal. Input is
// passed through as typed; the server does the validation.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	hidden bool
}

// NewTerminal prompts on stdin/stdout. The password is read without echo when
// stdin is a terminal.
func NewTerminal() *Terminal {
	fd := int(os.Stdin.Fd())
	return &Terminal{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		fd:     fd,
		hidden: term.IsTerminal(fd),
	}
}

// New prompts on arbitrary streams, always echoing input.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Phone(ctx context.Context) (string, error) {
	return t.ask(ctx, "Enter phone number:")
}

func (t *Terminal) Password(ctx context.Context) (string, error) {
	if !t.hidden {
		return t.ask(ctx, "Enter password:")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(t.out, "Enter password: ")
	secret, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

func (t *Terminal) Code(ctx context.Context) (string, error) {
	return t.ask(ctx, "Enter code:")
}

func (t *Terminal) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(t.out, question+" ")
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read answer to %q: %w", question, err)
	}
	return strings.TrimSpace(line), nil
}
