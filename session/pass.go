package session

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// PassCommand looks up passwords with the pass(1) password manager.
// The first line of `pass show <entry>` is the password.
type PassCommand struct {
	// Program defaults to "pass".
	Program string
	Log     zerolog.Logger
}

func (p PassCommand) Lookup(ctx context.Context, entry string) (string, error) {
	program := p.Program
	if program == "" {
		program = "pass"
	}

	p.Log.Debug().Str("entry", entry).Msgf("running external command `%s show`", program)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, program, "show", entry)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		p.Log.Warn().Err(err).Str("stderr", stderr.String()).Msg("pass exited with error")
		return "", fmt.Errorf("%w: %s: %w: %s", ErrPasswordLookup, entry, err, strings.TrimSpace(stderr.String()))
	}

	first, _, _ := strings.Cut(stdout.String(), "\n")
	first = strings.TrimRight(first, "\r")
	if first == "" {
		return "", fmt.Errorf("%w: no password found for entry: %s", ErrPasswordLookup, entry)
	}
	return first, nil
}
