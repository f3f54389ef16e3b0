package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// CommandRunner runs an external tool with an argument vector. No shell is
// involved, so arguments are passed through verbatim.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner is the os/exec backed CommandRunner
type ExecRunner struct {
	logger zerolog.Logger
}

// NewExecRunner creates a runner that logs every invocation at debug level
func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger.With().Str("component", "exec").Logger()}
}

// Run blocks until the process exits or ctx is cancelled. Output is
// returned even when the process exits non-zero.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug().Str("tool", name).Strs("args", args).Msg("Running external tool")

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.Bytes(), stderr.Bytes(), ctxErr
		}
		if !IsExitError(err) {
			return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%w: %s: %v", ErrToolNotFound, name, err)
		}
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// IsExitError reports whether err is a tool that ran and exited non-zero
func IsExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// LookPath resolves a tool name on PATH, wrapping ErrToolNotFound
func LookPath(names ...string) (string, error) {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s found on PATH", ErrToolNotFound, strings.Join(names, ", "))
}

// Tail returns at most the last n bytes of output as a trimmed string
func Tail(output []byte, n int) string {
	if len(output) > n {
		output = output[len(output)-n:]
	}
	return strings.TrimSpace(string(output))
}
