// Package exec runs the shell commands that produce coverage reports.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ExecutionResult holds the outcome of a command execution.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs external commands. This allows for mocking in tests.
type Executor interface {
	Run(ctx context.Context, dir, command string, args ...string) (*ExecutionResult, error)
}

// CommandExecutor runs commands on the host system.
type CommandExecutor struct{}

// NewCommandExecutor creates a new CommandExecutor.
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{}
}

// Run executes command in dir and returns its result. A non-zero exit code
// is reported in the result, not as an error.
func (e *CommandExecutor) Run(ctx context.Context, dir, command string, args ...string) (*ExecutionResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
	}

	return &ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}, nil
}

// Shell runs a shell command line in dir and returns its stdout. A non-zero
// exit code is an error carrying stderr.
func Shell(ctx context.Context, e Executor, dir, line string) (string, error) {
	res, err := e.Run(ctx, dir, "sh", "-c", line)
	if err != nil {
		return "", fmt.Errorf("failed to run %q: %w", line, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%q exited with %d: %s", line, res.ExitCode, res.Stderr)
	}
	return res.Stdout, nil
}
