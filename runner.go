package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

type RunOptions struct {
	Superuser     bool
	CaptureStderr bool
}

// Runner executes an external program given as an argument vector.
// A program that starts but exits non-zero yields an *ExitError; failures to
// start it at all are returned as-is.
type Runner interface {
	Run(ctx context.Context, argv []string, opts RunOptions) (string, error)
}

type ExitError struct {
	Argv   []string
	Status int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", strings.Join(e.Argv, " "), e.Status)
}

type execRunner struct {
	elevate []string
	timeout time.Duration
	euid    func() int
}

func newExecRunner(elevate []string, timeout time.Duration) *execRunner {
	return &execRunner{
		elevate: append([]string{}, elevate...),
		timeout: timeout,
		euid:    os.Geteuid,
	}
}

func (r *execRunner) Run(ctx context.Context, argv []string, opts RunOptions) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("run: empty command")
	}

	full := r.commandLine(argv, opts)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if opts.CaptureStderr {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), &ExitError{
			Argv:   argv,
			Status: exitErr.ExitCode(),
			Stderr: stderr.String(),
		}
	}
	return stdout.String(), err
}

func (r *execRunner) commandLine(argv []string, opts RunOptions) []string {
	if !opts.Superuser || len(r.elevate) == 0 || r.euid() == 0 {
		return argv
	}
	full := make([]string, 0, len(r.elevate)+len(argv))
	full = append(full, r.elevate...)
	return append(full, argv...)
}
