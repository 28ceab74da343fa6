package toolrunner

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

// Invocation describes a single external tool call: the executable, its
// argument vector, and an optional working directory. Arguments are never
// passed through a shell. When StdoutFile is set the tool's standard output
// is streamed to that file instead of being buffered.
type Invocation struct {
	Tool       string
	Args       []string
	Dir        string
	StdoutFile string
}

// Runner executes external tools synchronously.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ToolError reports a tool invocation that did not complete successfully.
// ExitCode is -1 when the process never ran or was killed by a signal.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d)", e.Tool, e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// ExecRunner runs tools via os/exec. A nonzero Timeout bounds every
// invocation; cancelling the context kills the subprocess.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, inv Invocation) error {
	tool := strings.TrimSpace(inv.Tool)
	if tool == "" {
		return errors.New("tool is required")
	}
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("tool %s not found: %w", tool, err)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, tool, inv.Args...)
	cmd.Dir = inv.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if inv.StdoutFile != "" {
		f, err := os.Create(inv.StdoutFile)
		if err != nil {
			return fmt.Errorf("create %s stdout file: %w", tool, err)
		}
		defer func() { _ = f.Close() }()
		cmd.Stdout = f
	}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		return &ToolError{
			Tool:     tool,
			Args:     inv.Args,
			ExitCode: exitCode,
			Output:   output,
			Err:      err,
		}
	}
	return nil
}
