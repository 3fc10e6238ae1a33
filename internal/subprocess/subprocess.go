// Package subprocess runs speech synthesizer binaries with their input
// attached before the process starts.
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrTimeout is returned when a process outlives its timeout.
var ErrTimeout = errors.New("subprocess timed out")

// Manager serializes subprocess execution and bounds each run with a
// timeout.
type Manager struct {
	mu             sync.Mutex
	defaultTimeout time.Duration
}

// New creates a manager. A non-positive timeout defaults to 5 seconds.
func New(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Manager{
		defaultTimeout: timeout,
	}
}

// Timeout returns the timeout applied to contexts without a deadline.
func (m *Manager) Timeout() time.Duration {
	return m.defaultTimeout
}

// ExecuteWithStdin runs name with input on stdin and returns its stdout.
func (m *Manager) ExecuteWithStdin(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.defaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	// Stdin must be in place before Start.
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start process: %w", err)
	}

	err := cmd.Wait()
	if cerr := contextError(ctx); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return nil, fmt.Errorf("subprocess failed: %w: %s", err, s)
		}
		return nil, fmt.Errorf("subprocess failed: %w", err)
	}

	return stdout.Bytes(), nil
}

// Execute runs name without input and returns its combined output.
func (m *Manager) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.defaultTimeout)
		defer cancel()
	}

	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if cerr := contextError(ctx); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, fmt.Errorf("subprocess failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return output, nil
}

func contextError(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return fmt.Errorf("subprocess cancelled: %w", err)
	}
}

// CheckBinary checks if a binary exists in the system PATH.
func CheckBinary(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("binary '%s' not found in PATH: %w", name, err)
	}
	return nil
}

// Options describes one process run.
type Options struct {
	// Input is written to stdin. Empty input runs without stdin.
	Input string

	Command string
	Args    []string

	// Timeout overrides the manager timeout.
	Timeout time.Duration
}

// Run checks the binary exists and runs it with every protection applied.
func (m *Manager) Run(ctx context.Context, opts Options) ([]byte, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = m.defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := CheckBinary(opts.Command); err != nil {
		return nil, err
	}

	if opts.Input != "" {
		return m.ExecuteWithStdin(ctx, opts.Input, opts.Command, opts.Args...)
	}
	return m.Execute(ctx, opts.Command, opts.Args...)
}
