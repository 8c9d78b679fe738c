// Package generator invokes the external data generator as an opaque
// subprocess. The pipeline only cares about its exit code; all artifact
// knowledge lives in the staging configuration.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/openclaw/predmarkets/internal/logfields"
)

// Runner executes a fixed argv with the repository as working directory,
// inheriting stdio so generator output lands in the scheduler's capture.
type Runner struct {
	command []string
	dir     string
	timeout time.Duration
}

// New creates a Runner. A zero timeout means the run blocks until the
// subprocess exits.
func New(command []string, dir string, timeout time.Duration) *Runner {
	return &Runner{command: command, dir: dir, timeout: timeout}
}

// Run executes the generator once. A non-zero exit is returned as an error
// wrapping the *exec.ExitError so callers can recover the exit code.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.command) == 0 {
		return errors.New("generator command is empty")
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Dir = r.dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	slog.Debug("Running generator", slog.String("command", r.command[0]), logfields.Path(r.dir))

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("generator exited with code %d: %w", exitErr.ExitCode(), err)
		}
		return fmt.Errorf("generator failed to start: %w", err)
	}

	slog.Info("Generator finished",
		slog.String("command", r.command[0]),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}
