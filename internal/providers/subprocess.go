package providers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.dot.industries/vx/internal/provider"
)

// runSubprocess spawns name with args, an explicit environment, and a
// timeout, returning trimmed stdout. Stdin is closed immediately so the
// subprocess never blocks waiting for input. Grounded on
// systmms-dsops/internal/providers/pass.go's subprocess-provider pattern
// (spec §9: "Spawn with explicit environment, close stdin... enforce
// timeouts, reap on cancellation").
func runSubprocess(ctx context.Context, timeout time.Duration, name string, env []string, args ...string) (string, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", fmt.Errorf("%s: timed out: %w", name, ctx.Err())
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimRight(stdout.String(), "\n"), nil
}

// runSubprocessStdin is like runSubprocess but feeds stdin (e.g. `pass
// insert -m` reads the new secret from stdin) instead of closing it.
func runSubprocessStdin(ctx context.Context, env []string, stdin string, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// checkAvailable reports whether name is on PATH, used by Validate to fail
// fast and name the provider rather than surfacing a confusing exec error
// per-key later.
func checkAvailable(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s: not found on PATH", name)
	}
	return nil
}
