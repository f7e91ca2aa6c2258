package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// runCommand executes an external tool, folding its combined output into
// the error on failure.
func runCommand(ctx context.Context, logger *slog.Logger, name string, args ...string) error {
	logger.Debug("running command", "cmd", name, "args", strings.Join(args, " "))
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// commandOutput executes an external tool and returns its standard output.
func commandOutput(ctx context.Context, logger *slog.Logger, name string, args ...string) (string, error) {
	logger.Debug("running command", "cmd", name, "args", strings.Join(args, " "))
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}
