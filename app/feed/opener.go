package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
	"strings"
)

type Opener struct{}

func NewOpener() *Opener {
	return &Opener{}
}

// Run executes command with urls appended to its arguments.
func (o *Opener) Run(ctx context.Context, command []string, urls []string) error {
	if len(command) == 0 {
		return fmt.Errorf("no command configured")
	}
	if len(urls) == 0 {
		return nil
	}

	args := append(slices.Clone(command[1:]), urls...)
	cmd := exec.CommandContext(ctx, command[0], args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run %s: %w (output: %s)", command[0], err, strings.TrimSpace(string(output)))
	}

	slog.Debug("Command finished", "command", command[0], "urls", len(urls))
	return nil
}
