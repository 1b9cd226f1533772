package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// shellTarget runs a shell command for every mutation, passing the mutation
// as JSON on stdin.
type shellTarget struct {
	command string
}

// NewShellTarget returns a target running command with sh -c, or nil when
// command is blank.
func NewShellTarget(command string) MutationTarget {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return nil
	}
	return &shellTarget{command: cmd}
}

func (s *shellTarget) ApplyMutation(ctx context.Context, m Mutation) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	cmd.Stdin = bytes.NewReader(payload)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("shell target failed: %w: %s", err, string(output))
	}

	return nil
}
