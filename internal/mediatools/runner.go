// Package mediatools wraps the external programs used to inspect videos and
// render previews, plus the pure-Go text extractors.
package mediatools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a program and returns its combined output.
type Runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// ExecRunner runs binaries with os/exec.
func ExecRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

func binaryOr(binary, fallback string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return fallback
	}
	return binary
}
