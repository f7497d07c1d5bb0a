package main

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/riseshia/envdb/envfile"
)

// SpawnWithEnv runs command with env layered over the current environment.
func SpawnWithEnv(ctx context.Context, command string, args []string, env map[string]string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Stdin = os.Stdin

	merged := os.Environ()
	for k, v := range env {
		merged = append(merged, k+"="+v)
	}
	cmd.Env = merged

	return cmd.Run()
}

// CollectEnv turns scanned pairs into an environment. As with get, the first
// occurrence of a duplicated key wins.
func CollectEnv(pairs []envfile.Pair) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if _, ok := out[p.Key]; ok {
			continue
		}
		out[p.Key] = p.Value
	}
	return out
}

func MaskValue(value string) string {
	if value == "" {
		return "(empty)"
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return "****"
	}
	return string(runes[:2]) + "****" + string(runes[len(runes)-2:])
}

// shellQuote applies a minimal POSIX-safe single-quote escaping.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r == '_' || r == '-' || r == '.' || r == '/' || r == ':' || r == '@' || r == '+' || (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	// ' -> '"'"'
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
