package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// runInteractiveInit writes dir/.envdb.yaml from answers read on in, and
// creates the env file it points at when missing.
func runInteractiveInit(in io.Reader, out io.Writer, dir string) error {
	reader := bufio.NewReader(in)

	targetEnv := prompt(reader, out, "Env file path", defaultTargetEnv)
	logLevel := prompt(reader, out, "Log level (debug, info, warn, error)", defaultLogLevel)

	cfg := Config{TargetEnv: targetEnv, LogLevel: logLevel}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfgPath := filepath.Join(dir, DefaultConfigPath())
	if _, err := os.Stat(cfgPath); err == nil {
		resp := prompt(reader, out, fmt.Sprintf("%s exists. Overwrite? (y/N)", cfgPath), "N")
		if strings.ToLower(resp) != "y" {
			return fmt.Errorf("aborted; %s already exists", cfgPath)
		}
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgPath, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfgPath, err)
	}
	fmt.Fprintf(out, "Wrote %s\n", cfgPath)

	envPath := targetEnv
	if !filepath.IsAbs(envPath) {
		envPath = filepath.Join(dir, envPath)
	}
	f, err := os.OpenFile(envPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			fmt.Fprintf(out, "Using existing %s\n", envPath)
			return nil
		}
		return fmt.Errorf("create %s: %w", envPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create %s: %w", envPath, err)
	}
	fmt.Fprintf(out, "Created %s\n", envPath)
	return nil
}

func prompt(r *bufio.Reader, out io.Writer, msg, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", msg, def)
	} else {
		fmt.Fprintf(out, "%s: ", msg)
	}
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}
