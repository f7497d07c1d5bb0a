package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/riseshia/envdb/envfile"
	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	configPath string
	targetEnv  string
	logLevel   string
	logFormat  string

	store *envfile.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "envdb",
		Short: "envdb treats a .env file as a key-value store",
		Long:  "envdb reads and updates KEY=VALUE lines in an env file. Every write replaces the file atomically and leaves comments and unrelated lines untouched.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Context() == nil {
				cmd.SetContext(context.Background())
			}
			if cmd.Name() == "init" {
				return nil
			}
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to .envdb.yaml (auto-detects by walking up from cwd if not set)")
	cmd.PersistentFlags().StringVar(&a.targetEnv, "target-env", "", "path to the env file (default: target_env from config, else .env)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "diagnostics level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "diagnostics format: text or json")

	cmd.AddCommand(
		newGetCmd(a),
		newPutCmd(a),
		newScanCmd(a),
		newDeleteCmd(a),
		newRunCmd(a),
		newValidateCmd(a),
		newInitCmd(),
	)
	return cmd
}

// setup merges flags over the config file and builds the store.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.targetEnv == "" {
		a.targetEnv = cfg.TargetEnv
	}
	if a.logLevel == "" {
		a.logLevel = cfg.LogLevel
	}
	if a.logFormat == "" {
		a.logFormat = cfg.LogFormat
	}
	logger, err := newLogger(cmd.ErrOrStderr(), a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.store = envfile.New(logger)
	return nil
}

func newGetCmd(a *app) *cobra.Command {
	var mask bool
	c := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value of KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := a.store.Get(a.targetEnv, args[0])
			if err != nil {
				return err
			}
			value := pair.Value
			if mask {
				value = MaskValue(value)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
	c.Flags().BoolVar(&mask, "mask", false, "print the value masked")
	return c
}

func newPutCmd(a *app) *cobra.Command {
	var fromFile string
	var promptValue bool
	c := &cobra.Command{
		Use:   "put KEY [VALUE|--file PATH|--prompt]",
		Short: "Set KEY, replacing its first occurrence or appending it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			sources := 0
			if len(args) == 2 {
				sources++
			}
			if fromFile != "" {
				sources++
			}
			if promptValue {
				sources++
			}
			if sources != 1 {
				return errors.New("provide exactly one of VALUE, --file or --prompt")
			}

			var value string
			switch {
			case len(args) == 2:
				value = args[1]
			case fromFile != "":
				raw, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read value file: %w", err)
				}
				value = strings.TrimRight(string(raw), "\r\n")
			default:
				v, err := readValueFromPrompt("Value: ")
				if err != nil {
					return err
				}
				value = v
			}
			return a.store.Put(a.targetEnv, key, value)
		},
	}
	c.Flags().StringVar(&fromFile, "file", "", "read the value from a file (trailing newline trimmed)")
	c.Flags().BoolVar(&promptValue, "prompt", false, "prompt for the value (no echo)")
	return c
}

func newScanCmd(a *app) *cobra.Command {
	var format string
	var stripPrefix bool
	c := &cobra.Command{
		Use:   "scan PREFIX",
		Short: "Print every pair whose line starts with PREFIX",
		Long: `Print every KEY=VALUE pair whose line starts with PREFIX, in file order.

Formats:
  plain   KEY=VALUE lines
  json    array of {"key","value"} objects
  shell   export KEY='VALUE' lines, suitable for eval

Exits non-zero when nothing matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := args[0]
			if !knownFormat(format) {
				return fmt.Errorf("unknown format %q (use plain, json or shell)", format)
			}
			pairs, err := a.store.Scan(a.targetEnv, prefix)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				return fmt.Errorf("no keys with prefix %q in %s", prefix, a.targetEnv)
			}
			if stripPrefix {
				for i := range pairs {
					pairs[i].Key = strings.TrimPrefix(pairs[i].Key, prefix)
				}
			}
			return writePairs(cmd.OutOrStdout(), pairs, format)
		},
	}
	c.Flags().StringVar(&format, "format", "plain", "output format: plain, json or shell")
	c.Flags().BoolVar(&stripPrefix, "strip-prefix", false, "remove PREFIX from printed keys")
	return c
}

func knownFormat(format string) bool {
	switch format {
	case "", "plain", "json", "shell":
		return true
	}
	return false
}

// isShellName reports whether key is a valid POSIX shell variable name.
func isShellName(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func writePairs(w io.Writer, pairs []envfile.Pair, format string) error {
	switch format {
	case "plain", "":
		for _, p := range pairs {
			fmt.Fprintln(w, p.String())
		}
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pairs)
	case "shell":
		// Nothing is written unless every key is safe to export.
		for _, p := range pairs {
			if !isShellName(p.Key) {
				return fmt.Errorf("key %q is not a valid shell variable name", p.Key)
			}
		}
		for _, p := range pairs {
			fmt.Fprintf(w, "export %s=%s\n", p.Key, shellQuote(p.Value))
		}
	default:
		return fmt.Errorf("unknown format %q (use plain, json or shell)", format)
	}
	return nil
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Remove every line holding KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Delete(a.targetEnv, args[0])
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var prefix string
	c := &cobra.Command{
		Use:   "run [--prefix P] -- COMMAND [ARGS...]",
		Short: "Run a command with the env file's pairs in its environment",
		Long: `Run a command with the env file's pairs added to its environment.

The command and its arguments must come after a -- separator.

Examples:
  envdb run -- node server.js
  envdb run --prefix DB_ -- ./migrate
  envdb --target-env .env.test run -- go test ./...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := a.store.Scan(a.targetEnv, prefix)
			if err != nil {
				return err
			}
			env := CollectEnv(pairs)
			fmt.Fprintf(cmd.ErrOrStderr(), "envdb: injecting %d keys from %s\n", len(env), a.targetEnv)
			return SpawnWithEnv(cmd.Context(), args[0], args[1:], env, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	c.Flags().StringVar(&prefix, "prefix", "", "only inject pairs whose line starts with this prefix")
	return c
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report unrecognized lines, unusable keys and shadowed duplicates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.store.Lines(a.targetEnv)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			problems := 0
			seen := map[string]int{}
			for _, line := range lines {
				switch line.Kind {
				case envfile.KindPair:
					key := line.Pair.Key
					if key == "" {
						fmt.Fprintf(out, "line %d: empty key %q\n", line.Number, line.Raw)
						problems++
						continue
					}
					if strings.TrimSpace(key) != key {
						fmt.Fprintf(out, "line %d: key %q has surrounding whitespace\n", line.Number, key)
						problems++
					}
					if first, ok := seen[line.Pair.Key]; ok {
						fmt.Fprintf(out, "line %d: duplicate key %s is shadowed by line %d\n", line.Number, line.Pair.Key, first)
						problems++
						continue
					}
					seen[line.Pair.Key] = line.Number
				case envfile.KindUnrecognized:
					if strings.TrimSpace(line.Raw) == "" {
						continue
					}
					fmt.Fprintf(out, "line %d: unrecognized line %q\n", line.Number, line.Raw)
					problems++
				}
			}
			if problems > 0 {
				return fmt.Errorf("%d problem(s) in %s", problems, a.targetEnv)
			}
			fmt.Fprintf(out, "%s looks good (%d keys).\n", a.targetEnv, len(seen))
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactively write .envdb.yaml and create the env file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			return runInteractiveInit(cmd.InOrStdin(), cmd.OutOrStdout(), cwd)
		},
	}
}
