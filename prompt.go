package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// readValueFromPrompt reads a value from the terminal without echoing it, so
// secrets stay out of shell history.
func readValueFromPrompt(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--prompt needs an interactive terminal; use --file instead")
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read value: %w", err)
	}
	return string(b), nil
}
