package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Sentinel errors describing why an operation failed. Every error returned by
// a Store is an *Error wrapping exactly one of these, so callers can use
// errors.Is.
var (
	// ErrFileOpen is returned when the env file cannot be opened for reading.
	ErrFileOpen = errors.New("failed to open the file")

	// ErrKeyNotFound is returned by Get when no line holds the key.
	ErrKeyNotFound = errors.New("not found key in env file")

	// ErrLineRead is returned when a line cannot be read from the file.
	ErrLineRead = errors.New("failed to read a line")

	// ErrRewriteWrite is returned when the temporary file cannot be written.
	ErrRewriteWrite = errors.New("failed to write the temporary file")

	// ErrRewriteCommit is returned when the temporary file cannot replace the env file.
	ErrRewriteCommit = errors.New("failed to replace the env file")

	// ErrInvalidKey is returned for keys that cannot round-trip through a line.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidValue is returned for values spanning more than one line.
	ErrInvalidValue = errors.New("invalid value")
)

// Error carries the failure kind together with the path, key and line it
// concerns.
type Error struct {
	Kind error
	Path string
	Key  string
	Line int
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " (key %q)", e.Key)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(cause(e.Err).Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// cause drops the *fs.PathError wrapper, whose path is already in the message.
func cause(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err
	}
	return err
}
