// Package envfile implements a key-value store on top of a flat KEY=VALUE
// text file.
//
// Every call opens the file fresh; nothing is cached between calls. Reads
// stream the file line by line. Writes rebuild the whole file in memory and
// replace it with a single rename, so the file on disk is always either the
// old or the new content.
//
// Lines that are neither pairs nor comments are kept verbatim and reported
// through the Store's logger. They never fail an operation.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// maxLineSize caps a single line. Longer lines fail with ErrLineRead.
const maxLineSize = 1 << 20

var errIsDir = errors.New("is a directory")

// Store runs get, put, scan and delete against env files.
type Store struct {
	logger *slog.Logger
}

// New returns a Store that reports unrecognized lines to logger.
// A nil logger means slog.Default().
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Get returns the first pair whose key is key.
func (s *Store) Get(path, key string) (Pair, error) {
	if err := validateKey(path, key); err != nil {
		return Pair{}, err
	}
	prefix := key + "="
	var (
		found Pair
		ok    bool
	)
	err := s.each(path, func(n int, raw string) bool {
		if !strings.HasPrefix(raw, prefix) {
			return true
		}
		line := s.parse(path, n, raw)
		if line.Kind != KindPair || line.Pair.Key != key {
			return true
		}
		found, ok = line.Pair, true
		return false
	})
	if err != nil {
		return Pair{}, err
	}
	if !ok {
		return Pair{}, &Error{Kind: ErrKeyNotFound, Path: path, Key: key}
	}
	return found, nil
}

// Scan returns every pair whose line starts with prefix, in file order.
// Duplicate keys are returned as many times as they appear. The result is
// empty, not nil, when nothing matches.
func (s *Store) Scan(path, prefix string) ([]Pair, error) {
	pairs := []Pair{}
	err := s.each(path, func(n int, raw string) bool {
		if !strings.HasPrefix(raw, prefix) {
			return true
		}
		if line := s.parse(path, n, raw); line.Kind == KindPair {
			pairs = append(pairs, line.Pair)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// Lines returns every line of the file, classified.
func (s *Store) Lines(path string) ([]Line, error) {
	var lines []Line
	err := s.each(path, func(n int, raw string) bool {
		lines = append(lines, s.parse(path, n, raw))
		return true
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// each calls fn for every line of path until fn returns false. The file is
// closed before each returns.
func (s *Store) each(path string, fn func(n int, raw string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return &Error{Kind: ErrFileOpen, Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &Error{Kind: ErrFileOpen, Path: path, Err: err}
	}
	if info.IsDir() {
		return &Error{Kind: ErrFileOpen, Path: path, Err: errIsDir}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for scanner.Scan() {
		n++
		raw := scanner.Text()
		if !utf8.ValidString(raw) {
			return &Error{Kind: ErrLineRead, Path: path, Line: n, Err: errors.New("invalid UTF-8")}
		}
		if !fn(n, raw) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return &Error{Kind: ErrLineRead, Path: path, Line: n + 1, Err: err}
	}
	return nil
}

func (s *Store) parse(path string, n int, raw string) Line {
	line := ParseLine(raw)
	line.Number = n
	if line.Kind == KindUnrecognized {
		if strings.TrimSpace(raw) == "" {
			s.logger.Debug("blank line", "path", path, "line", n)
		} else {
			s.logger.Warn("unrecognized line", "path", path, "line", n, "text", raw)
		}
	}
	return line
}

func validateKey(path, key string) error {
	if key == "" {
		return &Error{Kind: ErrInvalidKey, Path: path, Err: errors.New("key is empty")}
	}
	if i := strings.IndexAny(key, "=\r\n"); i >= 0 {
		return &Error{Kind: ErrInvalidKey, Path: path, Key: key, Err: fmt.Errorf("key contains %q", key[i])}
	}
	return nil
}

func validateValue(path, key, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return &Error{Kind: ErrInvalidValue, Path: path, Key: key, Err: errors.New("value spans multiple lines")}
	}
	return nil
}
