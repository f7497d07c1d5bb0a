package envfile

import (
	"bufio"
	"os"
	"path/filepath"
)

// Swapped out by tests to inject failures.
var (
	createTemp   = os.CreateTemp
	renameFile   = os.Rename
	beforeCommit func(target string)
)

// Put sets key to value. The first line holding key is replaced in place;
// later duplicates keep their old value. If no line holds key, key=value is
// appended. The file must already exist.
func (s *Store) Put(path, key, value string) error {
	if err := validateKey(path, key); err != nil {
		return err
	}
	if err := validateValue(path, key, value); err != nil {
		return err
	}
	lines, err := s.Lines(path)
	if err != nil {
		return err
	}

	entry := Pair{Key: key, Value: value}.String()
	out := make([]string, 0, len(lines)+1)
	replaced := false
	for _, line := range lines {
		if !replaced && line.Kind == KindPair && line.Pair.Key == key {
			out = append(out, entry)
			replaced = true
			continue
		}
		out = append(out, line.Raw)
	}
	if !replaced {
		out = append(out, entry)
	}
	return rewrite(path, out)
}

// Delete removes every line holding key. Deleting a key that is not present
// still rewrites the file and returns nil.
func (s *Store) Delete(path, key string) error {
	if err := validateKey(path, key); err != nil {
		return err
	}
	lines, err := s.Lines(path)
	if err != nil {
		return err
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.Kind == KindPair && line.Pair.Key == key {
			continue
		}
		out = append(out, line.Raw)
	}
	return rewrite(path, out)
}

// rewrite replaces path with lines, each terminated by a newline. The content
// goes to a temporary file next to the target which is then renamed over it,
// so readers never see a partial file.
func rewrite(path string, lines []string) error {
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := createTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return &Error{Kind: ErrRewriteWrite, Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	fail := func(err error) error {
		tmp.Close()
		return &Error{Kind: ErrRewriteWrite, Path: path, Err: err}
	}
	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return fail(err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return &Error{Kind: ErrRewriteWrite, Path: path, Err: err}
	}

	if beforeCommit != nil {
		beforeCommit(target)
	}
	if err := renameFile(tmpPath, target); err != nil {
		return &Error{Kind: ErrRewriteCommit, Path: path, Err: err}
	}
	committed = true
	return nil
}
