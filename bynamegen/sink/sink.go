// Package sink provides destinations for generated accessor files.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// OutputSink receives generated files.
// Implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to path. The path is slash-separated and
	// relative; the sink decides where it ends up.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes files below a root directory.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	// SkipUnchanged leaves files alone whose content already matches,
	// so their modification time survives repeated generation.
	SkipUnchanged bool
}

// NewFilesystemSink creates a FilesystemSink rooted at root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		Root:          root,
		Mode:          0644,
		SkipUnchanged: true,
	}
}

// WriteFile replaces the file at path with content. The write goes through
// a temporary file in the target directory followed by a rename, so readers
// never observe a partially written file.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if s.SkipUnchanged {
		if current, err := os.ReadFile(fullPath); err == nil && bytes.Equal(current, content) {
			return nil
		}
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tmp, err := os.CreateTemp(dir, ".byname-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	switch {
	case writeErr != nil:
		cleanup()
		return fmt.Errorf("write temp file: %w", writeErr)
	case closeErr != nil:
		cleanup()
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("set file mode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// ReadFile returns the current content of path below the root.
func (s *FilesystemSink) ReadFile(path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// resolve joins path to the root and rejects results outside of it.
func (s *FilesystemSink) resolve(path string) (string, error) {
	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))

	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root directory: %q", path)
	}
	return fullPath, nil
}

// MemorySink keeps generated files in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content under path.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = bytes.Clone(content)
	return nil
}

// Files returns a copy of all stored files.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.files))
	for path, content := range s.files {
		out[path] = bytes.Clone(content)
	}
	return out
}

// Get returns the content stored under path, or nil.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.files[path])
}

// WriterSink prints every file to W, preceded by a line naming its path.
// It backs dry runs.
type WriterSink struct {
	W io.Writer

	mu sync.Mutex
}

// WriteFile prints path and content.
func (s *WriterSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.W, "==> %s <==\n", path); err != nil {
		return err
	}
	_, err := s.W.Write(content)
	return err
}

// ValidatePath reports whether path is usable as a sink path: non-empty,
// relative, slash-separated, clean and free of ".." elements.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}
	// Drive letters are rejected on every platform.
	if len(path) >= 2 && path[1] == ':' && ((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}
	for _, elem := range strings.Split(path, "/") {
		if elem == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, path)
	}
	return nil
}
