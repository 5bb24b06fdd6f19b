package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/dtnitsch/lwp-links/pkg/walker"
)

// LockName is the file a rewrite pass holds in the root while it runs.
const LockName = ".lwp-links.lock"

// ErrLocked is returned by Lock when another pass already holds the root.
var ErrLocked = errors.New("document tree is locked by another pass")

// Storage is a document tree rooted at a directory on disk. Reads go through
// fs.FS so audits can run against an in-memory tree in tests.
type Storage struct {
	root string
	fsys fs.FS
}

// Open checks that root is a directory and returns storage rooted there.
func Open(root string) (*Storage, error) {
	if err := walker.CheckRoot(root); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Storage{root: abs, fsys: os.DirFS(abs)}, nil
}

// Root returns the absolute root directory.
func (s *Storage) Root() string {
	return s.root
}

// FS exposes the tree as a read-only filesystem with slash-separated names.
func (s *Storage) FS() fs.FS {
	return s.fsys
}

func (s *Storage) osPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean(name)))
}

func (s *Storage) ReadFile(name string) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

// SaveFile replaces the content of an existing document, keeping its mode.
func (s *Storage) SaveFile(name string, content []byte) error {
	p := s.osPath(name)
	mode := os.FileMode(0644)
	if info, err := os.Stat(p); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(p, content, mode); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

// Lock takes the single-writer lock for the tree. The returned function
// releases it.
func (s *Storage) Lock() (func() error, error) {
	p := filepath.Join(s.root, LockName)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}
	return func() error { return os.Remove(p) }, nil
}
