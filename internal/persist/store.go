// SPDX-License-Identifier: MPL-2.0

package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/exp/slices"

	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

const (
	// BackendNone disables persistence.
	BackendNone Backend = "none"
	// BackendMemory keeps state in process memory.
	BackendMemory Backend = "memory"
	// BackendFile stores state in a TOML file.
	BackendFile Backend = "file"
	// BackendSQLite stores state in a SQLite database.
	BackendSQLite Backend = "sqlite"
)

var (
	// ErrInvalidBackend is the sentinel error wrapped by InvalidBackendError.
	ErrInvalidBackend = errors.New("invalid persistence backend")

	// ErrCorruptSnapshot is returned when stored state cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrClosed is returned when using a closed store or writer.
	ErrClosed = errors.New("persistence closed")

	// ErrInvalidEncoding is the sentinel error wrapped by InvalidEncodingError.
	ErrInvalidEncoding = errors.New("not valid UTF-8")
)

type (
	// Backend selects a Store implementation.
	Backend string

	// InvalidBackendError is returned when a Backend value is not recognized.
	InvalidBackendError struct {
		Value Backend
	}

	// InvalidEncodingError is returned when a name or file content under Path
	// cannot be stored because it is not valid UTF-8. Nothing is written.
	InvalidEncodingError struct {
		Path vpath.Path
	}

	// Store loads and saves session state. Load methods return zero values
	// and a nil error when nothing has been saved yet.
	Store interface {
		LoadSnapshot(ctx context.Context) (*vfs.Node, error)
		SaveSnapshot(ctx context.Context, root *vfs.Node) error
		LoadDirectory(ctx context.Context) (vpath.Path, error)
		SaveDirectory(ctx context.Context, cwd vpath.Path) error
		Close() error
	}

	// MemoryStore keeps state in memory. The zero value is ready to use.
	MemoryStore struct {
		mu   sync.Mutex
		root *vfs.Node
		cwd  vpath.Path
	}

	nopStore struct{}
)

// String returns the string representation of the Backend.
func (b Backend) String() string { return string(b) }

// IsValid returns whether the Backend is one of the defined backends.
func (b Backend) IsValid() (bool, []error) {
	switch b {
	case BackendNone, BackendMemory, BackendFile, BackendSQLite:
		return true, nil
	default:
		return false, []error{&InvalidBackendError{Value: b}}
	}
}

// NeedsPath reports whether the backend stores data at a filesystem path.
func (b Backend) NeedsPath() bool {
	return b == BackendFile || b == BackendSQLite
}

// Error implements the error interface for InvalidBackendError.
func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("invalid persistence backend %q (valid: none, memory, file, sqlite)", e.Value)
}

// Unwrap returns ErrInvalidBackend for errors.Is() compatibility.
func (e *InvalidBackendError) Unwrap() error { return ErrInvalidBackend }

// Error implements the error interface for InvalidEncodingError.
func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("cannot save %s: not valid UTF-8", e.Path)
}

// Unwrap returns ErrInvalidEncoding for errors.Is() compatibility.
func (e *InvalidEncodingError) Unwrap() error { return ErrInvalidEncoding }

// checkEncoding reports the first node, in name order, whose name or content
// is not valid UTF-8. TOML and JSON encoders cannot carry such bytes intact.
func checkEncoding(root *vfs.Node) error {
	return walkEncoding(root, vpath.Root)
}

func walkEncoding(n *vfs.Node, p vpath.Path) error {
	if n == nil {
		return nil
	}
	if !utf8.ValidString(n.Content) {
		return &InvalidEncodingError{Path: p}
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		child := vpath.Join(p, name)
		if !utf8.ValidString(name) {
			return &InvalidEncodingError{Path: child}
		}
		if err := walkEncoding(n.Children[name], child); err != nil {
			return err
		}
	}
	return nil
}

func checkDirectoryEncoding(cwd vpath.Path) error {
	if !utf8.ValidString(string(cwd)) {
		return &InvalidEncodingError{Path: cwd}
	}
	return nil
}

// Open returns the Store for backend. path is required for file and sqlite.
func Open(ctx context.Context, backend Backend, path string) (Store, error) {
	if ok, errs := backend.IsValid(); !ok {
		return nil, errs[0]
	}
	if backend.NeedsPath() && path == "" {
		return nil, fmt.Errorf("persistence backend %s requires a path", backend)
	}
	switch backend {
	case BackendMemory:
		return &MemoryStore{}, nil
	case BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		return OpenSQLite(ctx, path)
	default:
		return nopStore{}, nil
	}
}

// LoadSnapshot returns a copy of the saved tree.
func (m *MemoryStore) LoadSnapshot(context.Context) (*vfs.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root.Clone(), nil
}

// SaveSnapshot stores a copy of root.
func (m *MemoryStore) SaveSnapshot(_ context.Context, root *vfs.Node) error {
	if err := checkEncoding(root); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = root.Clone()
	return nil
}

// LoadDirectory returns the saved working directory.
func (m *MemoryStore) LoadDirectory(context.Context) (vpath.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cwd, nil
}

// SaveDirectory stores cwd.
func (m *MemoryStore) SaveDirectory(_ context.Context, cwd vpath.Path) error {
	if err := checkDirectoryEncoding(cwd); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cwd = cwd
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func (nopStore) LoadSnapshot(context.Context) (*vfs.Node, error) { return nil, nil }

func (nopStore) SaveSnapshot(context.Context, *vfs.Node) error { return nil }

func (nopStore) LoadDirectory(context.Context) (vpath.Path, error) { return "", nil }

func (nopStore) SaveDirectory(context.Context, vpath.Path) error { return nil }

func (nopStore) Close() error { return nil }
