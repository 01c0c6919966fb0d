// SPDX-License-Identifier: MPL-2.0

package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

// fileFormatVersion is written to every state file.
const fileFormatVersion = 1

type (
	// FileStore keeps the tree and working directory in one TOML document.
	// Every save rewrites the whole document through a temporary file.
	FileStore struct {
		mu   sync.Mutex
		path string
	}

	stateDocument struct {
		Version   int       `toml:"version"`
		Directory string    `toml:"directory,omitempty"`
		Root      *vfs.Node `toml:"root,omitempty"`
	}
)

// NewFileStore returns a FileStore writing to path. The file and its parent
// directory are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the state file.
func (s *FileStore) Path() string { return s.path }

// LoadSnapshot decodes the saved tree.
func (s *FileStore) LoadSnapshot(ctx context.Context) (*vfs.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Root, nil
}

// SaveSnapshot replaces the saved tree.
func (s *FileStore) SaveSnapshot(ctx context.Context, root *vfs.Node) error {
	if err := checkEncoding(root); err != nil {
		return err
	}
	return s.update(ctx, func(doc *stateDocument) { doc.Root = root })
}

// LoadDirectory returns the saved working directory.
func (s *FileStore) LoadDirectory(ctx context.Context) (vpath.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(ctx)
	if err != nil {
		return "", err
	}
	return vpath.Path(doc.Directory), nil
}

// SaveDirectory replaces the saved working directory.
func (s *FileStore) SaveDirectory(ctx context.Context, cwd vpath.Path) error {
	if err := checkDirectoryEncoding(cwd); err != nil {
		return err
	}
	return s.update(ctx, func(doc *stateDocument) { doc.Directory = string(cwd) })
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) update(ctx context.Context, mutate func(*stateDocument)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(ctx)
	if err != nil && !errors.Is(err, ErrCorruptSnapshot) {
		return err
	}
	mutate(doc)
	doc.Version = fileFormatVersion
	return s.write(ctx, doc)
}

// read returns an empty document when the file does not exist yet.
func (s *FileStore) read(ctx context.Context) (*stateDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &stateDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file %s: %w", s.path, err)
	}
	var doc stateDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return &stateDocument{}, fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, s.path, err)
	}
	return &doc, nil
}

func (s *FileStore) write(ctx context.Context, doc *stateDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".termemu-state-*.toml")
	if err != nil {
		return fmt.Errorf("creating temporary state file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
