// SPDX-License-Identifier: MPL-2.0

package vfs

import (
	"sync"

	"github.com/termemu/termemu/pkg/vpath"
)

// FileSystem owns one virtual tree. All paths passed to it must be canonical;
// callers resolve user input with vpath.Resolver first.
type FileSystem struct {
	mu         sync.RWMutex
	root       *Node
	generation uint64
}

// New returns a FileSystem over root. A nil or non-directory root is replaced
// by an empty directory.
func New(root *Node) *FileSystem {
	if !root.IsDir() {
		root = NewDirectory()
	}
	root.fillChildren()
	return &FileSystem{root: root}
}

// Generation returns a counter that increases on every successful mutation.
func (fs *FileSystem) Generation() uint64 {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.generation
}

// Snapshot returns a deep copy of the whole tree.
func (fs *FileSystem) Snapshot() *Node {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.root.Clone()
}

// Replace swaps the whole tree for root, e.g. on reset or after loading a
// persisted snapshot.
func (fs *FileSystem) Replace(root *Node) {
	if !root.IsDir() {
		root = NewDirectory()
	}
	root.fillChildren()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.root = root
	fs.generation++
}

// Lookup returns a deep copy of the node at p.
func (fs *FileSystem) Lookup(p vpath.Path) (*Node, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(p)
	if n == nil {
		return nil, false
	}
	return n.Clone(), true
}

// Exists reports whether any node lives at p.
func (fs *FileSystem) Exists(p vpath.Path) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.lookup(p) != nil
}

// Stat describes the node at p.
func (fs *FileSystem) Stat(p vpath.Path) (Entry, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(p)
	if n == nil {
		return Entry{}, pathErr("stat", p, ErrNotFound)
	}
	return Entry{Name: vpath.Base(p), Kind: n.Kind, Size: n.Size(), Executable: n.Executable}, nil
}

// List returns the children of the directory at p, directories first and
// then files, each group ordered by name.
func (fs *FileSystem) List(p vpath.Path) ([]Entry, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(p)
	switch {
	case n == nil:
		return nil, pathErr("list", p, ErrNotFound)
	case !n.IsDir():
		return nil, pathErr("list", p, ErrNotADirectory)
	}
	return n.entries(), nil
}

// Read returns the content of the file at p.
func (fs *FileSystem) Read(p vpath.Path) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(p)
	switch {
	case n == nil:
		return "", pathErr("read", p, ErrNotFound)
	case n.IsDir():
		return "", pathErr("read", p, ErrIsADirectory)
	}
	return n.Content, nil
}

// CreateFile creates the file at p or overwrites the content of an existing
// one. The executable flag of an overwritten file is reset.
func (fs *FileSystem) CreateFile(p vpath.Path, content string) error {
	return fs.putFile("create", p, content, false)
}

// WriteFile replaces the content of the file at p, creating it when missing.
// Unlike CreateFile it preserves the executable flag of an existing file.
func (fs *FileSystem) WriteFile(p vpath.Path, content string) error {
	return fs.putFile("write", p, content, true)
}

// AppendFile appends content to the file at p, creating it when missing.
func (fs *FileSystem) AppendFile(p vpath.Path, content string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, name, err := fs.parentOf("append", p)
	if err != nil {
		return err
	}
	if existing, ok := parent.Children[name]; ok {
		if existing.IsDir() {
			return pathErr("append", p, ErrIsADirectory)
		}
		existing.Content += content
	} else {
		parent.Children[name] = NewFile(content, false)
	}
	fs.generation++
	return nil
}

// Touch creates an empty file at p unless a node already exists there.
func (fs *FileSystem) Touch(p vpath.Path) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, name, err := fs.parentOf("touch", p)
	if err != nil {
		return err
	}
	if _, ok := parent.Children[name]; ok {
		return nil
	}
	parent.Children[name] = NewFile("", false)
	fs.generation++
	return nil
}

func (fs *FileSystem) putFile(op string, p vpath.Path, content string, keepMode bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, name, err := fs.parentOf(op, p)
	if err != nil {
		return err
	}
	existing, ok := parent.Children[name]
	switch {
	case ok && existing.IsDir():
		return pathErr(op, p, ErrIsADirectory)
	case ok && keepMode:
		existing.Content = content
	default:
		parent.Children[name] = NewFile(content, false)
	}
	fs.generation++
	return nil
}

// CreateDirectory creates an empty directory at p. The parent must exist.
func (fs *FileSystem) CreateDirectory(p vpath.Path) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, name, err := fs.parentOf("mkdir", p)
	if err != nil {
		return err
	}
	if _, ok := parent.Children[name]; ok {
		return pathErr("mkdir", p, ErrAlreadyExists)
	}
	parent.Children[name] = NewDirectory()
	fs.generation++
	return nil
}

// CreateDirectoryAll creates p and any missing ancestors. Existing
// directories along the way are accepted; an existing file is not.
func (fs *FileSystem) CreateDirectoryAll(p vpath.Path) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if p.IsRoot() {
		return nil
	}
	cur := fs.root
	created := false
	at := vpath.Root
	for _, seg := range vpath.Segments(p) {
		at = vpath.Join(at, seg)
		next, ok := cur.Children[seg]
		switch {
		case !ok:
			next = NewDirectory()
			cur.Children[seg] = next
			created = true
		case !next.IsDir():
			if at == p {
				return pathErr("mkdir", p, ErrAlreadyExists)
			}
			return pathErr("mkdir", p, ErrParentNotADirectory)
		}
		cur = next
	}
	if created {
		fs.generation++
	}
	return nil
}

// Remove deletes the node at p. Directories require recursive.
func (fs *FileSystem) Remove(p vpath.Path, recursive bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if p.IsRoot() {
		return pathErr("remove", p, ErrMissingName)
	}
	parentPath, name := vpath.Split(p)
	parent := fs.lookup(parentPath)
	if !parent.IsDir() {
		return pathErr("remove", p, ErrNotFound)
	}
	target, ok := parent.Children[name]
	if !ok {
		return pathErr("remove", p, ErrNotFound)
	}
	if target.IsDir() && !recursive {
		return pathErr("remove", p, ErrIsADirectoryNotRecursive)
	}
	delete(parent.Children, name)
	fs.generation++
	return nil
}

// SetExecutable sets the executable flag on the file at p.
func (fs *FileSystem) SetExecutable(p vpath.Path, executable bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := fs.lookup(p)
	switch {
	case n == nil:
		return pathErr("chmod", p, ErrNotFound)
	case n.IsDir():
		return pathErr("chmod", p, ErrIsADirectory)
	}
	if n.Executable != executable {
		n.Executable = executable
		fs.generation++
	}
	return nil
}

// lookup walks from the root. Traversing through a file yields nil.
// Callers must hold fs.mu.
func (fs *FileSystem) lookup(p vpath.Path) *Node {
	cur := fs.root
	for _, seg := range vpath.Segments(p) {
		if !cur.IsDir() {
			return nil
		}
		next, ok := cur.Children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// parentOf returns the directory that holds p and the final name of p.
// Callers must hold fs.mu for writing.
func (fs *FileSystem) parentOf(op string, p vpath.Path) (*Node, string, error) {
	if p.IsRoot() {
		return nil, "", pathErr(op, p, ErrMissingName)
	}
	parentPath, name := vpath.Split(p)
	parent := fs.lookup(parentPath)
	switch {
	case parent == nil:
		return nil, "", pathErr(op, p, ErrParentNotFound)
	case !parent.IsDir():
		return nil, "", pathErr(op, p, ErrParentNotADirectory)
	}
	if parent.Children == nil {
		parent.Children = map[string]*Node{}
	}
	return parent, name, nil
}
