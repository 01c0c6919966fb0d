// SPDX-License-Identifier: MPL-2.0

package vfs

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	// KindDirectory marks a node that holds children.
	KindDirectory Kind = "directory"
	// KindFile marks a node that holds text content.
	KindFile Kind = "file"
)

var (
	// ErrInvalidKind is the sentinel error wrapped by InvalidKindError.
	ErrInvalidKind = errors.New("invalid node kind")

	// ErrInvalidName is returned when a child name is empty or contains a separator.
	ErrInvalidName = errors.New("invalid node name")
)

type (
	// Kind discriminates the two node variants.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	InvalidKindError struct {
		Value Kind
	}

	// Node is one entry of the tree. Children is only meaningful for
	// directories; Content and Executable only for files.
	Node struct {
		Kind       Kind             `json:"kind" toml:"kind"`
		Children   map[string]*Node `json:"children,omitempty" toml:"children,omitempty"`
		Content    string           `json:"content,omitempty" toml:"content,omitempty"`
		Executable bool             `json:"executable,omitempty" toml:"executable,omitempty"`
	}

	// Entry describes one child of a listed directory.
	Entry struct {
		Name       string
		Kind       Kind
		Size       int
		Executable bool
	}
)

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// IsValid returns whether the Kind is one of the defined variants.
func (k Kind) IsValid() (bool, []error) {
	switch k {
	case KindDirectory, KindFile:
		return true, nil
	default:
		return false, []error{&InvalidKindError{Value: k}}
	}
}

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid node kind %q (valid: directory, file)", e.Value)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// NewDirectory returns an empty directory node.
func NewDirectory() *Node {
	return &Node{Kind: KindDirectory, Children: map[string]*Node{}}
}

// NewFile returns a file node with the given content.
func NewFile(content string, executable bool) *Node {
	return &Node{Kind: KindFile, Content: content, Executable: executable}
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n != nil && n.Kind == KindDirectory }

// Size returns the content length in bytes for files and 4096 for directories.
func (n *Node) Size() int {
	if n.IsDir() {
		return 4096
	}
	return len(n.Content)
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Content: n.Content, Executable: n.Executable}
	if n.Kind == KindDirectory {
		c.Children = make(map[string]*Node, len(n.Children))
		for name, child := range n.Children {
			c.Children[name] = child.Clone()
		}
	}
	return c
}

// fillChildren allocates missing child maps of directories. Decoded
// snapshots omit empty maps.
func (n *Node) fillChildren() {
	if !n.IsDir() {
		return
	}
	if n.Children == nil {
		n.Children = map[string]*Node{}
	}
	for _, child := range n.Children {
		child.fillChildren()
	}
}

// Validate checks that n and its descendants form a well-shaped tree: kinds
// are known, names are non-empty and slash-free, and files have no children.
func (n *Node) Validate() error {
	return n.validate("/")
}

func (n *Node) validate(at string) error {
	if n == nil {
		return fmt.Errorf("%s: nil node", at)
	}
	if ok, errs := n.Kind.IsValid(); !ok {
		return fmt.Errorf("%s: %w", at, errs[0])
	}
	if n.Kind == KindFile {
		if len(n.Children) > 0 {
			return fmt.Errorf("%s: file has children", at)
		}
		return nil
	}
	for _, name := range sortedNames(n.Children) {
		if name == "" || strings.Contains(name, "/") || name == "." || name == ".." {
			return fmt.Errorf("%s: %w: %q", at, ErrInvalidName, name)
		}
		if err := n.Children[name].validate(strings.TrimSuffix(at, "/") + "/" + name); err != nil {
			return err
		}
	}
	return nil
}

// entries returns the children of a directory node in listing order:
// directories first, then files, each group sorted by name.
func (n *Node) entries() []Entry {
	out := make([]Entry, 0, len(n.Children))
	for _, name := range sortedNames(n.Children) {
		child := n.Children[name]
		out = append(out, Entry{Name: name, Kind: child.Kind, Size: child.Size(), Executable: child.Executable})
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.Kind == b.Kind:
			return 0
		case a.Kind == KindDirectory:
			return -1
		default:
			return 1
		}
	})
	return out
}

func sortedNames(m map[string]*Node) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
