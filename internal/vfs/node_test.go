// SPDX-License-Identifier: MPL-2.0

package vfs

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTreeIsFresh(t *testing.T) {
	t.Parallel()

	a := DefaultTree("user")
	b := DefaultTree("user")
	a.Children["home"].Children["user"].Children["welcome.txt"].Content = "x"
	if b.Children["home"].Children["user"].Children["welcome.txt"].Content == "x" {
		t.Error("DefaultTree() returned shared nodes")
	}
	if err := b.Validate(); err != nil {
		t.Errorf("DefaultTree().Validate() error: %v", err)
	}
}

func TestDefaultTreeUsesUser(t *testing.T) {
	t.Parallel()

	root := DefaultTree("alice")
	if _, ok := root.Children["home"].Children["alice"]; !ok {
		t.Error("expected /home/alice in seed tree")
	}
	if _, ok := DefaultTree("").Children["home"].Children[DefaultUser]; !ok {
		t.Errorf("expected /home/%s for empty user", DefaultUser)
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	orig := DefaultTree("user")
	c := orig.Clone()
	if diff := cmp.Diff(orig, c); diff != "" {
		t.Errorf("Clone() mismatch (-want +got):\n%s", diff)
	}
	delete(c.Children, "etc")
	if _, ok := orig.Children["etc"]; !ok {
		t.Error("Clone() shares children with the original")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		node    *Node
		wantErr error
	}{
		{"bad kind", &Node{Kind: "link"}, ErrInvalidKind},
		{"slash in name", &Node{Kind: KindDirectory, Children: map[string]*Node{"a/b": NewFile("", false)}}, ErrInvalidName},
		{"empty name", &Node{Kind: KindDirectory, Children: map[string]*Node{"": NewDirectory()}}, ErrInvalidName},
		{"dot name", &Node{Kind: KindDirectory, Children: map[string]*Node{"..": NewDirectory()}}, ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.node.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	fileWithChildren := &Node{Kind: KindFile, Children: map[string]*Node{"x": NewFile("", false)}}
	if err := fileWithChildren.Validate(); err == nil {
		t.Error("Validate() should reject a file with children")
	}
}

func TestKindIsValid(t *testing.T) {
	t.Parallel()

	if ok, _ := KindFile.IsValid(); !ok {
		t.Error("KindFile should be valid")
	}
	ok, errs := Kind("pipe").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidKind) {
		t.Errorf("Kind(pipe).IsValid() = %v, %v", ok, errs)
	}
}

func TestSize(t *testing.T) {
	t.Parallel()

	if got := NewDirectory().Size(); got != 4096 {
		t.Errorf("directory Size() = %d, want 4096", got)
	}
	if got := NewFile("hello", false).Size(); got != 5 {
		t.Errorf("file Size() = %d, want 5", got)
	}
}
