// SPDX-License-Identifier: MPL-2.0

// Package vfs implements the in-memory virtual filesystem tree.
//
// The tree is a single root directory of Nodes. Each Node is either a directory
// holding named children or a file holding text content and a cosmetic
// executable flag. Nodes carry no parent pointers; every operation walks down
// from the root using the segments of a canonical vpath.Path.
//
// Mutations happen in place and are not transactional. A FileSystem guards its
// tree with a single RWMutex and counts mutations in a generation number, which
// lets callers detect that a command changed the tree and take a consistent
// deep copy for persistence.
package vfs
