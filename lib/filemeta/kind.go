// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import "fmt"

// Kind is the type of the filesystem object a Metadata value stands
// for. A RegularFile is guaranteed to carry a digest; other kinds may
// or may not.
type Kind uint8

const (
	// RegularFile is an ordinary file identified by a content digest.
	RegularFile Kind = iota

	// Directory is a directory, identified either by mtime (legacy)
	// or by a digest of its listing.
	Directory

	// Symlink is a symbolic link whose target is recorded without
	// being followed.
	Symlink

	// Nonexistent marks the absence of a filesystem object.
	Nonexistent
)

// String returns the human-readable name of a kind.
func (k Kind) String() string {
	switch k {
	case RegularFile:
		return "regular_file"
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	case Nonexistent:
		return "nonexistent"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}
