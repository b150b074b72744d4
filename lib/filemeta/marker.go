// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"fmt"

	"github.com/anvilbuild/anvil/lib/fingerprint"
)

// Singleton markers: stateless sentinels standing in for special
// cases rather than real file content. A marker is equal only to
// itself, and any comparison involving one reports "possibly
// modified" — a cache entry anchored to a marker is never trusted.
var (
	// MissingFileMarker records that no filesystem object is present
	// at the path.
	MissingFileMarker Metadata = &singletonMarker{class: classMissingFile}

	// RunfilesTreeMarker stands in for a runfiles tree, whose real
	// contents are tracked elsewhere.
	RunfilesTreeMarker Metadata = &singletonMarker{class: classRunfilesTree}

	// ConstantMetadata is metadata for artifacts whose content is
	// declared constant and never participates in change detection.
	ConstantMetadata Metadata = &constantMetadata{}
)

type markerClass uint8

const (
	classMissingFile markerClass = iota
	classRunfilesTree
)

type singletonMarker struct {
	defaults
	class markerClass
}

func (m *singletonMarker) Kind() Kind { return Nonexistent }

func (m *singletonMarker) Digest() []byte { return nil }

func (m *singletonMarker) Size() int64 { return 0 }

func (m *singletonMarker) ModifiedTime() int64 { return 0 }

func (m *singletonMarker) WasModifiedSinceDigest(path string) (bool, error) {
	return false, nil
}

func (m *singletonMarker) AddTo(a *fingerprint.Accumulator) {
	switch m.class {
	case classMissingFile:
		a.AddTag(tagMissingFile)
	case classRunfilesTree:
		a.AddTag(tagRunfilesTree)
	}
}

func (m *singletonMarker) Equal(other Metadata) bool {
	o, ok := other.(*singletonMarker)
	return ok && m.class == o.class
}

func (m *singletonMarker) isSingleton() bool { return true }

func (m *singletonMarker) String() string {
	switch m.class {
	case classMissingFile:
		return "missingFileMarker"
	case classRunfilesTree:
		return "runfilesTreeMarker"
	default:
		return fmt.Sprintf("singletonMarker(%d)", m.class)
	}
}

// constantMetadata has a fixed one-byte digest so it is
// distinguishable from a missing digest when fingerprinted.
type constantMetadata struct {
	defaults
}

var constantDigest = []byte{0}

func (c *constantMetadata) Kind() Kind { return RegularFile }

func (c *constantMetadata) Digest() []byte { return constantDigest }

func (c *constantMetadata) Size() int64 { return 0 }

func (c *constantMetadata) ModifiedTime() int64 { return -1 }

func (c *constantMetadata) WasModifiedSinceDigest(path string) (bool, error) {
	panic(fmt.Sprintf("filemeta: WasModifiedSinceDigest called on constant metadata for %s", path))
}

func (c *constantMetadata) AddTo(a *fingerprint.Accumulator) {
	a.AddTag(tagConstant)
	a.AddBytes(constantDigest)
}

func (c *constantMetadata) Equal(other Metadata) bool {
	_, ok := other.(*constantMetadata)
	return ok
}

func (c *constantMetadata) isSingleton() bool { return true }

func (c *constantMetadata) String() string { return "constantMetadata" }
