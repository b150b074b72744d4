// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"bytes"
	"fmt"

	"github.com/anvilbuild/anvil/lib/fingerprint"
)

// directoryWithMtime tracks a directory by modification time alone.
// This is the legacy path: with no digest, change detection can never
// prove equivalence, so any comparison of two such values reports
// "possibly modified".
type directoryWithMtime struct {
	defaults
	mtimeMillis int64
}

// CreateForDirectoryWithMtime returns mtime-tracked directory
// metadata.
func CreateForDirectoryWithMtime(mtimeMillis int64) Metadata {
	return &directoryWithMtime{mtimeMillis: mtimeMillis}
}

func (d *directoryWithMtime) Kind() Kind { return Directory }

func (d *directoryWithMtime) Digest() []byte { return nil }

func (d *directoryWithMtime) Size() int64 { return 0 }

func (d *directoryWithMtime) ModifiedTime() int64 { return d.mtimeMillis }

func (d *directoryWithMtime) WasModifiedSinceDigest(path string) (bool, error) {
	return false, nil
}

func (d *directoryWithMtime) AddTo(a *fingerprint.Accumulator) {
	// The payload is a bare timestamp; tag it so it cannot collide
	// with another mtime-carrying class.
	a.AddTag(tagDirectoryMtime)
	a.AddInt64(d.mtimeMillis)
}

func (d *directoryWithMtime) Equal(other Metadata) bool {
	o, ok := other.(*directoryWithMtime)
	return ok && d.mtimeMillis == o.mtimeMillis
}

func (d *directoryWithMtime) String() string {
	return fmt.Sprintf("directoryWithMtime{mtime: %d}", d.mtimeMillis)
}

// directoryWithDigest tracks a directory by a digest of its listing,
// enabling precise invalidation without the mtime fallback.
type directoryWithDigest struct {
	defaults
	digest []byte
}

// CreateForDirectoryWithHash returns digest-tracked directory
// metadata. The digest is a content hash of the directory listing.
func CreateForDirectoryWithHash(dig []byte) Metadata {
	if dig == nil {
		panic("filemeta: CreateForDirectoryWithHash requires a digest")
	}
	return &directoryWithDigest{digest: dig}
}

func (d *directoryWithDigest) Kind() Kind { return Directory }

func (d *directoryWithDigest) Digest() []byte { return d.digest }

func (d *directoryWithDigest) Size() int64 { return 0 }

func (d *directoryWithDigest) ModifiedTime() int64 { return 0 }

func (d *directoryWithDigest) WasModifiedSinceDigest(path string) (bool, error) {
	// Inter-build changes are caught by the listing digest; catching
	// modifications made during a build would require re-listing
	// here.
	return false, nil
}

func (d *directoryWithDigest) AddTo(a *fingerprint.Accumulator) {
	a.AddBytes(d.digest)
}

func (d *directoryWithDigest) Equal(other Metadata) bool {
	o, ok := other.(*directoryWithDigest)
	return ok && bytes.Equal(d.digest, o.digest)
}

func (d *directoryWithDigest) String() string {
	return fmt.Sprintf("directoryWithDigest{digest: %s}", formatDigest(d.digest))
}
