// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"bytes"
	"fmt"
	"io"

	"github.com/anvilbuild/anvil/lib/digest"
	"github.com/anvilbuild/anvil/lib/fingerprint"
)

// inlineFile carries file content inside the metadata value itself.
// Used for small generated inputs that never touch the filesystem.
type inlineFile struct {
	defaults
	data   []byte
	digest []byte
}

// CreateInline hashes data and returns metadata carrying it inline.
// The caller must not modify data afterwards.
func CreateInline(data []byte) Metadata {
	d := digest.SumBytes(data)
	return &inlineFile{data: data, digest: d[:]}
}

// InlinePayload returns a reader over the embedded content of an
// inline-file metadata value, or false when m is not one.
func InlinePayload(m Metadata) (io.Reader, bool) {
	f, ok := m.(*inlineFile)
	if !ok {
		return nil, false
	}
	return bytes.NewReader(f.data), true
}

func (f *inlineFile) Kind() Kind { return RegularFile }

func (f *inlineFile) Digest() []byte { return f.digest }

func (f *inlineFile) Size() int64 { return int64(len(f.data)) }

func (f *inlineFile) ModifiedTime() int64 {
	panic(fmt.Sprintf("filemeta: ModifiedTime called on an inline file (%s)", f))
}

func (f *inlineFile) WasModifiedSinceDigest(path string) (bool, error) {
	// Inline content has no filesystem representation to re-check.
	panic(fmt.Sprintf("filemeta: WasModifiedSinceDigest called on an inline file for %s", path))
}

func (f *inlineFile) AddTo(a *fingerprint.Accumulator) {
	a.AddBytes(f.digest)
}

func (f *inlineFile) Equal(other Metadata) bool {
	o, ok := other.(*inlineFile)
	return ok && bytes.Equal(f.digest, o.digest)
}

func (f *inlineFile) String() string {
	return fmt.Sprintf("inlineFile{digest: %s, size: %d}", formatDigest(f.digest), len(f.data))
}
