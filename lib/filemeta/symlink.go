// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anvilbuild/anvil/lib/digest"
	"github.com/anvilbuild/anvil/lib/fingerprint"
)

// unresolvedSymlink represents a symlink whose target is recorded as
// text and deliberately not followed. Its digest is the
// domain-separated hash of the target text (see
// digest.SumSymlinkTarget), so it can never collide with a regular
// file containing the same bytes.
type unresolvedSymlink struct {
	defaults
	target string
	digest []byte
}

// CreateUnresolvedSymlink reads the link at path and returns metadata
// identifying it by its target text.
func CreateUnresolvedSymlink(path string) (Metadata, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return nil, fmt.Errorf("reading symlink %s: %w", path, err)
	}
	return newUnresolvedSymlink(target), nil
}

// CreateUnresolvedSymlinkFromTarget returns symlink metadata for an
// already-read target text, without touching the filesystem. Used
// when reconstructing persisted metadata.
func CreateUnresolvedSymlinkFromTarget(target string) Metadata {
	return newUnresolvedSymlink(target)
}

func newUnresolvedSymlink(target string) *unresolvedSymlink {
	d := digest.SumSymlinkTarget(target)
	return &unresolvedSymlink{target: target, digest: d[:]}
}

// SymlinkTarget returns the recorded target text of an
// unresolved-symlink metadata value, or false when m is not one.
func SymlinkTarget(m Metadata) (string, bool) {
	s, ok := m.(*unresolvedSymlink)
	if !ok {
		return "", false
	}
	return s.target, true
}

// SymlinkToSourceParts decomposes a symlink-to-source metadata value
// into its resolved path, the wrapped source metadata, and the source
// exec path ("" when the source is not a known artifact). ok is false
// when m is not a symlink-to-source value.
func SymlinkToSourceParts(m Metadata) (resolvedPath string, source Metadata, sourceExecPath string, ok bool) {
	s, isWrapper := m.(*symlinkToSource)
	if !isWrapper {
		return "", nil, "", false
	}
	return s.resolvedPath, s.source, s.sourceExecPath, true
}

// Target returns the recorded link target text.
func (s *unresolvedSymlink) Target() string { return s.target }

func (s *unresolvedSymlink) Kind() Kind { return Symlink }

func (s *unresolvedSymlink) Digest() []byte { return s.digest }

func (s *unresolvedSymlink) Size() int64 { return 0 }

func (s *unresolvedSymlink) ModifiedTime() int64 {
	panic(fmt.Sprintf("filemeta: ModifiedTime called on an unresolved symlink (%s)", s))
}

func (s *unresolvedSymlink) WasModifiedSinceDigest(path string) (bool, error) {
	// A failed re-read means the link is gone or unreadable; either
	// way the recorded identity cannot be confirmed.
	target, err := os.Readlink(path)
	if err != nil {
		return true, nil
	}
	fresh := digest.SumSymlinkTarget(target)
	return !bytes.Equal(s.digest, fresh[:]), nil
}

func (s *unresolvedSymlink) AddTo(a *fingerprint.Accumulator) {
	a.AddTag(tagSymlink)
	a.AddBytes(s.digest)
}

func (s *unresolvedSymlink) Equal(other Metadata) bool {
	o, ok := other.(*unresolvedSymlink)
	return ok && bytes.Equal(s.digest, o.digest)
}

func (s *unresolvedSymlink) String() string {
	return fmt.Sprintf("unresolvedSymlink{target: %q}", s.target)
}

// symlinkToSource is metadata for a build output that is a symlink
// resolving to a source file. Every content query forwards to the
// source file's metadata; this value adds only the absolute resolved
// path and, when the source is a known artifact, its exec path.
type symlinkToSource struct {
	defaults
	resolvedPath   string
	source         Metadata
	sourceExecPath string // "" when the source is not a known artifact
}

// CreateSymlinkToSource returns metadata for a symlink resolving to a
// known source artifact at sourceExecPath, with the given metadata
// for the source file. resolvedPath must be absolute.
func CreateSymlinkToSource(resolvedPath string, source Metadata, sourceExecPath string) Metadata {
	if sourceExecPath == "" {
		panic("filemeta: CreateSymlinkToSource requires a source exec path")
	}
	return newSymlinkToSource(resolvedPath, source, sourceExecPath)
}

// CreateSymlinkToUnknownSource returns metadata for a symlink
// resolving to a source file that is not a known artifact.
// resolvedPath must be absolute.
func CreateSymlinkToUnknownSource(resolvedPath string, source Metadata) Metadata {
	return newSymlinkToSource(resolvedPath, source, "")
}

func newSymlinkToSource(resolvedPath string, source Metadata, sourceExecPath string) *symlinkToSource {
	if !filepath.IsAbs(resolvedPath) {
		panic(fmt.Sprintf("filemeta: resolved path must be absolute: %s", resolvedPath))
	}
	if source == nil {
		panic("filemeta: symlink-to-source requires source metadata")
	}
	return &symlinkToSource{resolvedPath: resolvedPath, source: source, sourceExecPath: sourceExecPath}
}

// ResolvedPath returns the absolute path the symlink resolves to.
func (s *symlinkToSource) ResolvedPath() string { return s.resolvedPath }

// SourceExecPath returns the exec path of the source artifact, if the
// symlink resolves to a known one.
func (s *symlinkToSource) SourceExecPath() (string, bool) {
	return s.sourceExecPath, s.sourceExecPath != ""
}

func (s *symlinkToSource) Kind() Kind { return s.source.Kind() }

func (s *symlinkToSource) Digest() []byte { return s.source.Digest() }

func (s *symlinkToSource) Size() int64 { return s.source.Size() }

func (s *symlinkToSource) ModifiedTime() int64 { return s.source.ModifiedTime() }

func (s *symlinkToSource) ContentsProxy() *ContentsProxy { return s.source.ContentsProxy() }

func (s *symlinkToSource) WasModifiedSinceDigest(path string) (bool, error) {
	return s.source.WasModifiedSinceDigest(path)
}

func (s *symlinkToSource) AddTo(a *fingerprint.Accumulator) {
	s.source.AddTo(a)
}

func (s *symlinkToSource) couldBeModifiedByMetadata(lastKnown Metadata) bool {
	return s.source.couldBeModifiedByMetadata(lastKnown)
}

func (s *symlinkToSource) Equal(other Metadata) bool {
	o, ok := other.(*symlinkToSource)
	return ok && s.resolvedPath == o.resolvedPath &&
		s.source.Equal(o.source) && s.sourceExecPath == o.sourceExecPath
}

func (s *symlinkToSource) String() string {
	return fmt.Sprintf("symlinkToSource{resolvedPath: %s, source: %s, sourceExecPath: %q}",
		s.resolvedPath, s.source, s.sourceExecPath)
}
