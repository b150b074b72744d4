// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"bytes"
	"fmt"
	"os"

	"github.com/anvilbuild/anvil/lib/fingerprint"
)

// regularFile is the canonical content-addressed file variant. The
// digest, when present, is the authoritative identity; the proxy
// allows a cheap staleness re-check against the live filesystem.
//
// A nil digest is the transient shape produced while a previously
// computed digest is discarded pending re-injection (see
// CreateFromInjectedDigest); such values fall back to proxy
// comparison.
type regularFile struct {
	defaults
	digest []byte
	proxy  *ContentsProxy
	size   int64
}

// CreateForNormalFile returns metadata for a regular file with the
// given digest, optional contents proxy, and size.
func CreateForNormalFile(dig []byte, proxy *ContentsProxy, size int64) Metadata {
	return &regularFile{digest: dig, proxy: proxy, size: size}
}

// CreateFromInjectedDigest replaces only the digest of an existing
// regular-file-shaped value, preserving its proxy and size. Used when
// a previously-unverified digest becomes known.
func CreateFromInjectedDigest(m Metadata, dig []byte) Metadata {
	return CreateForNormalFile(dig, m.ContentsProxy(), m.Size())
}

// CreateProxyInput returns digest-only metadata standing in for
// another value in the action cache, with no size and no proxy.
func CreateProxyInput(dig []byte) Metadata {
	if dig == nil {
		panic("filemeta: CreateProxyInput requires a digest")
	}
	return CreateForNormalFile(dig, nil, 0)
}

func (f *regularFile) Kind() Kind { return RegularFile }

func (f *regularFile) Digest() []byte { return f.digest }

func (f *regularFile) Size() int64 { return f.size }

func (f *regularFile) ModifiedTime() int64 {
	panic(fmt.Sprintf("filemeta: ModifiedTime called on a regular file (%s)", f))
}

func (f *regularFile) ContentsProxy() *ContentsProxy { return f.proxy }

func (f *regularFile) WasModifiedSinceDigest(path string) (bool, error) {
	if f.proxy == nil {
		return false, nil
	}
	probed, err := probePath(path, true)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return probed.kind != RegularFile || !f.proxy.Equal(probed.proxy), nil
}

func (f *regularFile) AddTo(a *fingerprint.Accumulator) {
	if f.digest == nil {
		panic(fmt.Sprintf("filemeta: AddTo called before digest injection (%s)", f))
	}
	a.AddBytes(f.digest)
}

func (f *regularFile) Equal(other Metadata) bool {
	o, ok := other.(*regularFile)
	if !ok {
		return false
	}
	return bytes.Equal(f.digest, o.digest) && proxiesEqual(f.proxy, o.proxy) && f.size == o.size
}

func (f *regularFile) couldBeModifiedByMetadata(lastKnown Metadata) bool {
	// A symlink resolving to a source file stands for the file it
	// points at.
	if s, ok := lastKnown.(*symlinkToSource); ok {
		lastKnown = s.source
	}

	switch o := lastKnown.(type) {
	case *regularFile:
		return f.size != o.size || !proxiesMatch(f.proxy, o.proxy)
	case *RemoteFileWithMaterialization:
		return f.size != o.Size() || !proxiesMatch(f.proxy, o.ContentsProxy())
	default:
		return true
	}
}

func (f *regularFile) String() string {
	return fmt.Sprintf("regularFile{digest: %s, size: %d, proxy: %v}", formatDigest(f.digest), f.size, f.proxy)
}

// proxiesEqual is nil-aware proxy equality, used by value equality
// (unlike proxiesMatch, two absent proxies are equal values).
func proxiesEqual(a, b *ContentsProxy) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
