// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"bytes"
	"encoding/hex"
	"time"

	"github.com/anvilbuild/anvil/lib/fingerprint"
)

// Metadata describes what occupies a path for the purposes of
// up-to-dateness checks. Implementations form a closed set; the
// unexported methods prevent definitions outside this package.
//
// The byte slice returned by Digest is owned by the value and must
// not be modified.
type Metadata interface {
	// Kind returns the type of the underlying filesystem object.
	Kind() Kind

	// Digest returns the content digest, or nil if this variant has
	// none. When non-nil, the digest is the authoritative identity
	// of the content.
	Digest() []byte

	// Size returns the byte length of the content, or 0 for
	// non-file kinds.
	Size() int64

	// ModifiedTime returns the modification time in milliseconds
	// since the epoch. Only meaningful when Digest returns nil;
	// calling it on a digest-bearing file variant panics.
	ModifiedTime() int64

	// ContentsProxy returns the cheap change-detection token, or nil
	// if none is available.
	ContentsProxy() *ContentsProxy

	// SetContentsProxy records the proxy observed when a staged
	// local copy first exists. It may be called at most once, and
	// only on variants for which CanSetContentsProxy returns true;
	// anything else panics.
	SetContentsProxy(proxy ContentsProxy)

	// CanSetContentsProxy reports whether SetContentsProxy may be
	// called on this value.
	CanSetContentsProxy() bool

	// LocationIndex identifies the remote backend slot holding the
	// content. 0 means local, empty, or absent.
	LocationIndex() int

	// IsRemote reports whether the content lives in a remote cache.
	IsRemote() bool

	// MaterializationExecPath returns the exec-relative path this
	// artifact is staged at as a local symlink, if any.
	MaterializationExecPath() (string, bool)

	// WasModifiedSinceDigest checks, against the live filesystem,
	// whether the object at path may have changed since this
	// metadata was captured. It performs synchronous I/O. Variants
	// with no local representation either return false or panic;
	// see each constructor.
	WasModifiedSinceDigest(path string) (bool, error)

	// AddTo appends this value's cache-key contribution to the
	// accumulator: the digest when present, otherwise the 8-byte
	// modification time, never both. Variants whose payload bytes
	// could coincide across classes prepend a type tag.
	AddTo(a *fingerprint.Accumulator)

	// Equal reports value equality with another metadata instance.
	// Singleton markers are equal only to themselves.
	Equal(other Metadata) bool

	String() string

	// couldBeModifiedByMetadata is the fallback comparison used by
	// CouldBeModifiedSince when at least one side has no digest.
	// The default answer is true; variants override it only when
	// they can prove equivalence cheaply.
	couldBeModifiedByMetadata(lastKnown Metadata) bool

	// isSingleton marks the stateless sentinel values. Cache entries
	// anchored to a sentinel are never trusted.
	isSingleton() bool
}

// Remote is the interface of the remote-backed variants, which carry
// a lease that may expire.
type Remote interface {
	Metadata

	// ExpireAt returns the lease expiry in milliseconds since the
	// epoch. A negative value means the lease never expires.
	ExpireAt() int64

	// ExtendExpireAt moves the lease expiry forward. It is a no-op
	// on values without an expiry; otherwise the new expiry must be
	// strictly later than the current one, and violating that
	// panics.
	ExtendExpireAt(epochMilli int64)

	// IsAlive reports whether the lease is still valid at now.
	IsAlive(now time.Time) bool
}

// CouldBeModifiedSince decides whether the content described by
// current may differ from what lastKnown recorded. The decision
// gates action re-execution.
//
// Order matters: sentinels are never trusted, a kind change is always
// a change, digest equality (with matching size) is authoritative,
// and everything else falls back to the per-variant metadata-only
// comparison, which defaults to "assume changed".
func CouldBeModifiedSince(current, lastKnown Metadata) bool {
	if current.isSingleton() || lastKnown.isSingleton() {
		return true
	}

	if current.Kind() != lastKnown.Kind() {
		return true
	}

	currentDigest, lastDigest := current.Digest(), lastKnown.Digest()
	if currentDigest != nil && lastDigest != nil {
		// With both digests known, the answer is exact.
		return !bytes.Equal(currentDigest, lastDigest) || current.Size() != lastKnown.Size()
	}

	return current.couldBeModifiedByMetadata(lastKnown)
}

// Fingerprint type tags. Appended ahead of a variant's payload when
// the payload bytes alone could coincide with another class; two
// different variants must never collide in fingerprint space. These
// values are cache-format constants; changing one invalidates every
// cache entry of that class.
const (
	tagDirectoryMtime byte = 0x01
	tagSymlink        byte = 0x02
	tagMissingFile    byte = 0x03
	tagRunfilesTree   byte = 0x04
	tagConstant       byte = 0x05
)

// defaults supplies the baseline behavior shared by most variants:
// no proxy, no remote backing, no materialization, and a conservative
// metadata-only comparison. Variants embed it and override what they
// support.
type defaults struct{}

func (defaults) ContentsProxy() *ContentsProxy { return nil }

func (defaults) SetContentsProxy(ContentsProxy) {
	panic("filemeta: SetContentsProxy called on metadata that does not support it")
}

func (defaults) CanSetContentsProxy() bool { return false }

func (defaults) LocationIndex() int { return 0 }

func (defaults) IsRemote() bool { return false }

func (defaults) MaterializationExecPath() (string, bool) { return "", false }

func (defaults) couldBeModifiedByMetadata(Metadata) bool { return true }

func (defaults) isSingleton() bool { return false }

// formatDigest renders a possibly-nil digest for debug output.
func formatDigest(d []byte) string {
	if d == nil {
		return "<nil>"
	}
	return hex.EncodeToString(d)
}
