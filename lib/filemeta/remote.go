// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/anvilbuild/anvil/lib/fingerprint"
)

// RemoteFile is metadata for a file whose content lives in a remote
// cache, addressed by digest and a backend location index. It has no
// lease and no local staging; see RemoteFileWithMaterialization for
// those.
type RemoteFile struct {
	defaults
	digest        []byte
	size          int64
	locationIndex int
}

// CreateRemote returns metadata for a remotely stored file.
func CreateRemote(dig []byte, size int64, locationIndex int) *RemoteFile {
	if dig == nil {
		panic("filemeta: CreateRemote requires a digest")
	}
	return &RemoteFile{digest: dig, size: size, locationIndex: locationIndex}
}

func (r *RemoteFile) Kind() Kind { return RegularFile }

func (r *RemoteFile) Digest() []byte { return r.digest }

func (r *RemoteFile) Size() int64 { return r.size }

func (r *RemoteFile) ModifiedTime() int64 {
	panic(fmt.Sprintf("filemeta: ModifiedTime called on a remote file (%s)", r))
}

func (r *RemoteFile) LocationIndex() int { return r.locationIndex }

func (r *RemoteFile) IsRemote() bool { return true }

func (r *RemoteFile) WasModifiedSinceDigest(path string) (bool, error) {
	// Remote content cannot drift under a local path.
	return false, nil
}

// ExpireAt returns the lease expiry in epoch milliseconds. A plain
// remote file has no lease: always -1.
func (r *RemoteFile) ExpireAt() int64 { return -1 }

// ExtendExpireAt is a no-op: a plain remote file has no lease to
// extend.
func (r *RemoteFile) ExtendExpireAt(epochMilli int64) {}

// IsAlive always reports true: without a lease there is nothing to
// expire.
func (r *RemoteFile) IsAlive(now time.Time) bool { return true }

func (r *RemoteFile) AddTo(a *fingerprint.Accumulator) {
	a.AddBytes(r.digest)
}

func (r *RemoteFile) Equal(other Metadata) bool {
	o, ok := other.(*RemoteFile)
	return ok && bytes.Equal(r.digest, o.digest) && r.size == o.size && r.locationIndex == o.locationIndex
}

func (r *RemoteFile) String() string {
	return fmt.Sprintf("remoteFile{digest: %s, size: %d, locationIndex: %d}",
		formatDigest(r.digest), r.size, r.locationIndex)
}

// RemoteFileWithMaterialization is a remote file that additionally
// tracks a lease expiry and an optional local staging of the content
// as a zero-copy symlink.
//
// Two fields mutate after construction, both behind an internal lock:
// the lease expiry, which only moves forward (ExtendExpireAt), and
// the contents proxy, which goes from absent to present exactly once
// (SetContentsProxy, when the staged symlink is first observed).
// Neither field contributes to Equal.
type RemoteFileWithMaterialization struct {
	RemoteFile
	materializationExecPath string // "" = not staged

	mu       sync.Mutex
	expireAt int64
	proxy    *ContentsProxy
}

// CreateRemoteWithMaterialization returns remote metadata carrying
// lease and staging bookkeeping. expireAt is the lease expiry in
// epoch milliseconds; negative means the lease never expires.
// materializationExecPath may be empty when the content is not
// staged locally.
func CreateRemoteWithMaterialization(dig []byte, size int64, locationIndex int, expireAt int64, materializationExecPath string) *RemoteFileWithMaterialization {
	if dig == nil {
		panic("filemeta: CreateRemoteWithMaterialization requires a digest")
	}
	return &RemoteFileWithMaterialization{
		RemoteFile:              RemoteFile{digest: dig, size: size, locationIndex: locationIndex},
		materializationExecPath: materializationExecPath,
		expireAt:                expireAt,
	}
}

// CreateFromExistingWithMaterializationPath returns metadata identical
// to m except that its materialization path is set to execPath. If m
// already records a materialization path, m itself is returned
// unchanged; an existing path is never overwritten.
func CreateFromExistingWithMaterializationPath(m Remote, execPath string) Remote {
	if execPath == "" {
		panic("filemeta: materialization path must not be empty")
	}
	if _, ok := m.MaterializationExecPath(); ok {
		return m
	}
	return CreateRemoteWithMaterialization(m.Digest(), m.Size(), m.LocationIndex(), m.ExpireAt(), execPath)
}

func (r *RemoteFileWithMaterialization) MaterializationExecPath() (string, bool) {
	return r.materializationExecPath, r.materializationExecPath != ""
}

// ExpireAt returns the current lease expiry in epoch milliseconds,
// or a negative value when the lease never expires.
func (r *RemoteFileWithMaterialization) ExpireAt() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expireAt
}

// ExtendExpireAt moves the lease expiry forward. A value constructed
// without an expiry never gains one: the call is a no-op. Otherwise
// epochMilli must be strictly later than the current expiry; the
// lease never moves backward.
func (r *RemoteFileWithMaterialization) ExtendExpireAt(epochMilli int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.expireAt < 0 {
		return
	}
	if epochMilli <= r.expireAt {
		panic(fmt.Sprintf("filemeta: lease extension to %d does not advance expiry %d", epochMilli, r.expireAt))
	}
	r.expireAt = epochMilli
}

// IsAlive reports whether the lease is still valid at now.
func (r *RemoteFileWithMaterialization) IsAlive(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.expireAt < 0 {
		return true
	}
	return now.UnixMilli() < r.expireAt
}

// ContentsProxy returns the proxy recorded when the staged local
// symlink was first observed, or nil before that.
func (r *RemoteFileWithMaterialization) ContentsProxy() *ContentsProxy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.proxy
}

func (r *RemoteFileWithMaterialization) CanSetContentsProxy() bool { return true }

// SetContentsProxy records the proxy of the staged local symlink.
// Calling it a second time panics: the proxy moves from absent to
// present exactly once.
func (r *RemoteFileWithMaterialization) SetContentsProxy(proxy ContentsProxy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.proxy != nil {
		panic(fmt.Sprintf("filemeta: contents proxy already set (%s)", r.proxy))
	}
	r.proxy = &proxy
}

func (r *RemoteFileWithMaterialization) Equal(other Metadata) bool {
	o, ok := other.(*RemoteFileWithMaterialization)
	return ok && bytes.Equal(r.digest, o.digest) && r.size == o.size &&
		r.locationIndex == o.locationIndex &&
		r.materializationExecPath == o.materializationExecPath
}

func (r *RemoteFileWithMaterialization) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("remoteFileWithMaterialization{digest: %s, size: %d, locationIndex: %d, materializationExecPath: %q, expireAt: %d, proxy: %v}",
		formatDigest(r.digest), r.size, r.locationIndex, r.materializationExecPath, r.expireAt, r.proxy)
}
