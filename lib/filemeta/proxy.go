// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"fmt"

	"github.com/anvilbuild/anvil/lib/fingerprint"
	"golang.org/x/sys/unix"
)

// ContentsProxy is a cheap, approximate identity for a file's content,
// derived from inode attributes rather than the bytes themselves. Two
// equal proxies mean the content is very likely unchanged (a false
// negative requires the inode and change time to both be reused);
// unequal or missing proxies prove nothing.
type ContentsProxy struct {
	// CTimeNanos is the inode change time in nanoseconds since the
	// epoch. Unlike mtime, ctime cannot be set by userspace, so it
	// also catches metadata-only rewrites.
	CTimeNanos int64

	// Ino and Dev identify the inode.
	Ino uint64
	Dev uint64
}

// proxyFromStat builds a ContentsProxy from a raw stat result.
func proxyFromStat(st *unix.Stat_t) ContentsProxy {
	return ContentsProxy{
		CTimeNanos: st.Ctim.Sec*1e9 + st.Ctim.Nsec,
		Ino:        st.Ino,
		Dev:        uint64(st.Dev),
	}
}

// Equal reports whether two proxies identify the same content.
func (p ContentsProxy) Equal(other ContentsProxy) bool {
	return p == other
}

// AddTo appends the proxy to a fingerprint accumulator.
func (p ContentsProxy) AddTo(a *fingerprint.Accumulator) {
	a.AddInt64(p.CTimeNanos)
	a.AddInt64(int64(p.Ino))
	a.AddInt64(int64(p.Dev))
}

// String returns a debug rendering of the proxy.
func (p ContentsProxy) String() string {
	return fmt.Sprintf("ctime:%d ino:%d dev:%d", p.CTimeNanos, p.Ino, p.Dev)
}

// proxiesMatch is the comparison used by the metadata-only change
// check. A missing proxy on either side is treated as a mismatch:
// absence of evidence must trigger a rebuild, not excuse one.
func proxiesMatch(a, b *ContentsProxy) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}
