// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// probeResult is one consistent snapshot of a filesystem object, as
// returned by probePath. All fields are taken from a single stat call
// so they cannot straddle a concurrent modification.
type probeResult struct {
	kind        Kind
	size        int64
	mtimeMillis int64
	proxy       ContentsProxy
}

// probePath stats the object at path. When followSymlinks is set, a
// symlink is resolved and the result describes its target; otherwise
// the link itself is described. Callers must pick the same setting
// they used (or will use) to compute the digest, or proxy and digest
// would describe different objects.
func probePath(path string, followSymlinks bool) (probeResult, error) {
	var st unix.Stat_t
	var err error
	if followSymlinks {
		err = unix.Stat(path, &st)
	} else {
		err = unix.Lstat(path, &st)
	}
	if err != nil {
		return probeResult{}, &os.PathError{Op: "stat", Path: path, Err: err}
	}

	var kind Kind
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		kind = RegularFile
	case unix.S_IFDIR:
		kind = Directory
	case unix.S_IFLNK:
		kind = Symlink
	default:
		// Sockets, fifos, and device nodes have no content identity
		// the cache could track.
		return probeResult{}, fmt.Errorf("stat %s: unsupported file type %#o", path, st.Mode&unix.S_IFMT)
	}

	return probeResult{
		kind:        kind,
		size:        st.Size,
		mtimeMillis: st.Mtim.Sec*1000 + st.Mtim.Nsec/1e6,
		proxy:       proxyFromStat(&st),
	}, nil
}
