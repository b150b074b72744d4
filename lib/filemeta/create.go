// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"github.com/anvilbuild/anvil/lib/digest"
)

// Create builds metadata from a completed filesystem probe of path.
// isFile, size, and proxy come from the probe; dig is the content
// digest if already known, or nil to have it computed here. A
// non-file becomes mtime-tracked directory metadata (the legacy
// path), which requires an extra stat for the mtime.
//
// The caller must have probed with the same symlink-following choice
// used (or to be used) for the digest, or proxy and digest would
// describe different objects.
func Create(path string, isFile bool, size int64, proxy *ContentsProxy, dig []byte) (Metadata, error) {
	if !isFile {
		probed, err := probePath(path, true)
		if err != nil {
			return nil, err
		}
		return CreateForDirectoryWithMtime(probed.mtimeMillis), nil
	}
	if dig == nil {
		d, err := digest.SumFile(path)
		if err != nil {
			return nil, err
		}
		dig = d[:]
	}
	return CreateForNormalFile(dig, proxy, size), nil
}

// CreateFromStat probes path and builds metadata for whatever is
// there. Regular files are hashed; directories fall back to mtime
// tracking; with followSymlinks unset, a symlink is recorded
// unresolved, by its target text.
//
// The stat happens before the hash on purpose: if the file changes
// between the two, the stale proxy makes a later
// WasModifiedSinceDigest report the modification instead of hiding
// it.
func CreateFromStat(path string, followSymlinks bool) (Metadata, error) {
	probed, err := probePath(path, followSymlinks)
	if err != nil {
		return nil, err
	}

	switch probed.kind {
	case Symlink:
		return CreateUnresolvedSymlink(path)
	case RegularFile:
		proxy := probed.proxy
		return Create(path, true, probed.size, &proxy, nil)
	default:
		return CreateForDirectoryWithMtime(probed.mtimeMillis), nil
	}
}
