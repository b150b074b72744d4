// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package filemeta models the identity of filesystem objects tracked
// by Anvil's action cache: what occupies a path, whether its content
// could have changed since a build last saw it, and what bytes it
// contributes to a cache key.
//
// The variant set is closed. Each variant corresponds to one origin
// for the metadata:
//
//   - a regular file hashed from disk or supplied with a known digest
//   - a directory tracked by mtime (legacy) or by a listing digest
//   - a symlink whose target is recorded but not followed
//   - a remote cache entry, optionally staged locally via a symlink
//   - bytes carried inline in the value itself
//   - wrappers delegating to another value (path proxies, symlinks
//     resolving to source files)
//   - stateless markers (missing file, runfiles tree, constant
//     metadata)
//
// Change detection is deliberately asymmetric in its failure modes:
// digest equality is trusted unconditionally, and every case where
// equivalence cannot be proven cheaply reports "possibly modified".
// A false positive costs a rebuild; a false negative ships a stale
// cache entry.
//
// Values are immutable and safe for concurrent use. The single
// exception is RemoteFileWithMaterialization, whose lease expiry and
// contents proxy may move forward under a narrow internal lock; see
// that type's documentation.
//
// Misusing a variant (reading the mtime of a digest-bearing file,
// setting a contents proxy on a variant without the capability,
// shrinking a lease) is a programming error and panics. I/O failures
// from the filesystem-probing operations are returned as errors.
package filemeta
