// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes content hashes for the Anvil action cache.
// All digests are 32-byte BLAKE3 hashes. Two hash domains exist:
// regular content (file bytes, directory listings, inline data) and
// symlink targets. Symlink-target digests are derived from the content
// digest of the target text by inverting the first byte, so a symlink
// pointing at "abc" can never share a cache identity with a regular
// file containing the bytes "abc". See SumSymlinkTarget for why the
// transform is applied after hashing rather than before.
package digest
