// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package metacache persists artifact metadata between builds. Each
// metadata value is snapshotted into a CBOR record and stored in a
// two-level sharded directory keyed by its cache key:
//
//	<root>/<hex[:2]>/<hex[2:4]>/<key>.cbor
//
// Records round-trip: reconstructing a record yields metadata that
// compares equal to the original and contributes identical
// fingerprint bytes. Inline file payloads above a small threshold are
// stored LZ4-compressed.
//
// A Store is safe for concurrent reads. Writes must be serialized by
// the caller.
package metacache
