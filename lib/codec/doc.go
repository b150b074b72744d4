// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Anvil's standard CBOR encoding configuration.
//
// Persisted metadata records and cache state files are CBOR. This
// package provides the shared encoding and decoding modes so that
// every Anvil package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC
// 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces
// identical bytes — which matters for anything that feeds a cache
// key.
//
// The decoder silently ignores unknown fields, so records written by
// a newer Anvil remain readable by an older one.
//
// For buffer-oriented operations (record files):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
package codec
