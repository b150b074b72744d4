// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint accumulates the byte representation of cache
// keys. Callers append values in a fixed order and finalize with Sum;
// the same sequence of appends always yields the same 32-byte result.
// Variable-length values are length-prefixed so that adjacent appends
// cannot be confused ("ab"+"c" never fingerprints like "a"+"bc").
package fingerprint

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Accumulator builds a fingerprint incrementally. The zero value is
// not usable; call New. An Accumulator is not safe for concurrent use.
type Accumulator struct {
	hasher *blake3.Hasher
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{hasher: blake3.New()}
}

// AddBytes appends a variable-length byte sequence, prefixed with its
// length as an 8-byte little-endian integer.
func (a *Accumulator) AddBytes(data []byte) {
	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(len(data)))
	a.hasher.Write(length[:])
	a.hasher.Write(data)
}

// AddString appends a string as its UTF-8 bytes, length-prefixed.
func (a *Accumulator) AddString(s string) {
	a.AddBytes([]byte(s))
}

// AddInt64 appends a fixed-width 8-byte little-endian integer. No
// length prefix is needed for fixed-width values.
func (a *Accumulator) AddInt64(v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	a.hasher.Write(buf[:])
}

// AddTag appends a single disambiguation byte. Used to separate value
// classes whose payload bytes could otherwise coincide.
func (a *Accumulator) AddTag(tag byte) {
	a.hasher.Write([]byte{tag})
}

// Sum finalizes the accumulated bytes into a 32-byte fingerprint.
// The Accumulator remains usable; further appends continue from the
// current state.
func (a *Accumulator) Sum() [32]byte {
	var out [32]byte
	copy(out[:], a.hasher.Sum(nil))
	return out
}

// Reset returns the Accumulator to its empty state.
func (a *Accumulator) Reset() {
	a.hasher.Reset()
}
