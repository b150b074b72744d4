// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Size is the length in bytes of every digest produced by this
// package. All Anvil cache identities are this size.
const Size = 32

// Digest is a 32-byte BLAKE3 hash of some content.
type Digest [Size]byte

// SumBytes computes the content digest of data.
func SumBytes(data []byte) Digest {
	return blake3.Sum256(data)
}

// SumReader computes the content digest of everything readable from r.
// Memory usage is constant regardless of input size.
func SumReader(r io.Reader) (Digest, error) {
	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return Digest{}, err
	}
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d, nil
}

// SumFile computes the content digest of the file at path, streaming
// it through the hash function.
func SumFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	d, err := SumReader(file)
	if err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return d, nil
}

// SumSymlinkTarget computes the digest identifying a symlink whose
// target text is target. The result is the content digest of the
// target text with the first byte inverted.
//
// Without the transform, a symlink pointing at "abc" and a regular
// file containing the bytes "abc" would carry identical digests and
// the action cache could substitute one for the other. Inverting a
// byte of the output keeps the two domains disjoint: crafting a file
// whose content digest equals a symlink's transformed digest requires
// a preimage attack on BLAKE3. Tweaking the input before hashing
// would not have that property.
func SumSymlinkTarget(target string) Digest {
	d := SumBytes([]byte(target))
	d[0] ^= 0xFF
	return d
}

// Format returns the hex-encoded string representation of a digest.
// This is the canonical format used in metadata records, logs, and
// CLI output.
func Format(d Digest) string {
	return hex.EncodeToString(d[:])
}

// Parse parses a 64-character hex string into a Digest.
func Parse(hexString string) (Digest, error) {
	var d Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return d, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != Size {
		return d, fmt.Errorf("digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(d[:], decoded)
	return d, nil
}
