// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package metacache

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Payload codecs. Stored in Record.PayloadCodec; cache-format
// constants.
const (
	payloadCodecNone uint8 = 0
	payloadCodecLZ4  uint8 = 1
)

// compressThreshold is the payload size below which compression is
// not attempted. Small payloads rarely shrink and the codec byte
// round-trip is pure overhead.
const compressThreshold = 256

// encodePayload returns the stored form of an inline payload and the
// codec that produced it. Incompressible payloads are stored as-is.
func encodePayload(data []byte) ([]byte, uint8) {
	if len(data) < compressThreshold {
		return data, payloadCodecNone
	}

	bound := lz4.CompressBlockBound(len(data))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(data, destination, nil)
	// CompressBlock returns 0 when it determines the data is
	// incompressible; a larger-than-input result is equally useless.
	if err != nil || written == 0 || written >= len(data) {
		return data, payloadCodecNone
	}
	return destination[:written], payloadCodecLZ4
}

// decodePayload reverses encodePayload. uncompressedSize must match
// the original payload length exactly; a mismatch is an error, not a
// truncation.
func decodePayload(stored []byte, codec uint8, uncompressedSize int) ([]byte, error) {
	switch codec {
	case payloadCodecNone:
		if len(stored) != uncompressedSize {
			return nil, fmt.Errorf("payload is %d bytes, expected %d", len(stored), uncompressedSize)
		}
		return stored, nil

	case payloadCodecLZ4:
		destination := make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(stored, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("decompressed to %d bytes, expected %d", read, uncompressedSize)
		}
		return destination, nil

	default:
		return nil, fmt.Errorf("unknown payload codec %d", codec)
	}
}
