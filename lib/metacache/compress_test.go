// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package metacache

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestPayloadSmallStaysUncompressed(t *testing.T) {
	data := []byte("short payload")
	stored, payloadCodec := encodePayload(data)
	if payloadCodec != payloadCodecNone {
		t.Errorf("codec = %d, want none for payloads below the threshold", payloadCodec)
	}
	if !bytes.Equal(stored, data) {
		t.Error("small payload was altered")
	}
}

func TestPayloadCompressibleRoundtrip(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 256)
	stored, payloadCodec := encodePayload(data)
	if payloadCodec != payloadCodecLZ4 {
		t.Fatalf("codec = %d, want lz4 for repetitive data", payloadCodec)
	}
	if len(stored) >= len(data) {
		t.Errorf("compressed size %d not smaller than original %d", len(stored), len(data))
	}

	decoded, err := decodePayload(stored, payloadCodec, len(data))
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("decoded payload differs from original")
	}
}

func TestPayloadIncompressibleFallsBack(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 4096)
	rng.Read(data)

	stored, payloadCodec := encodePayload(data)
	if payloadCodec != payloadCodecNone {
		t.Fatalf("codec = %d, want none for random data", payloadCodec)
	}
	decoded, err := decodePayload(stored, payloadCodec, len(data))
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("decoded payload differs from original")
	}
}

func TestPayloadSizeMismatch(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 256)
	stored, payloadCodec := encodePayload(data)
	if payloadCodec != payloadCodecLZ4 {
		t.Skip("test data did not compress")
	}
	if _, err := decodePayload(stored, payloadCodec, len(data)+1); err == nil {
		t.Error("expected an error for a wrong uncompressed size")
	}
}

func TestPayloadUnknownCodec(t *testing.T) {
	if _, err := decodePayload([]byte("x"), 99, 1); err == nil {
		t.Error("expected an error for an unknown payload codec")
	}
}
