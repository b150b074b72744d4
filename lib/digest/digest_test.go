// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSumBytesDeterministic(t *testing.T) {
	input := []byte("deterministic input")

	hash1 := SumBytes(input)
	hash2 := SumBytes(input)
	if hash1 != hash2 {
		t.Error("SumBytes produced different results for the same input")
	}
}

func TestSumReaderMatchesSumBytes(t *testing.T) {
	input := []byte("streamed content, hashed in one pass")

	fromReader, err := SumReader(bytes.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if fromReader != SumBytes(input) {
		t.Error("SumReader and SumBytes disagree for identical content")
	}
}

func TestSumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.txt")
	content := []byte("file content to hash")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := SumFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if fromFile != SumBytes(content) {
		t.Error("SumFile and SumBytes disagree for identical content")
	}
}

func TestSumFileMissing(t *testing.T) {
	if _, err := SumFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("SumFile on a missing file did not return an error")
	}
}

func TestSymlinkDomainSeparation(t *testing.T) {
	// A symlink's digest must never equal the digest of a regular
	// file containing the target text as content, for any target.
	rng := rand.New(rand.NewSource(1))
	const ascii = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789/._-"

	targets := []string{"", "/", "abc", "/a/b", "../relative/target"}
	for i := 0; i < 200; i++ {
		var b strings.Builder
		length := rng.Intn(64)
		for j := 0; j < length; j++ {
			b.WriteByte(ascii[rng.Intn(len(ascii))])
		}
		targets = append(targets, b.String())
	}

	for _, target := range targets {
		asSymlink := SumSymlinkTarget(target)
		asContent := SumBytes([]byte(target))
		if asSymlink == asContent {
			t.Errorf("symlink digest for target %q collides with content digest", target)
		}
	}
}

func TestSymlinkDigestIsContentDigestWithFirstByteInverted(t *testing.T) {
	target := "/some/target"
	asSymlink := SumSymlinkTarget(target)
	asContent := SumBytes([]byte(target))

	if asSymlink[0] != asContent[0]^0xFF {
		t.Errorf("first byte = %#x, want %#x", asSymlink[0], asContent[0]^0xFF)
	}
	if !bytes.Equal(asSymlink[1:], asContent[1:]) {
		t.Error("bytes past the first differ between symlink and content digest")
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	original := SumBytes([]byte("round trip"))

	parsed, err := Parse(Format(original))
	if err != nil {
		t.Fatal(err)
	}
	if parsed != original {
		t.Error("Parse(Format(d)) != d")
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	if _, err := Parse("not hex"); err == nil {
		t.Error("Parse accepted non-hex input")
	}
	if _, err := Parse("abcd"); err == nil {
		t.Error("Parse accepted a short digest")
	}
}
