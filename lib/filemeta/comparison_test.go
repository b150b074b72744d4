// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"testing"

	"github.com/anvilbuild/anvil/lib/digest"
	"github.com/anvilbuild/anvil/lib/testutil"
)

func digestOf(content string) []byte {
	d := digest.SumBytes([]byte(content))
	return d[:]
}

func TestEqualDigestAndSizeIsUnchanged(t *testing.T) {
	d := digestOf("content")
	current := CreateForNormalFile(d, nil, 10)
	lastKnown := CreateForNormalFile(d, nil, 10)

	// The authoritative path is symmetric.
	if CouldBeModifiedSince(current, lastKnown) {
		t.Error("equal digest and size reported as modified")
	}
	if CouldBeModifiedSince(lastKnown, current) {
		t.Error("equal digest and size reported as modified in reverse direction")
	}
}

func TestDifferingDigestIsChanged(t *testing.T) {
	current := CreateForNormalFile(digestOf("one"), nil, 10)
	lastKnown := CreateForNormalFile(digestOf("two"), nil, 10)

	if !CouldBeModifiedSince(current, lastKnown) {
		t.Error("differing digests reported as unchanged")
	}
}

func TestEqualDigestDifferingSizeIsChanged(t *testing.T) {
	d := digestOf("content")
	current := CreateForNormalFile(d, nil, 10)
	lastKnown := CreateForNormalFile(d, nil, 11)

	if !CouldBeModifiedSince(current, lastKnown) {
		t.Error("differing sizes reported as unchanged")
	}
}

func TestKindMismatchIsChanged(t *testing.T) {
	pairs := []struct {
		name               string
		current, lastKnown Metadata
	}{
		{"file vs directory", CreateForNormalFile(digestOf("x"), nil, 1), CreateForDirectoryWithMtime(100)},
		{"file vs symlink", CreateForNormalFile(digestOf("/a/b"), nil, 4), mustSymlinkMeta(t, "/a/b")},
		{"directory vs symlink", CreateForDirectoryWithHash(digestOf("listing")), mustSymlinkMeta(t, "/a/b")},
	}

	for _, pair := range pairs {
		if !CouldBeModifiedSince(pair.current, pair.lastKnown) {
			t.Errorf("%s: kind mismatch reported as unchanged", pair.name)
		}
		if !CouldBeModifiedSince(pair.lastKnown, pair.current) {
			t.Errorf("%s (reversed): kind mismatch reported as unchanged", pair.name)
		}
	}
}

func TestSingletonsAreNeverTrusted(t *testing.T) {
	file := CreateForNormalFile(digestOf("content"), nil, 7)

	for _, marker := range []Metadata{MissingFileMarker, RunfilesTreeMarker, ConstantMetadata} {
		if !CouldBeModifiedSince(marker, file) {
			t.Errorf("%s as current reported as unchanged", marker)
		}
		if !CouldBeModifiedSince(file, marker) {
			t.Errorf("%s as last-known reported as unchanged", marker)
		}
		if !CouldBeModifiedSince(marker, marker) {
			t.Errorf("%s compared to itself reported as unchanged", marker)
		}
	}
}

func TestDirectoryByMtimeIsAlwaysChanged(t *testing.T) {
	// No digest means no proof of equivalence, even for equal mtimes.
	if !CouldBeModifiedSince(CreateForDirectoryWithMtime(100), CreateForDirectoryWithMtime(200)) {
		t.Error("mtime directories with differing mtime reported as unchanged")
	}
	if !CouldBeModifiedSince(CreateForDirectoryWithMtime(100), CreateForDirectoryWithMtime(100)) {
		t.Error("mtime directories with equal mtime reported as unchanged; the fallback must stay conservative")
	}
}

func TestHashedDirectoryComparesByDigest(t *testing.T) {
	if CouldBeModifiedSince(CreateForDirectoryWithHash(digestOf("listing")), CreateForDirectoryWithHash(digestOf("listing"))) {
		t.Error("equal listing digests reported as modified")
	}
	if !CouldBeModifiedSince(CreateForDirectoryWithHash(digestOf("a")), CreateForDirectoryWithHash(digestOf("b"))) {
		t.Error("differing listing digests reported as unchanged")
	}
}

func TestProxyComparisonWithoutDigest(t *testing.T) {
	proxyA := &ContentsProxy{CTimeNanos: 1, Ino: 2, Dev: 3}
	proxyACopy := &ContentsProxy{CTimeNanos: 1, Ino: 2, Dev: 3}
	proxyB := &ContentsProxy{CTimeNanos: 9, Ino: 2, Dev: 3}

	// Digest-less regular files fall back to size + proxy.
	if CouldBeModifiedSince(CreateForNormalFile(nil, proxyA, 10), CreateForNormalFile(nil, proxyACopy, 10)) {
		t.Error("matching size and proxy reported as modified")
	}
	if !CouldBeModifiedSince(CreateForNormalFile(nil, proxyA, 10), CreateForNormalFile(nil, proxyB, 10)) {
		t.Error("differing proxies reported as unchanged")
	}
	if !CouldBeModifiedSince(CreateForNormalFile(nil, proxyA, 10), CreateForNormalFile(nil, proxyACopy, 11)) {
		t.Error("differing sizes reported as unchanged")
	}
}

func TestAbsentProxiesAreNotAMatch(t *testing.T) {
	// Two absent proxies prove nothing; absence must not pass as
	// equality.
	current := CreateForNormalFile(nil, nil, 10)
	lastKnown := CreateForNormalFile(nil, nil, 10)

	if !CouldBeModifiedSince(current, lastKnown) {
		t.Error("two absent proxies reported as unchanged")
	}
}

func TestRegularFileVersusMaterializedRemote(t *testing.T) {
	proxy := ContentsProxy{CTimeNanos: 5, Ino: 6, Dev: 7}

	remote := CreateRemoteWithMaterialization(digestOf("remote"), 10, 1, -1, "out/stage")
	remote.SetContentsProxy(proxy)

	local := CreateForNormalFile(nil, &proxy, 10)
	if CouldBeModifiedSince(local, remote) {
		t.Error("matching proxy and size against materialized remote reported as modified")
	}

	smaller := CreateForNormalFile(nil, &proxy, 9)
	if !CouldBeModifiedSince(smaller, remote) {
		t.Error("size mismatch against materialized remote reported as unchanged")
	}

	unstagedRemote := CreateRemoteWithMaterialization(digestOf("remote"), 10, 1, -1, "out/stage")
	if !CouldBeModifiedSince(local, unstagedRemote) {
		t.Error("remote without an observed proxy reported as unchanged")
	}
}

func TestSymlinkToSourceIsDereferenced(t *testing.T) {
	proxy := ContentsProxy{CTimeNanos: 1, Ino: 2, Dev: 3}
	source := CreateForNormalFile(nil, &proxy, 10)
	wrapped := CreateSymlinkToUnknownSource("/abs/resolved", source)

	local := CreateForNormalFile(nil, &proxy, 10)

	if CouldBeModifiedSince(local, wrapped) {
		t.Error("last-known symlink-to-source not dereferenced before proxy comparison")
	}
	if CouldBeModifiedSince(wrapped, local) {
		t.Error("current symlink-to-source not dereferenced before proxy comparison")
	}
}

func TestUnresolvedSymlinkVersusInlineFile(t *testing.T) {
	link := mustSymlinkMeta(t, "/a/b")
	inline := CreateInline([]byte("/a/b"))

	// Domain separation keeps the digests apart even though the
	// bytes coincide.
	if string(link.Digest()) == string(inline.Digest()) {
		t.Error("symlink and inline file with identical text share a digest")
	}
	if !CouldBeModifiedSince(link, inline) {
		t.Error("symlink vs inline file reported as unchanged")
	}
}

// mustSymlinkMeta creates a real symlink with the given target and
// returns its metadata.
func mustSymlinkMeta(t *testing.T, target string) Metadata {
	t.Helper()
	path := testutil.Symlink(t, t.TempDir(), "link", target)
	m, err := CreateUnresolvedSymlink(path)
	if err != nil {
		t.Fatal(err)
	}
	return m
}
