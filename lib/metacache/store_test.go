// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package metacache

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/anvilbuild/anvil/lib/clock"
	"github.com/anvilbuild/anvil/lib/digest"
	"github.com/anvilbuild/anvil/lib/filemeta"
)

func keyFor(name string) Key {
	return Key(digest.SumBytes([]byte(name)))
}

func TestStorePutGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	original := filemeta.CreateForNormalFile(digestOf("contents"), nil, 8)
	key := keyFor("lib/libfoo.a")

	if err := store.Put(key, original); err != nil {
		t.Fatalf("Put: %v", err)
	}
	restored, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !restored.Equal(original) {
		t.Errorf("restored %s not equal to stored %s", restored, original)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Get(keyFor("absent")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Get of a missing record: %v, want wrapped os.ErrNotExist", err)
	}
}

func TestStoreOverwrite(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	key := keyFor("out/gen.txt")

	if err := store.Put(key, filemeta.CreateForNormalFile(digestOf("v1"), nil, 2)); err != nil {
		t.Fatalf("Put v1: %v", err)
	}
	second := filemeta.CreateForNormalFile(digestOf("v2"), nil, 2)
	if err := store.Put(key, second); err != nil {
		t.Fatalf("Put v2: %v", err)
	}

	restored, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !restored.Equal(second) {
		t.Error("overwrite did not replace the stored record")
	}
}

func TestStoreDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	key := keyFor("out/tmp.o")

	if err := store.Put(key, filemeta.CreateForDirectoryWithMtime(1000)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(key); !errors.Is(err, os.ErrNotExist) {
		t.Error("record still readable after Delete")
	}

	// Deleting an absent record is not an error.
	if err := store.Delete(key); err != nil {
		t.Errorf("Delete of an absent record: %v", err)
	}
}

func TestStoreSweep(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	fake := clock.Fake(time.UnixMilli(10_000))

	expired := filemeta.CreateRemoteWithMaterialization(
		digestOf("expired"), 4, 0, 5_000, "out/expired")
	alive := filemeta.CreateRemoteWithMaterialization(
		digestOf("alive"), 4, 0, 20_000, "out/alive")
	eternal := filemeta.CreateRemote(digestOf("eternal"), 4, 0)
	local := filemeta.CreateForNormalFile(digestOf("local"), nil, 4)

	entries := map[string]filemeta.Metadata{
		"expired": expired,
		"alive":   alive,
		"eternal": eternal,
		"local":   local,
	}
	for name, m := range entries {
		if err := store.Put(keyFor(name), m); err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
	}

	removed, err := store.Sweep(fake.Now())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep removed %d records, want 1", removed)
	}

	if _, err := store.Get(keyFor("expired")); !errors.Is(err, os.ErrNotExist) {
		t.Error("expired record survived the sweep")
	}
	for _, name := range []string{"alive", "eternal", "local"} {
		if _, err := store.Get(keyFor(name)); err != nil {
			t.Errorf("record %s was removed by the sweep: %v", name, err)
		}
	}
}

func TestStoreSweepSkipsCorruptRecords(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	key := keyFor("mangled")
	if err := store.Put(key, filemeta.CreateRemoteWithMaterialization(
		digestOf("mangled"), 4, 0, 1, "out/mangled")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := os.WriteFile(store.path(key), []byte("not cbor"), 0o644); err != nil {
		t.Fatalf("corrupting record: %v", err)
	}

	removed, err := store.Sweep(time.UnixMilli(1_000_000))
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 0 {
		t.Errorf("Sweep removed %d records, want 0: corrupt records must be kept", removed)
	}
}

func TestKeyFormatParse(t *testing.T) {
	key := keyFor("roundtrip")
	parsed, err := ParseKey(FormatKey(key))
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if parsed != key {
		t.Error("key did not survive a format/parse roundtrip")
	}

	if _, err := ParseKey("f00d"); err == nil {
		t.Error("expected an error for a short key")
	}
	if _, err := ParseKey("zz"); err == nil {
		t.Error("expected an error for non-hex input")
	}
}
