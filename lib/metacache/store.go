// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package metacache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anvilbuild/anvil/lib/codec"
	"github.com/anvilbuild/anvil/lib/filemeta"
)

// Key addresses one persisted record: the 32-byte fingerprint of the
// artifact the record describes.
type Key [32]byte

// FormatKey returns the hex-encoded string form of a key.
func FormatKey(key Key) string {
	return hex.EncodeToString(key[:])
}

// ParseKey parses a 64-character hex string into a Key.
func ParseKey(hexString string) (Key, error) {
	var key Key
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return key, fmt.Errorf("parsing cache key: %w", err)
	}
	if len(decoded) != len(key) {
		return key, fmt.Errorf("cache key is %d bytes, want %d", len(decoded), len(key))
	}
	copy(key[:], decoded)
	return key, nil
}

// Store persists metadata records as sharded CBOR files on disk.
// Safe for concurrent reads; writes must be serialized by the caller.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory, creating it
// if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating metadata cache directory %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Put snapshots m and atomically persists it under key. The record is
// written to a temporary file first, then renamed into place, so
// readers never see a partial record.
func (s *Store) Put(key Key, m filemeta.Metadata) error {
	record, err := Snapshot(m)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling record for %s: %w", FormatKey(key), err)
	}

	finalPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("creating cache shard directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.root, "record-*.cbor")
	if err != nil {
		return fmt.Errorf("creating temp record file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp record file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming record to %s: %w", finalPath, err)
	}

	success = true
	return nil
}

// Get loads and reconstructs the metadata stored under key. Returns
// an error wrapping os.ErrNotExist when no record exists.
func (s *Store) Get(key Key) (filemeta.Metadata, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("reading record for %s: %w", FormatKey(key), err)
	}

	var record Record
	if err := codec.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding record for %s: %w", FormatKey(key), err)
	}
	return record.Metadata()
}

// Delete removes the record stored under key. Returns nil if the
// record was removed or did not exist.
func (s *Store) Delete(key Key) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing record for %s: %w", FormatKey(key), err)
	}
	return nil
}

// Sweep walks the store and deletes records whose remote lease has
// expired at now. Returns the number of records removed. Records that
// fail to parse are skipped, not deleted: a sweep must never eat data
// because of a decoding bug.
func (s *Store) Sweep(now time.Time) (int, error) {
	removed := 0

	err := filepath.WalkDir(s.root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cbor") {
			return nil
		}
		// Skip temp files left by a crash.
		if _, parseErr := ParseKey(strings.TrimSuffix(entry.Name(), ".cbor")); parseErr != nil {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading record %s: %w", path, err)
		}
		var record Record
		if err := codec.Unmarshal(data, &record); err != nil {
			return nil
		}
		meta, err := record.Metadata()
		if err != nil {
			return nil
		}

		remote, ok := meta.(filemeta.Remote)
		if !ok || remote.IsAlive(now) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing expired record %s: %w", path, err)
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("sweeping metadata cache: %w", err)
	}
	return removed, nil
}

// path returns the sharded filesystem path for a record.
func (s *Store) path(key Key) string {
	hexKey := FormatKey(key)
	return filepath.Join(s.root, hexKey[:2], hexKey[2:4], hexKey+".cbor")
}
