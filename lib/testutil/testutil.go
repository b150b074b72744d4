// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
)

// ExpectPanic runs fn and fails the test unless it panics. name
// identifies the case in the failure message.
//
//	testutil.ExpectPanic(t, "mtime of hashed file", func() { m.ModifiedTime() })
func ExpectPanic(t interface {
	Helper()
	Errorf(format string, args ...any)
}, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

// WriteFile writes contents to filepath.Join(dir, name) and returns
// the full path. Fails the test on error.
func WriteFile(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, dir, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

// Symlink creates a symlink at filepath.Join(dir, name) pointing at
// target and returns the link's path. Fails the test on error.
func Symlink(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, dir, name, target string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.Symlink(target, path); err != nil {
		t.Fatalf("creating fixture symlink %s: %v", path, err)
	}
	return path
}
