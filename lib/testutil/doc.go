// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Anvil packages.
//
// [ExpectPanic] asserts that a function panics. The metadata layer
// panics on contract violations (callers asking a digest-bearing file
// for its mtime, lease extensions that move backward), so tests for
// those contracts need to observe panics without crashing.
//
// [WriteFile] and [Symlink] create filesystem fixtures under a test's
// temporary directory, failing the test on error. Most metadata tests
// probe real files rather than mocks, so nearly every test starts by
// laying out a small tree.
//
// All helpers call into the test immediately on failure rather than
// returning errors, since fixture failures are not recoverable.
//
// This package has no Anvil-internal dependencies.
package testutil
