// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// anvil-meta inspects artifact metadata the way the incremental build
// engine sees it: probe paths, print their digests and fingerprints,
// and compare fresh probes against previously recorded snapshots.
//
// The record/check/sweep subcommands operate on an on-disk metadata
// cache keyed by absolute path, so a path can be snapshotted in one
// invocation and checked for modification in a later one.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/anvilbuild/anvil/lib/clock"
	"github.com/anvilbuild/anvil/lib/digest"
	"github.com/anvilbuild/anvil/lib/filemeta"
	"github.com/anvilbuild/anvil/lib/fingerprint"
	"github.com/anvilbuild/anvil/lib/metacache"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	var cacheDir string
	var followSymlinks bool
	var verbose bool

	flagSet := pflag.NewFlagSet("anvil-meta", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file")
	flagSet.StringVar(&cacheDir, "cache-dir", "", "metadata cache directory (overrides config)")
	flagSet.BoolVar(&followSymlinks, "follow-symlinks", false, "probe symlink targets instead of the links themselves")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flagSet.Usage = func() { printUsage(flagSet) }

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	arguments := flagSet.Args()
	if len(arguments) == 0 {
		printUsage(flagSet)
		return 2
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}

	command, paths := arguments[0], arguments[1:]
	switch command {
	case "stat":
		return runStat(paths, followSymlinks)
	case "diff":
		return runDiff(paths, followSymlinks)
	case "record":
		return runRecord(cfg, paths, followSymlinks)
	case "check":
		return runCheck(cfg, paths, followSymlinks)
	case "sweep":
		return runSweep(cfg, paths)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", command)
		printUsage(flagSet)
		return 2
	}
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `usage: anvil-meta [flags] <command> [args]

commands:
  stat <path>...    print metadata for each path
  diff <a> <b>      report whether a differs from b in build terms
  record <path>...  snapshot paths into the metadata cache
  check <path>...   compare fresh probes against recorded snapshots
  sweep             delete cache records with expired remote leases

exit status: 0 unchanged, 1 changed, 2 error

flags:
%s`, flagSet.FlagUsages())
}

func runStat(paths []string, followSymlinks bool) int {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "error: stat requires at least one path")
		return 2
	}
	status := 0
	for _, path := range paths {
		meta, err := filemeta.CreateFromStat(path, followSymlinks)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: probing %s: %v\n", path, err)
			status = 2
			continue
		}
		printMetadata(path, meta)
	}
	return status
}

func printMetadata(path string, meta filemeta.Metadata) {
	fmt.Printf("%s:\n", path)
	fmt.Printf("  kind: %s\n", meta.Kind())
	if dig := meta.Digest(); dig != nil {
		fmt.Printf("  size: %d\n", meta.Size())
		fmt.Printf("  digest: %x\n", dig)
	} else if meta.Kind() == filemeta.Directory {
		fmt.Printf("  mtime: %s\n", time.UnixMilli(meta.ModifiedTime()).UTC().Format(time.RFC3339))
	}
	if proxy := meta.ContentsProxy(); proxy != nil {
		fmt.Printf("  proxy: %s\n", proxy)
	}
	accumulator := fingerprint.New()
	meta.AddTo(accumulator)
	sum := accumulator.Sum()
	fmt.Printf("  fingerprint: %x\n", sum)
}

func runDiff(paths []string, followSymlinks bool) int {
	if len(paths) != 2 {
		fmt.Fprintln(os.Stderr, "error: diff requires exactly two paths")
		return 2
	}
	current, err := filemeta.CreateFromStat(paths[0], followSymlinks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: probing %s: %v\n", paths[0], err)
		return 2
	}
	lastKnown, err := filemeta.CreateFromStat(paths[1], followSymlinks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: probing %s: %v\n", paths[1], err)
		return 2
	}
	if filemeta.CouldBeModifiedSince(current, lastKnown) {
		fmt.Printf("%s differs from %s\n", paths[0], paths[1])
		return 1
	}
	fmt.Printf("%s matches %s\n", paths[0], paths[1])
	return 0
}

func runRecord(cfg *config, paths []string, followSymlinks bool) int {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "error: record requires at least one path")
		return 2
	}
	store, err := metacache.NewStore(cfg.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	status := 0
	for _, path := range paths {
		key, err := cacheKey(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			status = 2
			continue
		}
		meta, err := filemeta.CreateFromStat(path, followSymlinks)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: probing %s: %v\n", path, err)
			status = 2
			continue
		}
		if err := store.Put(key, meta); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			status = 2
			continue
		}
		slog.Debug("recorded snapshot", "path", path, "key", metacache.FormatKey(key))
		fmt.Printf("recorded %s\n", path)
	}
	return status
}

func runCheck(cfg *config, paths []string, followSymlinks bool) int {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "error: check requires at least one path")
		return 2
	}
	store, err := metacache.NewStore(cfg.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	status := 0
	for _, path := range paths {
		key, err := cacheKey(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			status = 2
			continue
		}
		recorded, err := store.Get(key)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Printf("%s: no recorded snapshot\n", path)
			} else {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
			status = max(status, 1)
			continue
		}
		current, err := filemeta.CreateFromStat(path, followSymlinks)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: probing %s: %v\n", path, err)
			status = 2
			continue
		}
		if filemeta.CouldBeModifiedSince(current, recorded) {
			fmt.Printf("%s: changed\n", path)
			status = max(status, 1)
		} else {
			fmt.Printf("%s: unchanged\n", path)
		}
	}
	return status
}

func runSweep(cfg *config, paths []string) int {
	if len(paths) != 0 {
		fmt.Fprintln(os.Stderr, "error: sweep takes no arguments")
		return 2
	}
	store, err := metacache.NewStore(cfg.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	removed, err := store.Sweep(clock.Real().Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	fmt.Printf("removed %d expired records\n", removed)
	return 0
}

// cacheKey derives the store key for a path from its absolute form,
// so relative invocations from the same directory hit the same record.
func cacheKey(path string) (metacache.Key, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return metacache.Key{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	return metacache.Key(digest.SumBytes([]byte(absolute))), nil
}
