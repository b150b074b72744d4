// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package metacache

import (
	"fmt"
	"io"

	"github.com/anvilbuild/anvil/lib/filemeta"
)

// Variant names stored in records. These are cache-format constants;
// renaming one orphans every persisted record of that class.
const (
	variantRegularFile       = "regular_file"
	variantDirectoryMtime    = "directory_mtime"
	variantDirectoryDigest   = "directory_digest"
	variantUnresolvedSymlink = "unresolved_symlink"
	variantRemote            = "remote"
	variantRemoteMaterialize = "remote_materialized"
	variantInline            = "inline"
	variantSymlinkToSource   = "symlink_to_source"
	variantProxyFile         = "proxy_file"
	variantMissingFile       = "missing_file"
	variantRunfilesTree      = "runfiles_tree"
	variantConstant          = "constant"
)

// proxyRecord is the persisted form of a contents proxy.
type proxyRecord struct {
	CTimeNanos int64  `cbor:"ctime_nanos"`
	Ino        uint64 `cbor:"ino"`
	Dev        uint64 `cbor:"dev"`
}

// Record is the CBOR-serializable snapshot of one metadata value.
// Which fields are populated depends on Variant; delegating variants
// nest their wrapped value in Wrapped.
type Record struct {
	Variant string `cbor:"variant"`

	Digest      []byte `cbor:"digest,omitempty"`
	Size        int64  `cbor:"size,omitempty"`
	MtimeMillis int64  `cbor:"mtime_millis,omitempty"`

	Proxy *proxyRecord `cbor:"proxy,omitempty"`

	SymlinkTarget string `cbor:"symlink_target,omitempty"`

	// Payload carries inline file content, encoded per PayloadCodec.
	Payload      []byte `cbor:"payload,omitempty"`
	PayloadCodec uint8  `cbor:"payload_codec,omitempty"`
	PayloadSize  int64  `cbor:"payload_size,omitempty"`

	LocationIndex           int    `cbor:"location_index,omitempty"`
	ExpireAt                int64  `cbor:"expire_at,omitempty"`
	MaterializationExecPath string `cbor:"materialization_exec_path,omitempty"`

	ResolvedPath   string `cbor:"resolved_path,omitempty"`
	SourceExecPath string `cbor:"source_exec_path,omitempty"`
	Path           string `cbor:"path,omitempty"`

	Wrapped *Record `cbor:"wrapped,omitempty"`
}

// Snapshot converts a metadata value into its persistable record.
func Snapshot(m filemeta.Metadata) (*Record, error) {
	switch m {
	case filemeta.MissingFileMarker:
		return &Record{Variant: variantMissingFile}, nil
	case filemeta.RunfilesTreeMarker:
		return &Record{Variant: variantRunfilesTree}, nil
	case filemeta.ConstantMetadata:
		return &Record{Variant: variantConstant}, nil
	}

	if target, ok := filemeta.SymlinkTarget(m); ok {
		return &Record{Variant: variantUnresolvedSymlink, SymlinkTarget: target}, nil
	}

	if reader, ok := filemeta.InlinePayload(m); ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("reading inline payload: %w", err)
		}
		payload, payloadCodec := encodePayload(data)
		return &Record{
			Variant:      variantInline,
			Payload:      payload,
			PayloadCodec: payloadCodec,
			PayloadSize:  int64(len(data)),
		}, nil
	}

	if resolvedPath, source, sourceExecPath, ok := filemeta.SymlinkToSourceParts(m); ok {
		wrapped, err := Snapshot(source)
		if err != nil {
			return nil, err
		}
		return &Record{
			Variant:        variantSymlinkToSource,
			ResolvedPath:   resolvedPath,
			SourceExecPath: sourceExecPath,
			Wrapped:        wrapped,
		}, nil
	}

	if delegate, path, ok := filemeta.ProxyFileParts(m); ok {
		wrapped, err := Snapshot(delegate)
		if err != nil {
			return nil, err
		}
		return &Record{Variant: variantProxyFile, Path: path, Wrapped: wrapped}, nil
	}

	switch remote := m.(type) {
	case *filemeta.RemoteFileWithMaterialization:
		record := &Record{
			Variant:       variantRemoteMaterialize,
			Digest:        remote.Digest(),
			Size:          remote.Size(),
			LocationIndex: remote.LocationIndex(),
			ExpireAt:      remote.ExpireAt(),
		}
		if path, ok := remote.MaterializationExecPath(); ok {
			record.MaterializationExecPath = path
		}
		record.Proxy = snapshotProxy(remote.ContentsProxy())
		return record, nil
	case *filemeta.RemoteFile:
		return &Record{
			Variant:       variantRemote,
			Digest:        remote.Digest(),
			Size:          remote.Size(),
			LocationIndex: remote.LocationIndex(),
		}, nil
	}

	switch m.Kind() {
	case filemeta.RegularFile:
		return &Record{
			Variant: variantRegularFile,
			Digest:  m.Digest(),
			Size:    m.Size(),
			Proxy:   snapshotProxy(m.ContentsProxy()),
		}, nil
	case filemeta.Directory:
		if dig := m.Digest(); dig != nil {
			return &Record{Variant: variantDirectoryDigest, Digest: dig}, nil
		}
		return &Record{Variant: variantDirectoryMtime, MtimeMillis: m.ModifiedTime()}, nil
	default:
		return nil, fmt.Errorf("metacache: no record form for %s", m)
	}
}

// Metadata reconstructs the metadata value a record was snapshotted
// from.
func (r *Record) Metadata() (filemeta.Metadata, error) {
	switch r.Variant {
	case variantMissingFile:
		return filemeta.MissingFileMarker, nil
	case variantRunfilesTree:
		return filemeta.RunfilesTreeMarker, nil
	case variantConstant:
		return filemeta.ConstantMetadata, nil

	case variantUnresolvedSymlink:
		return filemeta.CreateUnresolvedSymlinkFromTarget(r.SymlinkTarget), nil

	case variantInline:
		data, err := decodePayload(r.Payload, r.PayloadCodec, int(r.PayloadSize))
		if err != nil {
			return nil, fmt.Errorf("decoding inline payload: %w", err)
		}
		return filemeta.CreateInline(data), nil

	case variantSymlinkToSource:
		source, err := r.wrappedMetadata()
		if err != nil {
			return nil, err
		}
		if r.SourceExecPath != "" {
			return filemeta.CreateSymlinkToSource(r.ResolvedPath, source, r.SourceExecPath), nil
		}
		return filemeta.CreateSymlinkToUnknownSource(r.ResolvedPath, source), nil

	case variantProxyFile:
		delegate, err := r.wrappedMetadata()
		if err != nil {
			return nil, err
		}
		return filemeta.CreateProxyFile(delegate, r.Path), nil

	case variantRemote:
		return filemeta.CreateRemote(r.Digest, r.Size, r.LocationIndex), nil

	case variantRemoteMaterialize:
		remote := filemeta.CreateRemoteWithMaterialization(
			r.Digest, r.Size, r.LocationIndex, r.ExpireAt, r.MaterializationExecPath)
		if r.Proxy != nil {
			remote.SetContentsProxy(restoreProxy(r.Proxy))
		}
		return remote, nil

	case variantRegularFile:
		var proxy *filemeta.ContentsProxy
		if r.Proxy != nil {
			restored := restoreProxy(r.Proxy)
			proxy = &restored
		}
		return filemeta.CreateForNormalFile(r.Digest, proxy, r.Size), nil

	case variantDirectoryDigest:
		return filemeta.CreateForDirectoryWithHash(r.Digest), nil

	case variantDirectoryMtime:
		return filemeta.CreateForDirectoryWithMtime(r.MtimeMillis), nil

	default:
		return nil, fmt.Errorf("metacache: unknown record variant %q", r.Variant)
	}
}

func (r *Record) wrappedMetadata() (filemeta.Metadata, error) {
	if r.Wrapped == nil {
		return nil, fmt.Errorf("metacache: %s record without wrapped metadata", r.Variant)
	}
	return r.Wrapped.Metadata()
}

func snapshotProxy(p *filemeta.ContentsProxy) *proxyRecord {
	if p == nil {
		return nil
	}
	return &proxyRecord{CTimeNanos: p.CTimeNanos, Ino: p.Ino, Dev: p.Dev}
}

func restoreProxy(p *proxyRecord) filemeta.ContentsProxy {
	return filemeta.ContentsProxy{CTimeNanos: p.CTimeNanos, Ino: p.Ino, Dev: p.Dev}
}
