// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package filemeta

import (
	"fmt"

	"github.com/anvilbuild/anvil/lib/fingerprint"
)

// proxyFile wraps another metadata value together with the concrete
// path it was resolved from. Every query forwards to the wrapped
// value; only the path is its own.
type proxyFile struct {
	delegate Metadata
	path     string
}

// CreateProxyFile wraps delegate with the path it was resolved from.
func CreateProxyFile(delegate Metadata, path string) Metadata {
	if delegate == nil {
		panic("filemeta: CreateProxyFile requires delegate metadata")
	}
	if path == "" {
		panic("filemeta: CreateProxyFile requires a path")
	}
	return &proxyFile{delegate: delegate, path: path}
}

// ProxyFileParts decomposes a proxy-file metadata value into its
// wrapped metadata and the path it was resolved from. ok is false
// when m is not a proxy-file value.
func ProxyFileParts(m Metadata) (delegate Metadata, path string, ok bool) {
	p, isWrapper := m.(*proxyFile)
	if !isWrapper {
		return nil, "", false
	}
	return p.delegate, p.path, true
}

func (p *proxyFile) Kind() Kind { return p.delegate.Kind() }

func (p *proxyFile) Digest() []byte { return p.delegate.Digest() }

func (p *proxyFile) Size() int64 { return p.delegate.Size() }

func (p *proxyFile) ModifiedTime() int64 { return p.delegate.ModifiedTime() }

func (p *proxyFile) ContentsProxy() *ContentsProxy { return p.delegate.ContentsProxy() }

func (p *proxyFile) SetContentsProxy(proxy ContentsProxy) { p.delegate.SetContentsProxy(proxy) }

func (p *proxyFile) CanSetContentsProxy() bool { return p.delegate.CanSetContentsProxy() }

func (p *proxyFile) LocationIndex() int { return p.delegate.LocationIndex() }

func (p *proxyFile) IsRemote() bool { return p.delegate.IsRemote() }

func (p *proxyFile) MaterializationExecPath() (string, bool) {
	return p.delegate.MaterializationExecPath()
}

func (p *proxyFile) WasModifiedSinceDigest(path string) (bool, error) {
	return p.delegate.WasModifiedSinceDigest(path)
}

func (p *proxyFile) AddTo(a *fingerprint.Accumulator) { p.delegate.AddTo(a) }

func (p *proxyFile) Equal(other Metadata) bool {
	o, ok := other.(*proxyFile)
	return ok && p.delegate.Equal(o.delegate) && p.path == o.path
}

// couldBeModifiedByMetadata deliberately keeps the conservative
// default rather than forwarding: the wrapped value was resolved
// through a path this value no longer verifies, so a metadata-only
// "unchanged" proof is not available here.
func (p *proxyFile) couldBeModifiedByMetadata(lastKnown Metadata) bool { return true }

func (p *proxyFile) isSingleton() bool { return false }

func (p *proxyFile) String() string {
	return fmt.Sprintf("proxyFile{delegate: %s, path: %s}", p.delegate, p.path)
}
