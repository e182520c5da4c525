// Package provider abstracts where wording content comes from: the bundled
// snapshot shipped with a build, the snapshot persisted from earlier fetches
// and the remote wording service.
package provider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// ErrRemoteUnsupported is the distinguished signal that the remote source as
// a whole cannot serve wording, typically because the feature is disabled
// server side. A sync run stops entirely on it instead of retrying the
// remaining locales.
var ErrRemoteUnsupported = errors.New("remote wording is not supported")

// Provider supplies per-locale source locations and remote fetches.
type Provider interface {
	// BundledLocation is the path of the wording file shipped with the build.
	BundledLocation(locale string) string

	// PersistedLocation is the path where fetched wording is cached on disk.
	PersistedLocation(locale string) string

	// FetchRemote retrieves the current wording payload for locale from the
	// remote service. It fails with ErrRemoteUnsupported when the remote
	// source globally lacks support.
	FetchRemote(ctx context.Context, locale string) ([]byte, error)
}

// FileName is the canonical per-locale wording file name, messages.<locale>.<ext>.
func FileName(locale, extension string) string {
	return fmt.Sprintf("messages.%v.%s", locale, extension)
}

// Options configures the default provider.
type Options struct {
	// BundledDir holds the wording files shipped with the application build.
	BundledDir string

	// PersistedDir receives wording cached from remote fetches.
	PersistedDir string

	// RemoteURI is the base address of the remote wording service. Leave
	// empty to run without a remote tier; fetches then report
	// ErrRemoteUnsupported.
	RemoteURI string

	// Extension of the wording files, defaults to toml.
	Extension string

	// RemoteTimeout bounds a single remote fetch. Zero means no bound beyond
	// the caller's context.
	RemoteTimeout time.Duration
}

type defaultProvider struct {
	bundledDir   string
	persistedDir string
	extension    string
	remote       *remoteClient
}

// New creates the default provider: bundled and persisted files on the local
// filesystem plus an HTTP remote tier.
func New(opts Options) Provider {
	extension := opts.Extension
	if extension == "" {
		extension = "toml"
	}

	p := &defaultProvider{
		bundledDir:   opts.BundledDir,
		persistedDir: opts.PersistedDir,
		extension:    extension,
	}

	if opts.RemoteURI != "" {
		p.remote = newRemoteClient(opts.RemoteURI, extension, opts.RemoteTimeout)
	}

	return p
}

func (p *defaultProvider) BundledLocation(locale string) string {
	return filepath.Join(p.bundledDir, FileName(locale, p.extension))
}

func (p *defaultProvider) PersistedLocation(locale string) string {
	return filepath.Join(p.persistedDir, FileName(locale, p.extension))
}

func (p *defaultProvider) FetchRemote(ctx context.Context, locale string) ([]byte, error) {
	if p.remote == nil {
		return nil, ErrRemoteUnsupported
	}

	return p.remote.fetch(ctx, locale)
}
