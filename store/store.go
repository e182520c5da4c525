// Package store holds the in-memory wording cache keyed by locale and the
// fallback resolution rules applied on top of it.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pitabwire/wording/content"
)

// ErrNoContent signals that neither the requested locale nor the default
// locale has a cache entry. Bootstrap guarantees the default locale is always
// present, so hitting this is a contract breach rather than a runtime
// condition.
var ErrNoContent = errors.New("no wording content cached for locale or default locale")

// Store is the single source of truth for cached wording. Entries are only
// ever inserted or replaced, never deleted.
//
// All access is guarded by a mutex so pipeline goroutines and the reactive
// core can touch it concurrently.
type Store struct {
	mu            sync.RWMutex
	entries       map[string]content.Document
	defaultLocale string
	version       uint64
}

// New creates an empty store anchored on the given default locale.
func New(defaultLocale string) *Store {
	return &Store{
		entries:       make(map[string]content.Document),
		defaultLocale: defaultLocale,
	}
}

// DefaultLocale returns the fallback-of-last-resort locale.
func (s *Store) DefaultLocale() string {
	return s.defaultLocale
}

// Get returns the entry cached for locale, if any. The returned document is a
// copy, callers may mutate it freely.
func (s *Store) Get(locale string) (content.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.entries[locale]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// Has reports whether a locale currently has a cache entry.
func (s *Store) Has(locale string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[locale]
	return ok
}

// Set replaces the entry for locale with doc.
func (s *Store) Set(locale string, doc content.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[locale] = doc.Clone()
	s.version++
}

// Locales lists the locales that currently hold an entry.
func (s *Store) Locales() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locales := make([]string, 0, len(s.entries))
	for locale := range s.entries {
		locales = append(locales, locale)
	}
	return locales
}

// Version increases on every Set. The localizer uses it to rebuild its
// translation bundle only when the cache actually changed.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Resolve returns the best available content for locale: the locale's own
// entry when cached, otherwise the default locale's entry. ErrNoContent is
// returned only when the default-locale invariant was bypassed.
func (s *Store) Resolve(locale string) (content.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, ok := s.entries[locale]; ok {
		return doc.Clone(), nil
	}

	if doc, ok := s.entries[s.defaultLocale]; ok {
		return doc.Clone(), nil
	}

	return nil, fmt.Errorf("resolving %q: %w", locale, ErrNoContent)
}

// MergeWithFallback prepares a freshly decoded document for storage. The new
// document's own fields always win; gaps are filled first from the already
// cached entry for the same locale, then from the default locale's entry.
// The merged document is returned, the store itself is not modified.
func (s *Store) MergeWithFallback(doc content.Document, locale string) content.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := doc.Clone()

	if locale != s.defaultLocale {
		if cached, ok := s.entries[locale]; ok {
			merged.Merge(cached)
		}
	}

	if cached, ok := s.entries[s.defaultLocale]; ok {
		merged.Merge(cached)
	}

	return merged
}
