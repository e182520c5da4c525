package wording

import (
	"context"

	"github.com/pitabwire/util"

	"github.com/pitabwire/wording/config"
	"github.com/pitabwire/wording/content"
	"github.com/pitabwire/wording/events"
	"github.com/pitabwire/wording/language"
	"github.com/pitabwire/wording/persist"
	"github.com/pitabwire/wording/provider"
)

// WithName overrides the service name used in log fields.
func WithName(name string) Option {
	return func(_ context.Context, s *Service) {
		s.name = name
	}
}

// WithConfig sets the configuration object. Any object works, features light
// up based on the Configuration* interfaces it satisfies; at minimum it must
// satisfy config.ConfigurationWording.
func WithConfig(configuration config.ConfigurationWording) Option {
	return func(_ context.Context, s *Service) {
		s.configuration = configuration
		s.cfg = configuration
	}
}

// WithLogger supplies a prebuilt logger instead of the one derived from
// configuration.
func WithLogger(logger *util.LogEntry) Option {
	return func(_ context.Context, s *Service) {
		s.logger = logger
	}
}

// WithProvider replaces the default filesystem and HTTP backed source
// locations.
func WithProvider(p provider.Provider) Option {
	return func(_ context.Context, s *Service) {
		s.sources = p
	}
}

// WithCodec overrides the codec inferred from the configured file extension.
func WithCodec(codec content.Codec) Option {
	return func(_ context.Context, s *Service) {
		s.codec = codec
	}
}

// WithSnapshotStore replaces the file backed persisted tier, for example with
// persist.NewRedisStore.
func WithSnapshotStore(store persist.Store) Option {
	return func(_ context.Context, s *Service) {
		s.snapshots = store
	}
}

// WithLanguageSource supplies the feed of active-locale changes. The default
// is a manual language.Switch pinned to the default locale.
func WithLanguageSource(source language.Source) Option {
	return func(_ context.Context, s *Service) {
		s.langSource = source
	}
}

// WithRegisterEvents registers additional events on the service's event
// registry next to the built-in resync event.
func WithRegisterEvents(evts ...events.EventI) Option {
	return func(_ context.Context, s *Service) {
		s.extraEvents = append(s.extraEvents, evts...)
	}
}
