package wording

import (
	"context"
	"fmt"
	"os"
)

// bootstrap fills the cache from the local tiers before any reads happen.
// Every supported locale, default locale first, gets a bundled pass and then
// a persisted pass. A bundled failure is fatal for the default locale only;
// everything else is logged and skipped. The persisted tier is best effort
// throughout.
func (s *Service) bootstrap(ctx context.Context) error {
	for _, locale := range s.locales {
		if err := s.loadBundled(ctx, locale); err != nil {
			return err
		}
		s.loadPersisted(ctx, locale)
	}

	return nil
}

func (s *Service) loadBundled(ctx context.Context, locale string) error {
	log := s.Log(ctx).WithField("locale", locale)

	location := s.sources.BundledLocation(locale)

	data, err := os.ReadFile(location)
	if err == nil {
		doc, decodeErr := s.codec.Decode(data)
		if decodeErr == nil {
			s.cache.Set(locale, s.cache.MergeWithFallback(doc, locale))
			return nil
		}
		err = decodeErr
	}

	if locale == s.defaultLocale {
		return fmt.Errorf("could not load bundled wording for default locale %q: %w", locale, err)
	}

	log.WithError(err).WithField("location", location).Error("could not load bundled wording")
	return nil
}

func (s *Service) loadPersisted(ctx context.Context, locale string) {
	log := s.Log(ctx).WithField("locale", locale)

	data, err := s.snapshots.Read(ctx, locale)
	if err != nil {
		// Missing and corrupt snapshots land here alike; both are best effort.
		log.WithError(err).Warn("could not read persisted wording")
		return
	}

	doc, err := s.codec.Decode(data)
	if err != nil {
		log.WithError(err).Warn("could not decode persisted wording")
		return
	}

	s.cache.Set(locale, s.cache.MergeWithFallback(doc, locale))
}
