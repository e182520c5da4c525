package wording

import (
	"context"
	"errors"

	"github.com/pitabwire/wording/provider"
)

// EventResyncWording is the registry name of the event that re-fetches all
// wording from the remote service.
const EventResyncWording = "wording.resync"

// triggerSync schedules a full remote sync run on the worker pool. Runs are
// not de-duplicated: overlapping runs write the same merged results, so the
// last writer wins per locale.
func (s *Service) triggerSync(ctx context.Context) {
	err := s.pool.Submit(ctx, "wording-remote-sync", s.syncOnce)
	if err != nil {
		s.Log(ctx).WithError(err).Error("could not schedule wording sync run")
	}
}

// syncOnce fetches every supported locale from the remote tier, the active
// locale first so the visible wording refreshes soonest. Per-locale failures
// are contained; only the remote declaring itself unsupported stops the run.
func (s *Service) syncOnce(ctx context.Context) {
	for _, locale := range s.syncOrder() {
		if ctx.Err() != nil {
			return
		}

		if halt := s.syncLocale(ctx, locale); halt {
			return
		}
	}
}

// syncLocale runs the fetch, merge, persist, cache, republish sequence for a
// single locale. It reports true when the remote source is unsupported and
// the whole run should stop.
func (s *Service) syncLocale(ctx context.Context, locale string) bool {
	log := s.Log(ctx).WithField("locale", locale)

	payload, err := s.sources.FetchRemote(ctx, locale)
	if err != nil {
		if errors.Is(err, provider.ErrRemoteUnsupported) {
			log.WithError(err).Info("remote wording is unsupported, halting sync run")
			return true
		}
		log.WithError(err).Error("could not fetch remote wording")
		return false
	}

	doc, err := s.codec.Decode(payload)
	if err != nil {
		log.WithError(err).Error("could not decode remote wording")
		return false
	}

	merged := s.cache.MergeWithFallback(doc, locale)

	encoded, err := s.codec.Encode(merged)
	if err != nil {
		log.WithError(err).Error("could not encode wording for persistence")
		return false
	}

	if err = s.snapshots.Write(ctx, locale, encoded); err != nil {
		log.WithError(err).Error("could not persist wording snapshot")
		return false
	}

	s.cache.Set(locale, merged)
	s.republish(ctx, s.ActiveLocale())

	log.Debug("wording updated from remote")
	return false
}

// syncOrder lists the supported locales with the active locale moved to the
// front; the rest keep their declared order.
func (s *Service) syncOrder() []string {
	active := s.ActiveLocale()

	order := make([]string, 0, len(s.locales))
	order = append(order, active)
	for _, locale := range s.locales {
		if locale != active {
			order = append(order, locale)
		}
	}

	return order
}

// resyncEvent re-runs the remote sync pipeline when the matching command
// arrives on the events queue.
type resyncEvent struct {
	service *Service
}

func (e *resyncEvent) Name() string {
	return EventResyncWording
}

func (e *resyncEvent) PayloadType() any {
	return nil
}

func (e *resyncEvent) Validate(_ context.Context, _ any) error {
	return nil
}

func (e *resyncEvent) Execute(ctx context.Context, _ any) error {
	e.service.triggerSync(ctx)
	return nil
}
