// Package wording maintains a live in-memory cache of localized textual
// content keyed by locale. The cache is populated from three tiers in
// priority order: the snapshot bundled with the build, the snapshot persisted
// from earlier fetches and the remote wording service. The active locale's
// resolved content is exposed as a reactive value that republishes on every
// language change and every successful remote update.
package wording

import (
	"context"
	"fmt"

	"github.com/pitabwire/util"

	"github.com/pitabwire/wording/config"
	"github.com/pitabwire/wording/content"
	"github.com/pitabwire/wording/events"
	"github.com/pitabwire/wording/language"
	"github.com/pitabwire/wording/persist"
	"github.com/pitabwire/wording/provider"
	"github.com/pitabwire/wording/publisher"
	"github.com/pitabwire/wording/queue"
	"github.com/pitabwire/wording/store"
	"github.com/pitabwire/wording/workerpool"
)

type contextKey string

func (c contextKey) String() string {
	return "wording/" + string(c)
}

const ctxKeyService = contextKey("serviceKey")

// Service holds together the wording cache, its sources and the reactive
// publication of the active locale's content. An instance is scoped to stay
// for the lifetime of the application.
type Service struct {
	name          string
	logger        *util.LogEntry
	configuration any
	cfg           config.ConfigurationWording

	locales       []string
	defaultLocale string

	cache     *store.Store
	current   *publisher.Value[content.Document]
	codec     content.Codec
	sources   provider.Provider
	snapshots persist.Store

	langSource language.Source
	matcher    *language.Matcher

	pool         workerpool.Manager
	queueManager queue.Manager
	eventManager events.Manager
	extraEvents  []events.EventI

	localizer localizerState

	cancelFunc context.CancelFunc
}

// Option configures a Service while it is being constructed.
type Option func(ctx context.Context, s *Service)

// New creates a wording service. Bootstrap runs synchronously before New
// returns: the bundled pass must yield content for the default locale or New
// fails, the persisted pass is best effort. The initial remote sync is
// launched in the background just before returning.
func New(ctx context.Context, opts ...Option) (context.Context, *Service, error) {
	ctx, cancel := context.WithCancel(ctx)

	s := &Service{cancelFunc: cancel}

	for _, opt := range opts {
		opt(ctx, s)
	}

	if s.cfg == nil {
		cfg, err := config.FromEnv[config.Configuration]()
		if err != nil {
			cancel()
			return ctx, nil, fmt.Errorf("could not process wording configuration: %w", err)
		}
		s.configuration = &cfg
		s.cfg = &cfg
	}

	if s.name == "" {
		if named, ok := s.configuration.(config.ConfigurationService); ok {
			s.name = named.Name()
		} else {
			s.name = "wording"
		}
	}

	if s.logger == nil {
		s.logger = setupLogger(ctx, s.configuration).WithField("service", s.name)
	}
	ctx = util.ContextWithLogger(ctx, s.logger)

	s.locales = s.cfg.Locales()
	s.defaultLocale = s.cfg.DefaultLocale()
	s.matcher = language.NewMatcher(s.locales)
	s.cache = store.New(s.defaultLocale)

	if s.langSource == nil {
		s.langSource = language.NewSwitch(s.defaultLocale)
	}

	if s.codec == nil {
		s.codec = codecForExtension(s.cfg.FileExtension())
	}

	if s.sources == nil {
		s.sources = provider.New(provider.Options{
			BundledDir:    s.cfg.BundledPath(),
			PersistedDir:  s.cfg.PersistedPath(),
			RemoteURI:     s.cfg.RemoteURI(),
			Extension:     s.codec.Extension(),
			RemoteTimeout: s.cfg.RemoteTimeout(),
		})
	}

	if s.snapshots == nil {
		s.snapshots = persist.NewFileStore(s.sources.PersistedLocation)
	}

	if err := s.setupWorkers(ctx); err != nil {
		cancel()
		return ctx, nil, err
	}

	// The cache must be fully populated before anything reads it or the
	// publisher is seeded.
	if err := s.bootstrap(ctx); err != nil {
		cancel()
		return ctx, nil, err
	}

	seed, err := s.cache.Resolve(s.ActiveLocale())
	if err != nil {
		cancel()
		return ctx, nil, err
	}
	s.current = publisher.New(seed)

	if err = s.setupEvents(ctx); err != nil {
		cancel()
		return ctx, nil, err
	}

	go s.watchLanguage(ctx, s.langSource.Watch(ctx))

	s.triggerSync(ctx)

	ctx = ToContext(ctx, s)
	ctx = config.ToContext(ctx, s.configuration)
	return ctx, s, nil
}

func (s *Service) setupWorkers(ctx context.Context) error {
	poolOpts := []workerpool.Option{workerpool.WithPoolLogger(s.logger)}
	if workerCfg, ok := s.configuration.(config.ConfigurationWorkerPool); ok {
		poolOpts = append(poolOpts,
			workerpool.WithPoolCount(workerCfg.GetCount()),
			workerpool.WithSinglePoolCapacity(workerCfg.GetCapacity()),
			workerpool.WithPoolExpiryDuration(workerCfg.GetExpiryDuration()),
		)
	}

	pool, err := workerpool.NewManager(ctx, poolOpts...)
	if err != nil {
		return fmt.Errorf("could not create worker pool: %w", err)
	}
	s.pool = pool
	return nil
}

func (s *Service) setupEvents(ctx context.Context) error {
	eventsCfg, ok := s.configuration.(config.ConfigurationEvents)
	if !ok {
		// No events queue configured, external resync triggers are disabled.
		return nil
	}

	s.queueManager = queue.NewManager(ctx, s.pool)

	if err := s.queueManager.AddPublisher(ctx, eventsCfg.GetEventsQueueName(), eventsCfg.GetEventsQueueURL()); err != nil {
		return fmt.Errorf("could not register events publisher: %w", err)
	}

	s.eventManager = events.NewManager(ctx, s.queueManager, eventsCfg)
	s.eventManager.Add(&resyncEvent{service: s})
	for _, evt := range s.extraEvents {
		s.eventManager.Add(evt)
	}

	err := s.queueManager.AddSubscriber(
		ctx,
		eventsCfg.GetEventsQueueName(),
		eventsCfg.GetEventsQueueURL(),
		s.eventManager.Handler(),
	)
	if err != nil {
		return fmt.Errorf("could not register events subscriber: %w", err)
	}

	return nil
}

// watchLanguage recomputes and republishes the current wording every time
// the active locale changes. Every change publishes, even when the resolved
// content is unchanged.
func (s *Service) watchLanguage(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case locale, ok := <-changes:
			if !ok {
				return
			}
			s.republish(ctx, s.matcher.Normalize(locale))
		}
	}
}

func (s *Service) republish(ctx context.Context, activeLocale string) {
	doc, err := s.cache.Resolve(activeLocale)
	if err != nil {
		// Only reachable if the default-locale bootstrap invariant was
		// bypassed.
		s.logger.WithError(err).WithField("locale", activeLocale).
			Error("could not resolve wording for active locale")
		return
	}

	s.current.Publish(ctx, doc)
}

// Name gets the name of the service.
func (s *Service) Name() string {
	return s.name
}

// Config returns the active configuration object.
func (s *Service) Config() any {
	return s.configuration
}

// Log returns the service logger tied to the supplied context.
func (s *Service) Log(ctx context.Context) *util.LogEntry {
	return s.logger.WithContext(ctx)
}

// ActiveLocale returns the locale currently tracked by the publisher,
// normalized against the supported set.
func (s *Service) ActiveLocale() string {
	return s.matcher.Normalize(s.langSource.Current())
}

// Locales returns the supported locales, default locale first.
func (s *Service) Locales() []string {
	return append([]string(nil), s.locales...)
}

// DefaultLocale returns the fallback-of-last-resort locale.
func (s *Service) DefaultLocale() string {
	return s.defaultLocale
}

// Wording returns the current wording for the active locale. The value is
// always present once New has returned.
func (s *Service) Wording() content.Document {
	return s.current.Get()
}

// WatchWording subscribes to wording publications. Every recomputation
// delivers exactly one value, including values equal to the previous one.
func (s *Service) WatchWording(ctx context.Context) <-chan content.Document {
	return s.current.Subscribe(ctx)
}

// Resolve returns the best cached content for locale: its own entry when
// cached, otherwise the default locale's entry.
func (s *Service) Resolve(locale string) (content.Document, error) {
	return s.cache.Resolve(s.matcher.Normalize(locale))
}

// Emit publishes an event with the given name and payload on the events
// queue.
func (s *Service) Emit(ctx context.Context, name string, payload any) error {
	if s.eventManager == nil {
		return fmt.Errorf("events are not configured")
	}
	return s.eventManager.Emit(ctx, name, payload)
}

// TriggerResync emits the resync command on the events queue. The matching
// handler launches a new remote sync run without waiting for any in-flight
// run.
func (s *Service) TriggerResync(ctx context.Context) error {
	return s.Emit(ctx, EventResyncWording, nil)
}

// Stop winds down background work: the language watcher, queue listeners and
// the worker pool. The cached wording remains readable.
func (s *Service) Stop(ctx context.Context) {
	s.cancelFunc()

	if s.queueManager != nil {
		if err := s.queueManager.Stop(ctx); err != nil {
			s.logger.WithError(err).Error("could not stop queue manager")
		}
	}

	if s.pool != nil {
		s.pool.Shutdown()
	}
}

// ToContext pushes a service instance into the supplied context for easier
// propagation.
func ToContext(ctx context.Context, service *Service) context.Context {
	return context.WithValue(ctx, ctxKeyService, service)
}

// FromContext obtains a service instance being propagated through the
// context.
func FromContext(ctx context.Context) *Service {
	service, ok := ctx.Value(ctxKeyService).(*Service)
	if !ok {
		return nil
	}

	return service
}

func setupLogger(ctx context.Context, configuration any) *util.LogEntry {
	var opts []util.Option

	if cfg, ok := configuration.(config.ConfigurationLogLevel); ok {
		logLevel, err := util.ParseLevel(cfg.LoggingLevel())
		if err == nil {
			opts = append(opts, util.WithLogLevel(logLevel))
		}
		opts = append(opts,
			util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
			util.WithLogNoColor(!cfg.LoggingColored()),
		)
	}

	return util.NewLogger(ctx, opts...)
}

func codecForExtension(extension string) content.Codec {
	switch extension {
	case "json":
		return content.NewJSONCodec()
	case "yaml", "yml":
		return content.NewYAMLCodec()
	default:
		return content.NewTOMLCodec()
	}
}
