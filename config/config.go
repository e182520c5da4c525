// Package config carries the environment driven configuration for the
// wording service, in the same one-struct many-interfaces shape the rest of
// the frame family uses.
package config

import (
	"context"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type contextKey string

func (c contextKey) String() string {
	return "wording/config/" + string(c)
}

const ctxKeyConfiguration = contextKey("configurationKey")

// ToContext adds service configuration to the current supplied context.
func ToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// FromContext extracts service configuration from the supplied context if any exist.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

type Configuration struct {
	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"       yaml:"log_level"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT" yaml:"log_time_format"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"     yaml:"log_colored"`

	ServiceName string `envDefault:"wording" env:"SERVICE_NAME" yaml:"service_name"`

	WordingLocales       []string `envDefault:"en" env:"WORDING_LOCALES"        yaml:"locales"`
	WordingDefaultLocale string   `envDefault:"en" env:"WORDING_DEFAULT_LOCALE" yaml:"default_locale"`

	WordingBundledPath   string `envDefault:"localization"   env:"WORDING_BUNDLED_PATH"   yaml:"bundled_path"`
	WordingPersistedPath string `envDefault:".cache/wording" env:"WORDING_PERSISTED_PATH" yaml:"persisted_path"`
	WordingFileExtension string `envDefault:"toml"           env:"WORDING_FILE_EXTENSION" yaml:"file_extension"`

	WordingRemoteURI     string `envDefault:""    env:"WORDING_REMOTE_URI"     yaml:"remote_uri"`
	WordingRemoteTimeout string `envDefault:"30s" env:"WORDING_REMOTE_TIMEOUT" yaml:"remote_timeout"`

	EventsQueueName string `envDefault:"wording.events.internal_._queue"       env:"EVENTS_QUEUE_NAME" yaml:"events_queue_name"`
	EventsQueueURL  string `envDefault:"mem://wording.events.internal_._queue" env:"EVENTS_QUEUE_URL"  yaml:"events_queue_url"`

	WorkerPoolCapacity       int    `envDefault:"100" env:"WORKER_POOL_CAPACITY"        yaml:"worker_pool_capacity"`
	WorkerPoolCount          int    `envDefault:"1"   env:"WORKER_POOL_COUNT"           yaml:"worker_pool_count"`
	WorkerPoolExpiryDuration string `envDefault:"1s"  env:"WORKER_POOL_EXPIRY_DURATION" yaml:"worker_pool_expiry_duration"`
}

type ConfigurationService interface {
	Name() string
}

var _ ConfigurationService = new(Configuration)

func (c *Configuration) Name() string {
	return c.ServiceName
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingColored() bool
}

var _ ConfigurationLogLevel = new(Configuration)

func (c *Configuration) LoggingLevel() string {
	return c.LogLevel
}

func (c *Configuration) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *Configuration) LoggingColored() bool {
	return c.LogColored
}

type ConfigurationWording interface {
	Locales() []string
	DefaultLocale() string
	BundledPath() string
	PersistedPath() string
	FileExtension() string
	RemoteURI() string
	RemoteTimeout() time.Duration
}

var _ ConfigurationWording = new(Configuration)

// Locales returns the supported locales with the default locale always first
// and without duplicates, preserving the declared order otherwise.
func (c *Configuration) Locales() []string {
	ordered := []string{c.DefaultLocale()}
	seen := map[string]bool{c.DefaultLocale(): true}

	for _, locale := range c.WordingLocales {
		locale = strings.TrimSpace(locale)
		if locale == "" || seen[locale] {
			continue
		}
		seen[locale] = true
		ordered = append(ordered, locale)
	}

	return ordered
}

func (c *Configuration) DefaultLocale() string {
	if strings.TrimSpace(c.WordingDefaultLocale) == "" {
		return "en"
	}
	return c.WordingDefaultLocale
}

func (c *Configuration) BundledPath() string {
	return c.WordingBundledPath
}

func (c *Configuration) PersistedPath() string {
	return c.WordingPersistedPath
}

func (c *Configuration) FileExtension() string {
	return c.WordingFileExtension
}

func (c *Configuration) RemoteURI() string {
	return c.WordingRemoteURI
}

func (c *Configuration) RemoteTimeout() time.Duration {
	if c.WordingRemoteTimeout != "" {
		duration, err := time.ParseDuration(c.WordingRemoteTimeout)
		if err == nil {
			return duration
		}
	}

	return 30 * time.Second
}

type ConfigurationEvents interface {
	GetEventsQueueName() string
	GetEventsQueueURL() string
}

var _ ConfigurationEvents = new(Configuration)

func (c *Configuration) GetEventsQueueName() string {
	if strings.TrimSpace(c.EventsQueueName) == "" {
		return "wording.events.internal_._queue"
	}

	return c.EventsQueueName
}

func (c *Configuration) GetEventsQueueURL() string {
	if strings.TrimSpace(c.EventsQueueURL) == "" {
		return "mem://wording.events.internal_._queue"
	}

	return c.EventsQueueURL
}

type ConfigurationWorkerPool interface {
	GetCapacity() int
	GetCount() int
	GetExpiryDuration() time.Duration
}

var _ ConfigurationWorkerPool = new(Configuration)

func (c *Configuration) GetCapacity() int {
	return c.WorkerPoolCapacity
}

func (c *Configuration) GetCount() int {
	return c.WorkerPoolCount
}

func (c *Configuration) GetExpiryDuration() time.Duration {
	if c.WorkerPoolExpiryDuration != "" {
		duration, err := time.ParseDuration(c.WorkerPoolExpiryDuration)
		if err == nil {
			return duration
		}
	}

	return time.Second
}
