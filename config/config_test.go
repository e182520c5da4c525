package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pitabwire/wording/config"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := config.FromEnv[config.Configuration]()
	require.NoError(t, err)

	require.Equal(t, "wording", cfg.Name())
	require.Equal(t, "en", cfg.DefaultLocale())
	require.Equal(t, []string{"en"}, cfg.Locales())
	require.Equal(t, "toml", cfg.FileExtension())
	require.Equal(t, "localization", cfg.BundledPath())
	require.Equal(t, 30*time.Second, cfg.RemoteTimeout())
	require.Equal(t, "wording.events.internal_._queue", cfg.GetEventsQueueName())
	require.Equal(t, "mem://wording.events.internal_._queue", cfg.GetEventsQueueURL())
}

func TestLocalesOrderingAndDedup(t *testing.T) {
	testCases := []struct {
		name          string
		locales       []string
		defaultLocale string
		expected      []string
	}{
		{
			name:          "default locale always comes first",
			locales:       []string{"fr", "sw", "en"},
			defaultLocale: "en",
			expected:      []string{"en", "fr", "sw"},
		},
		{
			name:          "duplicates are dropped",
			locales:       []string{"fr", "fr", "en", "fr"},
			defaultLocale: "en",
			expected:      []string{"en", "fr"},
		},
		{
			name:          "blank entries are skipped",
			locales:       []string{" ", "fr", ""},
			defaultLocale: "en",
			expected:      []string{"en", "fr"},
		},
		{
			name:          "empty default falls back to en",
			locales:       []string{"fr"},
			defaultLocale: "",
			expected:      []string{"en", "fr"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Configuration{
				WordingLocales:       tc.locales,
				WordingDefaultLocale: tc.defaultLocale,
			}
			require.Equal(t, tc.expected, cfg.Locales())
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := config.Configuration{
		WordingRemoteTimeout:     "not-a-duration",
		WorkerPoolExpiryDuration: "garbage",
	}

	require.Equal(t, 30*time.Second, cfg.RemoteTimeout())
	require.Equal(t, time.Second, cfg.GetExpiryDuration())

	cfg.WordingRemoteTimeout = "5s"
	require.Equal(t, 5*time.Second, cfg.RemoteTimeout())
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("WORDING_LOCALES", "en,fr,sw")
	t.Setenv("WORDING_DEFAULT_LOCALE", "fr")
	t.Setenv("WORDING_REMOTE_URI", "https://wording.example.com")

	cfg, err := config.FromEnv[config.Configuration]()
	require.NoError(t, err)

	require.Equal(t, "fr", cfg.DefaultLocale())
	require.Equal(t, []string{"fr", "en", "sw"}, cfg.Locales())
	require.Equal(t, "https://wording.example.com", cfg.RemoteURI())
}

func TestContextRoundTrip(t *testing.T) {
	cfg := &config.Configuration{ServiceName: "wording-test"}

	ctx := config.ToContext(t.Context(), cfg)
	got := config.FromContext[*config.Configuration](ctx)
	require.Same(t, cfg, got)
}
