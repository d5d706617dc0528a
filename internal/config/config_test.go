package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophergentle/avatarclock/internal/render"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ID", "APP_HASH", "BLUESKY_HOST", "BLUESKY_HANDLE", "BLUESKY_PASSWORD",
		"AVATAR_MODE", "AVATAR_BACKEND", "ASSETS_DIR", "OUTPUT_FILE", "FONT_FILE",
		"CACHE_FILE", "CACHE_TABLE", "TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ID", "123456")
	t.Setenv("APP_HASH", "0123456789abcdef")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"), "")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 123456, cfg.Telegram.AppID)
	assert.Equal(t, "0123456789abcdef", cfg.Telegram.AppHash)
	assert.Equal(t, 100, cfg.Telegram.ConnectionRetries)
	assert.Equal(t, BackendTelegram, cfg.Settings.Backend)
	assert.Equal(t, render.ModeClock, cfg.RenderMode())
	assert.Equal(t, filepath.Join("assets", "upload.png"), cfg.Settings.OutputFile)
	assert.Equal(t, "cache.json", cfg.Settings.CacheFile)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  app_id: 1
  app_hash: fromfile
  connection_retries: 5
settings:
  mode: countdown
  assets_dir: /srv/avatar
  timezone: Europe/Moscow
  countdown_hours: [0, 12]
`), 0o600))
	t.Setenv("APP_HASH", "fromenv")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Telegram.AppID)
	assert.Equal(t, "fromenv", cfg.Telegram.AppHash)
	assert.Equal(t, 5, cfg.Telegram.ConnectionRetries)
	assert.Equal(t, render.ModeCountdown, cfg.RenderMode())
	assert.Equal(t, filepath.Join("/srv/avatar", "upload.png"), cfg.Settings.OutputFile)
	assert.Equal(t, []int{0, 12}, cfg.Settings.CountdownHours)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("APP_ID")
	os.Unsetenv("APP_HASH")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("APP_ID=42\nAPP_HASH=dotenv\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("APP_ID")
		os.Unsetenv("APP_HASH")
	})

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Telegram.AppID)
	assert.Equal(t, "dotenv", cfg.Telegram.AppHash)
}

func TestLoadMissingEnvFileIsFine(t *testing.T) {
	clearEnv(t)
	_, err := Load("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoadRejectsBadAppID(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ID", "abc")

	_, err := Load("", "")
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Error(), "APP_ID")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram: [unclosed"), 0o600))

	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "telegram missing credentials",
			cfg:     Config{Settings: SettingsConfig{Mode: "clock", Backend: BackendTelegram}},
			wantErr: "APP_ID, APP_HASH",
		},
		{
			name:    "bluesky missing password",
			cfg:     Config{Bluesky: BlueskyConfig{Handle: "me.bsky.social"}, Settings: SettingsConfig{Mode: "clock", Backend: BackendBluesky}},
			wantErr: "BLUESKY_PASSWORD",
		},
		{
			name:    "unknown mode",
			cfg:     Config{Settings: SettingsConfig{Mode: "weather", Backend: BackendTelegram}},
			wantErr: "invalid mode",
		},
		{
			name:    "unknown backend",
			cfg:     Config{Settings: SettingsConfig{Mode: "clock", Backend: "myspace"}},
			wantErr: "unknown backend",
		},
		{
			name: "bad countdown hour",
			cfg: Config{
				Telegram: TelegramConfig{AppID: 1, AppHash: "x"},
				Settings: SettingsConfig{Mode: "countdown", Backend: BackendTelegram, CountdownHours: []int{24}},
			},
			wantErr: "countdown hours",
		},
		{
			name: "bad timezone",
			cfg: Config{
				Telegram: TelegramConfig{AppID: 1, AppHash: "x"},
				Settings: SettingsConfig{Mode: "clock", Backend: BackendTelegram, Timezone: "Mars/Olympus"},
			},
			wantErr: "invalid timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocationDefaultsToLocal(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}
