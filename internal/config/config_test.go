package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
		Reader: ReaderConfig{DefaultTheme: "classic", DefaultFontSize: 18},
		Chat:   ChatConfig{Provider: ProviderAuto},
	}
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "DATA_PATH", "LIBRARY_PATH", "LIBRARY_WATCH", "SERVER_NAME",
		"SERVER_PORT", "CORS_ORIGINS", "RATE_LIMIT_PER_MINUTE", "READER_DEFAULT_THEME",
		"READER_DEFAULT_FONT_SIZE", "READER_SESSION_TTL", "CHAT_PROVIDER", "GEMINI_API_KEY",
		"GEMINI_MODEL", "GEMINI_BASE_URL", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
		"CHAT_RULES_PATH", "CHAT_TIMEOUT", "CHAT_CACHE_TTL", "CHAT_RATE_PER_MINUTE",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "error"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ReaderDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Reader.DefaultTheme = "neon"
	assert.ErrorContains(t, cfg.Validate(), "theme")

	cfg = validConfig()
	cfg.Reader.DefaultFontSize = 30
	assert.ErrorContains(t, cfg.Validate(), "font size")
}

func TestValidate_ChatProvider(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"local needs nothing", func(c *Config) { c.Chat.Provider = ProviderLocal }, ""},
		{"gemini needs key", func(c *Config) { c.Chat.Provider = ProviderGemini }, "GEMINI_API_KEY"},
		{"gemini with key", func(c *Config) { c.Chat.Provider = ProviderGemini; c.Chat.GeminiAPIKey = "k" }, ""},
		{"anthropic needs key", func(c *Config) { c.Chat.Provider = ProviderAnthropic }, "ANTHROPIC_API_KEY"},
		{"unknown", func(c *Config) { c.Chat.Provider = "openai" }, "invalid chat provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestResolvedChatProvider(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, ProviderLocal, cfg.ResolvedChatProvider())

	cfg.Chat.AnthropicAPIKey = "a"
	assert.Equal(t, ProviderAnthropic, cfg.ResolvedChatProvider())

	cfg.Chat.GeminiAPIKey = "g"
	assert.Equal(t, ProviderGemini, cfg.ResolvedChatProvider())

	cfg.Chat.Provider = ProviderLocal
	assert.Equal(t, ProviderLocal, cfg.ResolvedChatProvider())
}

func TestExpandDataPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", filepath.Join(homeDir, "DiSan", "data")},
		{"~/my-data", filepath.Join(homeDir, "my-data")},
		{"/absolute/path/to/data", "/absolute/path/to/data"},
	}

	for _, tt := range tests {
		cfg := &Config{Data: DataConfig{BasePath: tt.in}}
		require.NoError(t, cfg.expandDataPath())
		assert.Equal(t, tt.want, cfg.Data.BasePath)
	}

	cfg := &Config{Data: DataConfig{BasePath: "relative/path"}}
	require.NoError(t, cfg.expandDataPath())
	assert.True(t, filepath.IsAbs(cfg.Data.BasePath))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "env-value")

	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))
	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY_FOR_TEST", "default-value"))
}

func TestLoad_DefaultsAndFlags(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	cfg, err := Load([]string{
		"-env-file", filepath.Join(dataDir, "missing.env"),
		"-data-path", dataDir,
		"-port", "9090",
		"-default-theme", "night",
		"-chat-cache-ttl", "1h",
	})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, dataDir, cfg.Data.BasePath)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "night", cfg.Reader.DefaultTheme)
	assert.Equal(t, 18, cfg.Reader.DefaultFontSize)
	assert.Equal(t, 2*time.Hour, cfg.Reader.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Chat.CacheTTL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Chat.GeminiModel)
	assert.Equal(t, ProviderLocal, cfg.ResolvedChatProvider())
	assert.True(t, cfg.Library.Watch)
	assert.Equal(t, filepath.Join(dataDir, "reader.db"), cfg.SQLitePath())
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{"-env-file", "", "-data-path", t.TempDir(), "-session-ttl", "forever"})
	assert.ErrorContains(t, err, "invalid session ttl")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")

	content := `# reader settings
ENV=staging
CORS_ORIGINS="https://a.example, https://b.example"
GEMINI_API_KEY='secret'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load([]string{"-env-file", envFile, "-data-path", dir})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, ProviderGemini, cfg.ResolvedChatProvider())
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALID_KEY_X=1\nINVALID LINE\n"), 0o600))
	t.Setenv("VALID_KEY_X", "")

	err := loadEnvFile(envFile)
	assert.ErrorContains(t, err, "line 2")
}
