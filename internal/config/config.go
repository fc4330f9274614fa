// Package config loads server configuration from flags, environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disanlib/reader-server/internal/domain"
)

// Chat providers.
const (
	ProviderAuto      = "auto"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderLocal     = "local"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Library LibraryConfig
	Server  ServerConfig
	Reader  ReaderConfig
	Chat    ChatConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates the server's own state (sqlite, badger, bleve).
type DataConfig struct {
	BasePath string
}

// LibraryConfig locates the book files.
type LibraryConfig struct {
	// Path is a directory of book YAML files. Empty serves the embedded seed library.
	Path  string
	Watch bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name               string
	Port               string
	CORSOrigins        []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerMinute int
}

// ReaderConfig holds defaults for reading sessions.
type ReaderConfig struct {
	DefaultTheme    string
	DefaultFontSize int
	SessionTTL      time.Duration
}

// ChatConfig selects and tunes the history assistant.
type ChatConfig struct {
	Provider          string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	AnthropicAPIKey   string
	AnthropicModel    string
	RulesPath         string
	Timeout           time.Duration
	CacheTTL          time.Duration
	MessagesPerMinute int
}

// LoadConfig loads configuration from os.Args with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("reader-server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for server state")
	libraryPath := fs.String("library-path", "", "Directory of book files (default: built-in library)")
	libraryWatch := fs.String("library-watch", "", "Reload the library when files change (default: true)")

	serverName := fs.String("server-name", "", "Name for the server")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins (default: *)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	rateLimit := fs.String("rate-limit", "", "Requests per minute per client IP (default: 300)")

	theme := fs.String("default-theme", "", "Theme before the reader picks one (default: classic)")
	fontSize := fs.String("default-font-size", "", "Font size before the reader picks one (default: 18)")
	sessionTTL := fs.String("session-ttl", "", "Idle lifetime of a reading session (default: 2h)")

	provider := fs.String("chat-provider", "", "Chat provider: auto, gemini, anthropic, local (default: auto)")
	geminiModel := fs.String("gemini-model", "", "Gemini model (default: gemini-2.5-flash)")
	anthropicModel := fs.String("anthropic-model", "", "Anthropic model (default: claude-3-5-haiku-latest)")
	rulesPath := fs.String("chat-rules", "", "YAML file overriding the built-in keyword answers")
	chatTimeout := fs.String("chat-timeout", "", "Remote model timeout (default: 30s)")
	chatCacheTTL := fs.String("chat-cache-ttl", "", "How long remote answers are cached (default: 24h)")
	chatRate := fs.String("chat-rate", "", "Messages per minute per conversation (default: 10)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env files are fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Library: LibraryConfig{
			Path:  getConfigValue(*libraryPath, "LIBRARY_PATH", ""),
			Watch: getBoolConfigValue(*libraryWatch, "LIBRARY_WATCH", true),
		},
		Server: ServerConfig{
			Name:               getConfigValue(*serverName, "SERVER_NAME", "Di Sản Reader"),
			Port:               getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins:        splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
			RateLimitPerMinute: getIntConfigValue(*rateLimit, "RATE_LIMIT_PER_MINUTE", 300),
		},
		Reader: ReaderConfig{
			DefaultTheme:    getConfigValue(*theme, "READER_DEFAULT_THEME", string(domain.DefaultTheme)),
			DefaultFontSize: getIntConfigValue(*fontSize, "READER_DEFAULT_FONT_SIZE", domain.DefaultFontSize),
		},
		Chat: ChatConfig{
			Provider:          strings.ToLower(getConfigValue(*provider, "CHAT_PROVIDER", ProviderAuto)),
			GeminiAPIKey:      getConfigValue("", "GEMINI_API_KEY", ""),
			GeminiModel:       getConfigValue(*geminiModel, "GEMINI_MODEL", "gemini-2.5-flash"),
			GeminiBaseURL:     getConfigValue("", "GEMINI_BASE_URL", ""),
			AnthropicAPIKey:   getConfigValue("", "ANTHROPIC_API_KEY", ""),
			AnthropicModel:    getConfigValue(*anthropicModel, "ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			RulesPath:         getConfigValue(*rulesPath, "CHAT_RULES_PATH", ""),
			MessagesPerMinute: getIntConfigValue(*chatRate, "CHAT_RATE_PER_MINUTE", 10),
		},
	}

	durations := []struct {
		flagValue, envKey, def, name string
		dst                          *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s", "write timeout", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout", &cfg.Server.IdleTimeout},
		{*sessionTTL, "READER_SESSION_TTL", "2h", "session ttl", &cfg.Reader.SessionTTL},
		{*chatTimeout, "CHAT_TIMEOUT", "30s", "chat timeout", &cfg.Chat.Timeout},
		{*chatCacheTTL, "CHAT_CACHE_TTL", "24h", "chat cache ttl", &cfg.Chat.CacheTTL},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if cfg.Library.Path != "" {
		expanded, err := expandPath(cfg.Library.Path, "")
		if err != nil {
			return nil, fmt.Errorf("invalid library path: %w", err)
		}
		cfg.Library.Path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if !domain.ThemeKey(c.Reader.DefaultTheme).Valid() {
		return fmt.Errorf("invalid default theme: %s", c.Reader.DefaultTheme)
	}
	if c.Reader.DefaultFontSize < domain.MinFontSize || c.Reader.DefaultFontSize > domain.MaxFontSize {
		return fmt.Errorf("default font size %d outside %d-%d", c.Reader.DefaultFontSize, domain.MinFontSize, domain.MaxFontSize)
	}

	switch c.Chat.Provider {
	case ProviderAuto, ProviderLocal:
	case ProviderGemini:
		if c.Chat.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini chat provider")
		}
	case ProviderAnthropic:
		if c.Chat.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required for the anthropic chat provider")
		}
	default:
		return fmt.Errorf("invalid chat provider: %s (must be auto, gemini, anthropic, or local)", c.Chat.Provider)
	}

	return nil
}

// ResolvedChatProvider turns "auto" into the first provider that has a key,
// falling back to the local keyword assistant.
func (c *Config) ResolvedChatProvider() string {
	if c.Chat.Provider != ProviderAuto {
		return c.Chat.Provider
	}
	switch {
	case c.Chat.GeminiAPIKey != "":
		return ProviderGemini
	case c.Chat.AnthropicAPIKey != "":
		return ProviderAnthropic
	default:
		return ProviderLocal
	}
}

// SQLitePath is the database file under the data directory.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Data.BasePath, "reader.db")
}

// KVPath is the badger directory under the data directory.
func (c *Config) KVPath() string {
	return filepath.Join(c.Data.BasePath, "kv")
}

// SearchPath is the bleve parent directory under the data directory.
func (c *Config) SearchPath() string {
	return filepath.Join(c.Data.BasePath, "search")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "DiSan", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from path. Variables already set win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
