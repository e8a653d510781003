package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// LLMProvider defines the structure for LLM provider configuration.
type LLMProvider struct {
	APIKey  string `mapstructure:"api_key"` // Name of the environment variable holding the API key
	BaseURL string `mapstructure:"base_url"`
}

// LLMConfig selects the provider and model used for shuttle and quest generation.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"` // gin mode: debug, release, test
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the sqlite DSN ("memory" for an in-memory database).
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AssessmentConfig tunes the questionnaire flow.
type AssessmentConfig struct {
	BankDir            string  `mapstructure:"bank_dir"` // optional directory holding riasec.yaml / ocean.yaml
	TraitMinCompletion float64 `mapstructure:"trait_min_completion"`
}

// CacheConfig sizes in-process caches.
type CacheConfig struct {
	SuggestionSize int `mapstructure:"suggestion_size"`
}

// Config holds the application's configuration.
type Config struct {
	Server       ServerConfig           `mapstructure:"server"`
	Database     DatabaseConfig         `mapstructure:"database"`
	Logging      LoggingConfig          `mapstructure:"logging"`
	LLM          LLMConfig              `mapstructure:"llm"`
	LLMProviders map[string]LLMProvider `mapstructure:"llm_providers"`
	Assessment   AssessmentConfig       `mapstructure:"assessment"`
	Cache        CacheConfig            `mapstructure:"cache"`
	GuestAIQuota int                    `mapstructure:"guest_ai_quota"`
}

var (
	mu sync.RWMutex
	// AppConfig is the global configuration instance. Read it through Current
	// once WatchConfig is running.
	AppConfig Config
	v         *viper.Viper
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.dsn", "data/limitfree.db")

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)   // megabytes
	v.SetDefault("logging.max_backups", 3) // files
	v.SetDefault("logging.max_age", 7)     // days
	v.SetDefault("logging.compress", true)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm_providers", map[string]any{
		"openai": map[string]any{"api_key": "OPENAI_API_KEY", "base_url": "https://api.openai.com/v1"},
	})

	v.SetDefault("assessment.trait_min_completion", 0.5)
	v.SetDefault("cache.suggestion_size", 256)
	v.SetDefault("guest_ai_quota", 3)
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error: defaults and env vars are used.
func Load(paths ...string) (*Config, error) {
	nv := viper.New()
	setDefaults(nv)

	nv.SetConfigName("config")
	nv.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", ".", "../config"}
	}
	for _, p := range paths {
		nv.AddConfigPath(p)
	}

	nv.SetEnvPrefix("LIMITFREE") // e.g. LIMITFREE_SERVER_PORT
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(nv)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	AppConfig = *cfg
	v = nv
	mu.Unlock()
	return cfg, nil
}

func decode(nv *viper.Viper) (*Config, error) {
	var cfg Config
	if err := nv.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	resolveProviderKeys(&cfg)
	return &cfg, nil
}

// resolveProviderKeys replaces the env var name stored in api_key with its
// value. A name whose variable is unset resolves to "", leaving the provider
// unconfigured; anything that does not look like a variable name is kept as
// a literal key.
func resolveProviderKeys(cfg *Config) {
	for name, p := range cfg.LLMProviders {
		if p.APIKey == "" {
			continue
		}
		if val, ok := os.LookupEnv(p.APIKey); ok {
			p.APIKey = val
		} else if isEnvName(p.APIKey) {
			p.APIKey = ""
		}
		cfg.LLMProviders[name] = p
	}
}

func isEnvName(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// Current returns a snapshot of the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return AppConfig
}

// WatchConfig reloads the configuration whenever the config file changes.
func WatchConfig(log *zap.Logger) {
	mu.RLock()
	nv := v
	mu.RUnlock()
	if nv == nil || nv.ConfigFileUsed() == "" {
		log.Debug("No config file in use, skipping config watch")
		return
	}

	nv.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		cfg, err := decode(nv)
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		mu.Lock()
		AppConfig = *cfg
		mu.Unlock()
	})
	nv.WatchConfig()
}
