package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Store     StoreConfig     `mapstructure:"store"`
	Cache     CacheConfig     `mapstructure:"cache"`
	AI        AIConfig        `mapstructure:"ai"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`

	v *viper.Viper
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// IsProduction reports whether the server runs with production settings
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// StoreConfig selects where entries and goals are persisted
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// CacheConfig holds Redis snapshot cache configuration
type CacheConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`
	TTL            time.Duration `mapstructure:"ttl"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

// AIConfig holds the external analysis provider configuration
type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Endpoint     string        `mapstructure:"endpoint"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	AnalysisType string        `mapstructure:"analysis_type"`
}

// AnalyticsConfig holds defaults for dashboard computation
type AnalyticsConfig struct {
	DefaultWindowDays int           `mapstructure:"default_window_days"`
	Timezone          string        `mapstructure:"timezone"`
	DashboardTimeout  time.Duration `mapstructure:"dashboard_timeout"`
	EnumerateLabels   bool          `mapstructure:"enumerate_labels"`
}

// Location resolves the configured timezone, falling back to UTC
func (a AnalyticsConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// CORSConfig holds the allowed origins. Empty means allow all.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration, using configFile when set instead of searching
// the default locations
func LoadFrom(configFile string) (*Config, error) {
	// A missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("MOODLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables for platform compatibility
	_ = v.BindEnv("server.port", "MOODLENS_SERVER_PORT", "PORT")
	_ = v.BindEnv("supabase.url", "MOODLENS_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "MOODLENS_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("cache.redis_addr", "MOODLENS_CACHE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("cors.allowed_origins", "MOODLENS_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		// It's okay if config file doesn't exist
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.driver", StoreSupabase)
	v.SetDefault("store.sqlite_path", "data/moodlens.db")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.idempotency_ttl", 24*time.Hour)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.timeout", 5*time.Second)
	v.SetDefault("ai.analysis_type", "mood_patterns")

	v.SetDefault("analytics.default_window_days", 30)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.dashboard_timeout", 15*time.Second)
	v.SetDefault("analytics.enumerate_labels", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.backend", "slog")
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Env values arrive as one comma-separated string
	if len(config.CORS.AllowedOrigins) == 1 && strings.Contains(config.CORS.AllowedOrigins[0], ",") {
		config.CORS.AllowedOrigins = strings.Split(config.CORS.AllowedOrigins[0], ",")
	}
	origins := config.CORS.AllowedOrigins[:0]
	for _, o := range config.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	config.CORS.AllowedOrigins = origins

	config.v = v
	return &config, nil
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreSupabase:
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Cache.Enabled && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required when the cache is enabled")
	}
	if c.AI.Enabled {
		if c.AI.Endpoint == "" {
			return fmt.Errorf("ai.endpoint is required when ai is enabled")
		}
		if c.AI.Timeout <= 0 {
			return fmt.Errorf("ai.timeout must be positive")
		}
	}
	if c.Analytics.DefaultWindowDays <= 0 {
		return fmt.Errorf("analytics.default_window_days must be positive")
	}
	if c.Analytics.DashboardTimeout <= 0 {
		return fmt.Errorf("analytics.dashboard_timeout must be positive")
	}
	if c.Analytics.Timezone != "" {
		if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
			return fmt.Errorf("invalid analytics.timezone %q: %w", c.Analytics.Timezone, err)
		}
	}
	return nil
}

// Watch re-reads the config file on change and hands the new values to onChange.
// Only settings that are safe to swap at runtime should be applied by the callback.
// It is a no-op when no config file was loaded.
func (c *Config) Watch(onChange func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(c.v)
		if err != nil {
			return
		}
		onChange(next)
	})
	c.v.WatchConfig()
}
