package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Import   ImportConfig
	Search   SearchConfig
	Sessions SessionsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BackendConfig holds Comercial Comarapa API configuration
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout applies to ordinary API calls; ImportTimeout covers the
	// AI extraction endpoint, which routinely takes over a minute.
	Timeout       time.Duration `mapstructure:"timeout"`
	ImportTimeout time.Duration `mapstructure:"import_timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// ImportConfig holds invoice import configuration
type ImportConfig struct {
	MaxImages          int           `mapstructure:"max_images"`
	MaxImageSizeMB     int           `mapstructure:"max_image_size_mb"`
	AllowedTypes       []string      `mapstructure:"allowed_types"`
	ProgressResetDelay time.Duration `mapstructure:"progress_reset_delay"`
}

// SearchConfig holds product search configuration
type SearchConfig struct {
	Limit      int           `mapstructure:"limit"`
	MinChars   int           `mapstructure:"min_chars"`
	DebounceMs int           `mapstructure:"debounce_ms"`
	StaleTTL   time.Duration `mapstructure:"stale_ttl"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

// SessionsConfig holds import session lifecycle configuration
type SessionsConfig struct {
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/catalog-desk/")

	// Environment variable settings
	v.SetEnvPrefix("COMARAPA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.import_timeout", "120s")
	v.SetDefault("backend.max_retries", 3)

	// Import defaults
	v.SetDefault("import.max_images", 20)
	v.SetDefault("import.max_image_size_mb", 10)
	v.SetDefault("import.allowed_types", []string{
		"image/jpeg", "image/jpg", "image/png", "image/webp",
	})
	v.SetDefault("import.progress_reset_delay", "500ms")

	// Search defaults
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.min_chars", 2)
	v.SetDefault("search.debounce_ms", 300)
	v.SetDefault("search.stale_ttl", "1m")
	v.SetDefault("search.cache_ttl", "5m")

	// Session defaults
	v.SetDefault("sessions.idle_ttl", "1h")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required (set COMARAPA_BACKEND_BASE_URL)")
	}

	if config.Import.MaxImages <= 0 {
		return fmt.Errorf("import max_images must be positive, got: %d", config.Import.MaxImages)
	}

	if config.Import.MaxImageSizeMB <= 0 {
		return fmt.Errorf("import max_image_size_mb must be positive, got: %d", config.Import.MaxImageSizeMB)
	}

	if config.Search.MinChars < 1 {
		return fmt.Errorf("search min_chars must be at least 1, got: %d", config.Search.MinChars)
	}

	if config.Sessions.IdleTTL <= 0 {
		return fmt.Errorf("sessions idle_ttl must be positive, got: %s", config.Sessions.IdleTTL)
	}

	return nil
}
