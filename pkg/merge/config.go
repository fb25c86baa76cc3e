package merge

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by ConfigFromEnvironment,
// e.g. DOCXMERGE_LOG_LEVEL.
const EnvPrefix = "DOCXMERGE"

// Configuration keys, shared by config files, environment variables and
// command-line flags
const (
	KeyLogLevel        = "log_level"
	KeyStrict          = "strict"
	KeyCacheMaxSize    = "cache_max_size"
	KeyCacheTTL        = "cache_ttl"
	KeyMediaDir        = "media_dir"
	KeyImageExtensions = "image_extensions"
)

// Config contains all configuration options for the merge engine
type Config struct {
	// CacheMaxSize is the maximum number of packages an Engine keeps parsed. 0 disables caching.
	CacheMaxSize int
	// CacheTTL is the time-to-live for cached packages. 0 means no expiration.
	CacheTTL time.Duration
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// StrictMode turns loop diagnostics into render errors
	StrictMode bool
	// MediaDir is the package directory holding replaceable images
	MediaDir string
	// ImageExtensions lists the entry extensions eligible for image replacement
	ImageExtensions []string
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func loadGlobalConfig() {
	configOnce.Do(func() {
		cfg := ConfigFromEnvironment()
		globalConfigMutex.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMutex.Unlock()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:    100,
		CacheTTL:        0,
		LogLevel:        "info",
		StrictMode:      false,
		MediaDir:        DefaultMediaDir,
		ImageExtensions: append([]string(nil), DefaultImageExtensions...),
	}
}

// NewViper returns a viper instance with the configuration defaults set and
// DOCXMERGE_* environment variables bound. Callers may add config files and
// flags before passing it to ConfigFromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyStrict, defaults.StrictMode)
	v.SetDefault(KeyCacheMaxSize, defaults.CacheMaxSize)
	v.SetDefault(KeyCacheTTL, defaults.CacheTTL)
	v.SetDefault(KeyMediaDir, defaults.MediaDir)
	v.SetDefault(KeyImageExtensions, defaults.ImageExtensions)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ConfigFromViper reads a configuration from v
func ConfigFromViper(v *viper.Viper) *Config {
	config := &Config{
		CacheMaxSize: v.GetInt(KeyCacheMaxSize),
		CacheTTL:     v.GetDuration(KeyCacheTTL),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		StrictMode:   v.GetBool(KeyStrict),
		MediaDir:     v.GetString(KeyMediaDir),
	}

	// Lists may come from a file as an array or from the environment as
	// "png,jpg" or "png jpg"
	for _, ext := range v.GetStringSlice(KeyImageExtensions) {
		for _, e := range strings.FieldsFunc(ext, func(r rune) bool { return r == ',' || r == ' ' }) {
			config.ImageExtensions = append(config.ImageExtensions, e)
		}
	}
	return config
}

// ConfigFromEnvironment creates a configuration from DOCXMERGE_* environment
// variables, falling back to the defaults
func ConfigFromEnvironment() *Config {
	return ConfigFromViper(NewViper())
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	// Create a copy of the overrides
	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.MediaDir == "" {
		config.MediaDir = defaults.MediaDir
	}

	if len(config.ImageExtensions) == 0 {
		config.ImageExtensions = defaults.ImageExtensions
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	for _, ext := range c.ImageExtensions {
		if strings.Trim(ext, ". ") == "" {
			return errors.New("image extensions cannot be empty")
		}
	}

	return nil
}

// newMediaMap returns an empty media map for this configuration
func (c *Config) newMediaMap() *MediaMap {
	return NewMediaMap(c.MediaDir, c.ImageExtensions)
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()

	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	configCopy.ImageExtensions = append([]string(nil), globalConfig.ImageExtensions...)
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	loadGlobalConfig()

	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}
