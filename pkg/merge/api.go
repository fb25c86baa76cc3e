package merge

import (
	"io"
	"path/filepath"
	"time"
)

// Engine opens templates with a shared configuration and keeps recently
// opened packages in a cache. Use New() to create a new engine instance.
// An Engine is safe for concurrent use; the templates it returns are not.
type Engine struct {
	config *Config
	cache  *PackageCache
}

// New creates a new engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	config = NewConfigWithDefaults(config)
	return &Engine{
		config: config,
		cache: NewPackageCache(CacheConfig{
			MaxSize: config.CacheMaxSize,
			TTL:     config.CacheTTL,
		}),
	}
}

// OpenFile opens a template from a file path. The parsed package is cached
// by absolute path if caching is enabled in the configuration.
func (e *Engine) OpenFile(path string) (*Template, error) {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	pkg, err := e.cache.Load(key, func() (*Package, error) {
		GetLogger().WithField("template", key).Debug("Opening template package")
		return OpenPackageFile(path)
	})
	if err != nil {
		return nil, err
	}
	return NewTemplate(pkg, e.config), nil
}

// Open reads a template from an io.Reader. Streams are never cached.
func (e *Engine) Open(r io.Reader) (*Template, error) {
	pkg, err := ReadPackage(r)
	if err != nil {
		return nil, err
	}
	return NewTemplate(pkg, e.config), nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// ClearCache removes all packages from the cache.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Option represents a configuration option for the engine.
type Option func(*Config)

// WithConfig returns an option that replaces the engine configuration.
func WithConfig(config *Config) Option {
	return func(c *Config) {
		*c = *NewConfigWithDefaults(config)
	}
}

// WithCache returns an option that sets the cache size and TTL (a size of 0
// disables caching).
func WithCache(maxSize int, ttl time.Duration) Option {
	return func(c *Config) {
		c.CacheMaxSize = maxSize
		c.CacheTTL = ttl
	}
}

// WithStrictMode returns an option that makes loop diagnostics fail renders.
func WithStrictMode(strict bool) Option {
	return func(c *Config) {
		c.StrictMode = strict
	}
}

// WithImageExtensions returns an option that sets the image extensions
// eligible for replacement.
func WithImageExtensions(extensions ...string) Option {
	return func(c *Config) {
		c.ImageExtensions = extensions
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	config := GetGlobalConfig()
	for _, opt := range opts {
		opt(config)
	}
	return NewWithConfig(config)
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// OpenFile opens a template from a file path using the default engine.
func OpenFile(path string) (*Template, error) {
	return DefaultEngine.OpenFile(path)
}

// Open reads a template from an io.Reader using the default engine.
func Open(r io.Reader) (*Template, error) {
	return DefaultEngine.Open(r)
}

// ClearCache clears the default engine's package cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}
