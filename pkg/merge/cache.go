package merge

import (
	"container/list"
	"sync"
	"time"
)

// CacheConfig contains configuration options for the package cache
type CacheConfig struct {
	// MaxSize is the maximum number of packages to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached packages. 0 means no expiration.
	TTL time.Duration
}

// PackageCache keeps opened template packages by key, evicting the least
// recently used one when full. Packages are immutable once opened, so one
// cached package can back any number of templates.
type PackageCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
	now    func() time.Time
}

type cacheEntry struct {
	key     string
	pkg     *Package
	expiry  time.Time
	element *list.Element
}

// NewPackageCache creates a new package cache with the given configuration
func NewPackageCache(config CacheConfig) *PackageCache {
	return &PackageCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
		now:    time.Now,
	}
}

// Load returns the package cached under key, calling open to read it when it
// is missing or expired
func (pc *PackageCache) Load(key string, open func() (*Package, error)) (*Package, error) {
	if pkg, ok := pc.Get(key); ok {
		return pkg, nil
	}

	pkg, err := open()
	if err != nil {
		return nil, err
	}
	pc.Set(key, pkg)
	return pkg, nil
}

// Get retrieves a package from the cache
func (pc *PackageCache) Get(key string) (*Package, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	entry, exists := pc.cache[key]
	if !exists {
		return nil, false
	}

	// Check expiry
	if pc.config.TTL > 0 && pc.now().After(entry.expiry) {
		pc.removeLocked(entry)
		return nil, false
	}

	pc.lru.MoveToFront(entry.element)
	return entry.pkg, true
}

// Set adds a package to the cache
func (pc *PackageCache) Set(key string, pkg *Package) {
	// Check if caching is disabled
	if pc.config.MaxSize <= 0 {
		return
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	var expiry time.Time
	if pc.config.TTL > 0 {
		expiry = pc.now().Add(pc.config.TTL)
	}

	if existing, exists := pc.cache[key]; exists {
		existing.pkg = pkg
		existing.expiry = expiry
		pc.lru.MoveToFront(existing.element)
		return
	}

	// Evict least recently used
	for pc.lru.Len() >= pc.config.MaxSize {
		oldest := pc.lru.Back()
		if oldest == nil {
			break
		}
		pc.removeLocked(oldest.Value.(*cacheEntry))
	}

	entry := &cacheEntry{
		key:    key,
		pkg:    pkg,
		expiry: expiry,
	}
	entry.element = pc.lru.PushFront(entry)
	pc.cache[key] = entry
}

// Remove removes a package from the cache
func (pc *PackageCache) Remove(key string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if entry, exists := pc.cache[key]; exists {
		pc.removeLocked(entry)
	}
}

func (pc *PackageCache) removeLocked(entry *cacheEntry) {
	delete(pc.cache, entry.key)
	pc.lru.Remove(entry.element)
}

// Clear removes all packages from the cache
func (pc *PackageCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache = make(map[string]*cacheEntry)
	pc.lru = list.New()
}

// Size returns the current number of cached packages
func (pc *PackageCache) Size() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.cache)
}
