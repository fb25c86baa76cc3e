package merge

import (
	"errors"
	"testing"
	"time"
)

func TestPackageCache(t *testing.T) {
	t.Run("load opens once", func(t *testing.T) {
		cache := NewPackageCache(CacheConfig{MaxSize: 2})
		pkg := &Package{}
		opened := 0
		open := func() (*Package, error) {
			opened++
			return pkg, nil
		}

		for i := 0; i < 3; i++ {
			got, err := cache.Load("a", open)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != pkg {
				t.Error("Load() returned a different package")
			}
		}
		if opened != 1 {
			t.Errorf("opened %d times, want 1", opened)
		}
	})

	t.Run("load error is not cached", func(t *testing.T) {
		cache := NewPackageCache(CacheConfig{MaxSize: 2})
		_, err := cache.Load("a", func() (*Package, error) { return nil, errors.New("boom") })
		if err == nil {
			t.Fatal("expected error")
		}
		if cache.Size() != 0 {
			t.Errorf("Size() = %d, want 0", cache.Size())
		}
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		cache := NewPackageCache(CacheConfig{MaxSize: 2})
		cache.Set("a", &Package{})
		cache.Set("b", &Package{})
		cache.Get("a")
		cache.Set("c", &Package{})

		if _, ok := cache.Get("b"); ok {
			t.Error("b should have been evicted")
		}
		for _, key := range []string{"a", "c"} {
			if _, ok := cache.Get(key); !ok {
				t.Errorf("%s should be cached", key)
			}
		}
	})

	t.Run("expires entries", func(t *testing.T) {
		cache := NewPackageCache(CacheConfig{MaxSize: 2, TTL: time.Minute})
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return now }

		cache.Set("a", &Package{})
		now = now.Add(30 * time.Second)
		if _, ok := cache.Get("a"); !ok {
			t.Error("entry expired too early")
		}
		now = now.Add(time.Minute)
		if _, ok := cache.Get("a"); ok {
			t.Error("entry should have expired")
		}
		if cache.Size() != 0 {
			t.Errorf("Size() = %d, want 0", cache.Size())
		}
	})

	t.Run("disabled cache stores nothing", func(t *testing.T) {
		cache := NewPackageCache(CacheConfig{MaxSize: 0})
		cache.Set("a", &Package{})
		if cache.Size() != 0 {
			t.Errorf("Size() = %d, want 0", cache.Size())
		}
	})

	t.Run("remove and clear", func(t *testing.T) {
		cache := NewPackageCache(CacheConfig{MaxSize: 5})
		cache.Set("a", &Package{})
		cache.Set("b", &Package{})
		cache.Remove("a")
		if cache.Size() != 1 {
			t.Errorf("Size() after Remove = %d, want 1", cache.Size())
		}
		cache.Clear()
		if cache.Size() != 0 {
			t.Errorf("Size() after Clear = %d, want 0", cache.Size())
		}
	})
}
