// pkg/mem/geo_cache.go
package mem

import (
	"sync"
	"time"
)

// Coordinates is one cached geocoding result.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// GeoCacheStore caches geocoding lookups keyed by query string. Entries
// expire after their TTL; callers inject the store rather than sharing
// module-level state so concurrent trips stay isolated in tests.
type GeoCacheStore interface {
	Set(query string, coords Coordinates, ttl time.Duration)

	// Get returns the cached coordinates for query if not expired.
	Get(query string) (Coordinates, bool)
}

type geoEntry struct {
	coords    Coordinates
	expiresAt time.Time
}

type GeoCache struct {
	mu   sync.RWMutex
	data map[string]geoEntry
}

func NewGeoCache() *GeoCache {
	return &GeoCache{
		data: make(map[string]geoEntry),
	}
}

func (s *GeoCache) Set(query string, coords Coordinates, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[query] = geoEntry{
		coords:    coords,
		expiresAt: time.Now().Add(ttl),
	}

	// Opportunistic cleanup when the map grows large.
	if len(s.data) > 10000 {
		now := time.Now()
		for key, e := range s.data {
			if now.After(e.expiresAt) {
				delete(s.data, key)
			}
		}
	}
}

func (s *GeoCache) Get(query string) (Coordinates, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[query]
	if !ok || time.Now().After(e.expiresAt) {
		return Coordinates{}, false
	}
	return e.coords, true
}
