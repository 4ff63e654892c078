package memcache_fx

import (
	"go.uber.org/fx"

	mem "tabiplan/pkg/memcache"
)

var Module = fx.Provide(provideGeoCache)

func provideGeoCache() mem.GeoCacheStore {
	return mem.NewGeoCache()
}
