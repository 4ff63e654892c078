package geo_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tabiplan/internal/infra"
	"tabiplan/internal/services"
	mem "tabiplan/pkg/memcache"
)

var Module = fx.Provide(provideGeocoder, provideGeoService)

func provideGeocoder(cfg *infra.Config) services.Geocoder {
	return services.NewNominatimGeocoder(cfg.GeocoderURL)
}

func provideGeoService(geocoder services.Geocoder, cache mem.GeoCacheStore, logger *zap.Logger) services.GeoServiceInterface {
	return services.NewGeoService(geocoder, cache, logger)
}
