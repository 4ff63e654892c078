package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tabiplan/internal/planner"
	mem "tabiplan/pkg/memcache"
)

const geoCacheTTL = 24 * time.Hour

// Geocoder resolves a free-text place query to coordinates. found=false
// means the provider answered but knows no such place; err covers transport
// and provider failures.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (coords mem.Coordinates, found bool, err error)
}

type GeoServiceInterface interface {
	// EnrichDayPlans fills in missing coordinates and drops dead URLs across
	// an itinerary in place. Enrichment is best-effort; lookup failures leave
	// the item as-is.
	EnrichDayPlans(ctx context.Context, destination string, days []planner.DayPlan)
}

type GeoService struct {
	geocoder Geocoder
	cache    mem.GeoCacheStore
	client   *http.Client
	logger   *zap.Logger
}

func NewGeoService(geocoder Geocoder, cache mem.GeoCacheStore, logger *zap.Logger) GeoServiceInterface {
	return &GeoService{
		geocoder: geocoder,
		cache:    cache,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

func (g *GeoService) EnrichDayPlans(ctx context.Context, destination string, days []planner.DayPlan) {
	for di := range days {
		schedule := days[di].Schedule
		for si := range schedule {
			item := &schedule[si]

			if item.Latitude == nil || item.Longitude == nil {
				g.fillCoordinates(ctx, destination, item)
			}
			if item.URL != "" && !g.urlAlive(ctx, item.URL) {
				item.URL = ""
			}
		}
	}
}

func (g *GeoService) fillCoordinates(ctx context.Context, destination string, item *planner.ScheduleItem) {
	if strings.TrimSpace(item.ActivityName) == "" {
		return
	}
	query := strings.TrimSpace(destination + " " + item.ActivityName)

	if coords, ok := g.cache.Get(query); ok {
		item.Latitude = &coords.Latitude
		item.Longitude = &coords.Longitude
		return
	}

	coords, found, err := g.geocoder.Geocode(ctx, query)
	if err != nil {
		g.logger.Debug("geocode failed", zap.String("query", query), zap.Error(err))
		return
	}
	if !found {
		return
	}

	g.cache.Set(query, coords, geoCacheTTL)
	item.Latitude = &coords.Latitude
	item.Longitude = &coords.Longitude
}

// urlAlive probes with HEAD; anything under 400 counts as reachable.
func (g *GeoService) urlAlive(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusBadRequest
}

// NominatimGeocoder queries an OpenStreetMap Nominatim compatible endpoint.
type NominatimGeocoder struct {
	baseURL string
	client  *http.Client
}

func NewNominatimGeocoder(baseURL string) Geocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, query string) (mem.Coordinates, bool, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", n.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return mem.Coordinates{}, false, err
	}
	req.Header.Set("User-Agent", "tabiplan/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return mem.Coordinates{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mem.Coordinates{}, false, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return mem.Coordinates{}, false, err
	}
	if len(results) == 0 {
		return mem.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return mem.Coordinates{}, false, err
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return mem.Coordinates{}, false, err
	}

	return mem.Coordinates{Latitude: lat, Longitude: lon}, true, nil
}
