package location

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultGeoURL = "https://get.geojs.io"
	geoTTL        = time.Hour
)

// GeoClient looks up the city and region of an IP address.
type GeoClient struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
}

func NewGeoClient(httpClient *http.Client, baseURL string) *GeoClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultGeoURL
	}
	return &GeoClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cache:      cache.New(geoTTL, 2*geoTTL),
	}
}

type geoResponse struct {
	City   string `json:"city"`
	Region string `json:"region"`
}

// Lookup resolves ip. Non-public addresses are resolved as the caller's own
// address, which is what the service sees when running locally.
func (c *GeoClient) Lookup(ctx context.Context, ip string) (Location, error) {
	url := c.baseURL + "/v1/ip/geo.json"
	key := "self"
	if public, ok := publicIP(ip); ok {
		url = c.baseURL + "/v1/ip/geo/" + public + ".json"
		key = public
	}
	if v, ok := c.cache.Get(key); ok {
		return v.(Location), nil
	}

	var out geoResponse
	if err := getJSON(ctx, c.httpClient, url, &out); err != nil {
		return Location{}, err
	}
	loc := Location{City: out.City, Region: out.Region}
	c.cache.Set(key, loc, cache.DefaultExpiration)
	return loc, nil
}
