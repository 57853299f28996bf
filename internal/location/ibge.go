package location

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultIBGEURL = "https://servicodados.ibge.gov.br/api/v1"
	ibgeTTL        = 12 * time.Hour
	statesKey      = "estados"
)

// IBGEClient lists states and municipalities. Both lists change rarely and
// are cached in process.
type IBGEClient struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
}

func NewIBGEClient(httpClient *http.Client, baseURL string) *IBGEClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultIBGEURL
	}
	return &IBGEClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cache:      cache.New(ibgeTTL, time.Hour),
	}
}

// States returns all states ordered by name.
func (c *IBGEClient) States(ctx context.Context) ([]State, error) {
	if v, ok := c.cache.Get(statesKey); ok {
		return v.([]State), nil
	}
	var states []State
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/localidades/estados?orderBy=nome", &states); err != nil {
		return nil, err
	}
	c.cache.Set(statesKey, states, cache.DefaultExpiration)
	return states, nil
}

// Cities returns the municipalities of a state ordered by name.
func (c *IBGEClient) Cities(ctx context.Context, stateID int) ([]City, error) {
	id := strconv.Itoa(stateID)
	key := "municipios:" + id
	if v, ok := c.cache.Get(key); ok {
		return v.([]City), nil
	}
	var cities []City
	url := c.baseURL + "/localidades/estados/" + id + "/municipios?orderBy=nome"
	if err := getJSON(ctx, c.httpClient, url, &cities); err != nil {
		return nil, err
	}
	c.cache.Set(key, cities, cache.DefaultExpiration)
	return cities, nil
}
