package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	BaseURL        string
	LogLevel       slog.Level
	PrizesFile     string
	SpinDuration   time.Duration
	ResizeDebounce time.Duration
	WidgetTTL      time.Duration
	LookupTimeout  time.Duration
	VisitorSecret  string
	SecureCookies  bool
	PGDSN          string
	GeoURL         string
	IBGEURL        string
	CORSOrigins    []string
}

// Load reads envFile if it exists, then the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	c := Config{
		HTTPAddr:      ":" + envOr("PORT", "8080"),
		BaseURL:       strings.TrimRight(os.Getenv("BASE_URL"), "/"),
		PrizesFile:    os.Getenv("PRIZES_FILE"),
		VisitorSecret: os.Getenv("VISITOR_SECRET"),
		SecureCookies: envOr("COOKIE_SECURE", "false") == "true",
		PGDSN:         os.Getenv("PG_DSN"),
		GeoURL:        envOr("GEO_URL", "https://get.geojs.io"),
		IBGEURL:       envOr("IBGE_URL", "https://servicodados.ibge.gov.br/api/v1"),
		CORSOrigins:   parseList(envOr("CORS_ORIGINS", "*")),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SPIN_DURATION", 5500 * time.Millisecond, &c.SpinDuration},
		{"RESIZE_DEBOUNCE", 200 * time.Millisecond, &c.ResizeDebounce},
		{"WIDGET_TTL", 30 * time.Minute, &c.WidgetTTL},
		{"LOOKUP_TIMEOUT", 3 * time.Second, &c.LookupTimeout},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: negative", key, v)
	}
	return d, nil
}

func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
