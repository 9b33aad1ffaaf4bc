// Package models defines data structures for configuration, points of
// interest and enriched restaurant content.
package models

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Browser backends for loading candidate detail pages.
const (
	BrowserChrome = "chrome"
	BrowserHTTP   = "http"
)

const envPrefix = "KURVALGOM_"

// AppConfig holds runtime configuration. Values come from an optional YAML
// file, then the environment (and .env), then CLI flags.
type AppConfig struct {
	OverpassURL  string        `yaml:"overpass_url"`
	AreaName     string        `yaml:"area_name"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	OverpassRPS  float64       `yaml:"overpass_rps"`

	SiteBaseURL      string        `yaml:"site_base_url"`
	CitySlug         string        `yaml:"city_slug"`
	Browser          string        `yaml:"browser"`
	Headless         bool          `yaml:"headless"`
	UserAgent        string        `yaml:"user_agent"`
	PageTimeout      time.Duration `yaml:"page_timeout"`
	PlaceholderImage string        `yaml:"placeholder_image"`
	Languages        []string      `yaml:"languages"`

	BlacklistPath        string `yaml:"blacklist_path"`
	BlacklistReadThrough bool   `yaml:"blacklist_read_through"`
	DBPath               string `yaml:"db_path"`

	MaxAttempts    int           `yaml:"max_attempts"`
	BackoffInitial time.Duration `yaml:"backoff_initial"`
	BackoffMax     time.Duration `yaml:"backoff_max"`

	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns an AppConfig populated with working defaults.
func DefaultConfig() AppConfig {
	return AppConfig{
		OverpassURL:  "http://overpass-api.de/api/interpreter",
		AreaName:     "Vilnius",
		QueryTimeout: 60 * time.Second,
		OverpassRPS:  1,

		SiteBaseURL: "https://www.meniu.lt/vieta/",
		CitySlug:    "vilnius",
		Browser:     BrowserChrome,
		Headless:    true,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		PageTimeout:      30 * time.Second,
		PlaceholderImage: PlaceholderImageURL,
		Languages:        []string{"lt", "en", "ru", "pl"},

		BlacklistPath: "blacklist.txt",
		DBPath:        "kurvalgom.db",

		MaxAttempts:    25,
		BackoffInitial: 250 * time.Millisecond,
		BackoffMax:     5 * time.Second,

		ListenAddr: "127.0.0.1:5000",
	}
}

// LoadConfig reads the YAML file at path on top of the defaults. A missing
// file is not an error. Environment variables are applied last.
func LoadConfig(path string) (AppConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c AppConfig) Validate() error {
	switch c.Browser {
	case BrowserChrome, BrowserHTTP:
	default:
		return fmt.Errorf("unknown browser %q (want %q or %q)", c.Browser, BrowserChrome, BrowserHTTP)
	}
	if strings.TrimSpace(c.OverpassURL) == "" {
		return errors.New("overpass_url is required")
	}
	if strings.TrimSpace(c.SiteBaseURL) == "" {
		return errors.New("site_base_url is required")
	}
	if strings.TrimSpace(c.BlacklistPath) == "" {
		return errors.New("blacklist_path is required")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	cfg.OverpassURL = getenv("OVERPASS_URL", cfg.OverpassURL)
	cfg.AreaName = getenv("AREA_NAME", cfg.AreaName)
	cfg.QueryTimeout = getenvDuration("QUERY_TIMEOUT", cfg.QueryTimeout)
	cfg.OverpassRPS = getenvFloat("OVERPASS_RPS", cfg.OverpassRPS)
	cfg.SiteBaseURL = getenv("SITE_BASE_URL", cfg.SiteBaseURL)
	cfg.CitySlug = getenv("CITY_SLUG", cfg.CitySlug)
	cfg.Browser = getenv("BROWSER", cfg.Browser)
	cfg.Headless = getenvBool("HEADLESS", cfg.Headless)
	cfg.UserAgent = getenv("USER_AGENT", cfg.UserAgent)
	cfg.PageTimeout = getenvDuration("PAGE_TIMEOUT", cfg.PageTimeout)
	cfg.PlaceholderImage = getenv("PLACEHOLDER_IMAGE", cfg.PlaceholderImage)
	cfg.BlacklistPath = getenv("BLACKLIST_PATH", cfg.BlacklistPath)
	cfg.BlacklistReadThrough = getenvBool("BLACKLIST_READ_THROUGH", cfg.BlacklistReadThrough)
	cfg.DBPath = getenv("DB_PATH", cfg.DBPath)
	cfg.MaxAttempts = getenvInt("MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.BackoffInitial = getenvDuration("BACKOFF_INITIAL", cfg.BackoffInitial)
	cfg.BackoffMax = getenvDuration("BACKOFF_MAX", cfg.BackoffMax)
	cfg.ListenAddr = getenv("LISTEN_ADDR", cfg.ListenAddr)
	if v := getenv("LANGUAGES", ""); v != "" {
		cfg.Languages = strings.Split(v, ",")
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil {
		return def
	}
	return d
}
