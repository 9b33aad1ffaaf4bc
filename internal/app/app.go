// Package app builds the restaurant pipeline from configuration.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/kurvalgom/internal/finder"
	"github.com/dtnitsch/kurvalgom/models"
	"github.com/dtnitsch/kurvalgom/pkg/browser"
	"github.com/dtnitsch/kurvalgom/pkg/caching"
	"github.com/dtnitsch/kurvalgom/pkg/db"
	"github.com/dtnitsch/kurvalgom/pkg/extractor"
	"github.com/dtnitsch/kurvalgom/pkg/fetcher"
	"github.com/dtnitsch/kurvalgom/pkg/locator"
	"github.com/dtnitsch/kurvalgom/pkg/resolver"
)

// App holds the wired components. Close releases the history database.
type App struct {
	Config   models.AppConfig
	Logger   *slog.Logger
	Cache    *caching.Cache
	History  *db.DB
	Locator  *locator.Locator
	Resolver *resolver.Resolver
	Finder   *finder.Finder
}

// NewLogger returns the JSON stderr logger used by every command.
func NewLogger(quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	} else if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// New wires every component from cfg.
func New(cfg models.AppConfig, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	history, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	cache := caching.NewCache(cfg.BlacklistPath)
	loc := locator.New(fetcher.NewFetcher(cfg.QueryTimeout, cfg.UserAgent), cfg.OverpassURL, cfg.AreaName, logger.With("component", "locator"))
	loc.SetRateLimit(cfg.OverpassRPS)
	ex := extractor.New(logger.With("component", "extractor"), cfg.PlaceholderImage, cfg.Languages)

	res := resolver.New(newLauncher(cfg, logger), ex, cache, history, resolver.Options{
		SiteBaseURL:          cfg.SiteBaseURL,
		CitySlug:             cfg.CitySlug,
		Placeholder:          cfg.PlaceholderImage,
		BlacklistReadThrough: cfg.BlacklistReadThrough,
	}, logger.With("component", "resolver"))

	fnd := finder.New(loc, res, finder.Options{
		MaxAttempts:       cfg.MaxAttempts,
		BackoffInitial:    cfg.BackoffInitial,
		BackoffMax:        cfg.BackoffMax,
		BackoffJitterFrac: 0.2,
	}, logger.With("component", "finder"))

	return &App{
		Config:   cfg,
		Logger:   logger,
		Cache:    cache,
		History:  history,
		Locator:  loc,
		Resolver: res,
		Finder:   fnd,
	}, nil
}

func newLauncher(cfg models.AppConfig, logger *slog.Logger) browser.Launcher {
	if cfg.Browser == models.BrowserHTTP {
		return &browser.HTTPLauncher{Fetcher: fetcher.NewFetcher(cfg.PageTimeout, cfg.UserAgent)}
	}
	return &browser.ChromeLauncher{
		Headless:    cfg.Headless,
		UserAgent:   cfg.UserAgent,
		PageTimeout: cfg.PageTimeout,
		Logger:      logger.With("component", "browser"),
	}
}

func (a *App) Close() error {
	return a.History.Close()
}

// LoadConfig reads the --config file and applies the global CLI overrides.
func LoadConfig(c *cli.Context) (models.AppConfig, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("browser") {
		cfg.Browser = c.String("browser")
	}
	if c.IsSet("headful") {
		cfg.Headless = !c.Bool("headful")
	}
	if c.IsSet("blacklist") {
		cfg.BlacklistPath = c.String("blacklist")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("read-through") {
		cfg.BlacklistReadThrough = c.Bool("read-through")
	}
	if c.IsSet("max-attempts") {
		cfg.MaxAttempts = c.Int("max-attempts")
	}
	return cfg, cfg.Validate()
}

// FromCLI loads configuration and wires the App for a command.
func FromCLI(c *cli.Context) (*App, error) {
	logger := NewLogger(c.Bool("quiet"), c.Bool("verbose"))
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger)
}
