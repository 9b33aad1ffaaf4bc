package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/kurvalgom/internal/db"
	"github.com/dtnitsch/kurvalgom/internal/pick"
	"github.com/dtnitsch/kurvalgom/internal/serve"
	"github.com/dtnitsch/kurvalgom/models"
)

func main() {
	defaults := models.DefaultConfig()

	app := &cli.App{
		Name:  "kurvalgom",
		Usage: "pick a random restaurant and pull its menu, photos and rating",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "YAML config file (missing file is fine)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output, including the browser's",
			},
			&cli.StringFlag{
				Name:  "browser",
				Value: defaults.Browser,
				Usage: "page loader: chrome or http",
			},
			&cli.BoolFlag{
				Name:  "headful",
				Usage: "show the Chrome window",
			},
			&cli.StringFlag{
				Name:  "blacklist",
				Value: defaults.BlacklistPath,
				Usage: "file of restaurant names that failed to resolve",
			},
			&cli.StringFlag{
				Name:  "db",
				Value: defaults.DBPath,
				Usage: "SQLite resolution history",
			},
			&cli.BoolFlag{
				Name:  "read-through",
				Usage: "skip restaurants already on the blacklist",
			},
			&cli.IntFlag{
				Name:  "max-attempts",
				Value: defaults.MaxAttempts,
				Usage: "candidates to try before giving up",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web UI and /random_restaurant endpoint",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Value: defaults.ListenAddr,
						Usage: "listen address",
					},
				},
			},
			{
				Name:      "pick",
				Usage:     "Find one random restaurant and print it as JSON",
				UsageText: "kurvalgom pick [--lat 54.68 --lon 25.27 --radius 2000]",
				Action:    pick.PickAction,
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "lat", Usage: "latitude of the search center"},
					&cli.Float64Flag{Name: "lon", Usage: "longitude of the search center"},
					&cli.IntFlag{Name: "radius", Usage: "search radius in meters (omit to search the whole area)"},
				},
			},
			{
				Name:      "resolve",
				Usage:     "Look up restaurants by name on the menu site",
				UsageText: "kurvalgom resolve \"La Boheme\" [name...]",
				Action:    pick.ResolveAction,
			},
			{
				Name:   "blacklist",
				Usage:  "Show blacklisted restaurant names",
				Action: db.BlacklistAction,
			},
			{
				Name:      "history",
				Usage:     "Show recent resolutions, or the candidate URLs of one",
				UsageText: "kurvalgom history [resolution-id]",
				Action:    db.HistoryAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "maximum resolutions to list",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
