package db

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/kurvalgom/internal/app"
	"github.com/dtnitsch/kurvalgom/internal/common"
	"github.com/dtnitsch/kurvalgom/pkg/caching"
	dbpkg "github.com/dtnitsch/kurvalgom/pkg/db"
)

// HistoryAction lists recent resolutions, or the probes of one resolution
// when an ID is given.
func HistoryAction(c *cli.Context) error {
	cfg, err := app.LoadConfig(c)
	if err != nil {
		return err
	}

	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if c.NArg() > 0 {
		var id int64
		if _, err := fmt.Sscanf(c.Args().First(), "%d", &id); err != nil {
			return fmt.Errorf("invalid resolution ID: %s", c.Args().First())
		}
		return printProbes(database, id)
	}

	resolutions, err := database.ListResolutions(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list resolutions: %w", err)
	}
	if len(resolutions) == 0 {
		fmt.Println("No resolutions recorded")
		return nil
	}

	fmt.Printf("%-6s %-20s %-12s %-6s %-8s %-30s %s\n",
		"ID", "Created", "Status", "Tried", "Millis", "Restaurant", "URL")
	fmt.Println(strings.Repeat("-", 120))
	for _, r := range resolutions {
		fmt.Printf("%-6d %-20s %-12s %-6d %-8d %-30s %s\n",
			r.ResolutionID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Status,
			r.CandidatesTried,
			r.Duration.Milliseconds(),
			common.Truncate(r.Name, 29),
			r.URL,
		)
	}

	stats, err := database.ResolutionStats()
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}
	statuses := make([]string, 0, len(stats))
	for status := range stats {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	fmt.Printf("\nTotals:")
	for _, status := range statuses {
		fmt.Printf(" %s=%d", status, stats[status])
	}
	fmt.Println()
	fmt.Printf("\nTip: Use 'kurvalgom history <id>' to see candidate URLs\n")
	return nil
}

func printProbes(database *dbpkg.DB, id int64) error {
	probes, err := database.GetProbes(id)
	if err != nil {
		return fmt.Errorf("failed to get probes: %w", err)
	}
	if len(probes) == 0 {
		fmt.Printf("Resolution %d has no probes\n", id)
		return nil
	}

	fmt.Printf("Resolution %d\n", id)
	fmt.Println(strings.Repeat("=", 60))
	for _, p := range probes {
		mark := " "
		if p.Valid {
			mark = "*"
		}
		fmt.Printf("%s %d. %s\n", mark, p.Position+1, p.URL)
		if p.Error != "" {
			fmt.Printf("     Error: %s\n", p.Error)
		}
	}
	return nil
}

// BlacklistAction prints the blacklist file with how often each name was
// appended.
func BlacklistAction(c *cli.Context) error {
	cfg, err := app.LoadConfig(c)
	if err != nil {
		return err
	}

	names, err := caching.NewCache(cfg.BlacklistPath).Blacklist()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("Blacklist %s is empty\n", cfg.BlacklistPath)
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, name := range names {
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	for _, name := range order {
		fmt.Printf("%4d  %s\n", counts[name], name)
	}
	fmt.Printf("\nTotal: %d lines, %d distinct names\n", len(names), len(order))
	return nil
}
