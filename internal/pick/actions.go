package pick

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/kurvalgom/internal/app"
	"github.com/dtnitsch/kurvalgom/internal/finder"
	"github.com/dtnitsch/kurvalgom/models"
)

// PickAction runs one restaurant search and prints the result as JSON.
// Without --radius the whole configured area is searched.
func PickAction(c *cli.Context) error {
	a, err := app.FromCLI(c)
	if err != nil {
		return err
	}
	defer a.Close()

	q := finder.Query{WholeArea: true}
	if c.IsSet("radius") {
		q = finder.Query{
			Lat:          c.Float64("lat"),
			Lon:          c.Float64("lon"),
			RadiusMeters: c.Int("radius"),
		}
	}

	result, err := a.Finder.Find(c.Context, q)
	if err != nil {
		return fmt.Errorf("restaurant search failed: %w", err)
	}
	return printJSON(result)
}

type resolveOutput struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	models.EnrichedContent
}

// ResolveAction enriches the restaurant names given as arguments, skipping
// the locator.
func ResolveAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one restaurant name is required")
	}

	a, err := app.FromCLI(c)
	if err != nil {
		return err
	}
	defer a.Close()

	out := make([]resolveOutput, 0, c.NArg())
	for _, name := range c.Args().Slice() {
		content, url := a.Resolver.Resolve(c.Context, name)
		out = append(out, resolveOutput{Name: name, URL: url, EnrichedContent: content})
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
