// Package locator picks a random restaurant from the Overpass geodata API.
package locator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/dtnitsch/kurvalgom/models"
	"github.com/dtnitsch/kurvalgom/pkg/fetcher"
)

type overpassResponse struct {
	Elements []models.PointOfInterest `json:"elements"`
}

type Locator struct {
	fetcher  *fetcher.Fetcher
	endpoint string
	areaName string
	logger   *slog.Logger
	limiter  *rate.Limiter

	// pick returns an index in [0, n).
	pick func(n int) int
}

func New(f *fetcher.Fetcher, endpoint, areaName string, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{
		fetcher:  f,
		endpoint: endpoint,
		areaName: areaName,
		logger:   logger,
		pick:     rand.Intn,
	}
}

// SetRateLimit caps geodata queries at rps per second. Zero or less removes
// the cap.
func (l *Locator) SetRateLimit(rps float64) {
	if rps <= 0 {
		l.limiter = nil
		return
	}
	l.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// AreaName is the administrative area FindRandom searches.
func (l *Locator) AreaName() string {
	return l.areaName
}

// FindRandom returns a random named restaurant anywhere in the configured
// area, or nil when the service fails or finds nothing.
func (l *Locator) FindRandom(ctx context.Context) *models.PointOfInterest {
	return l.find(ctx, AreaQuery(l.areaName))
}

// FindNearby returns a random named restaurant within radiusMeters of
// lat/lon, or nil when the service fails or finds nothing.
func (l *Locator) FindNearby(ctx context.Context, lat, lon float64, radiusMeters int) *models.PointOfInterest {
	if radiusMeters <= 0 {
		l.logger.Error("invalid search radius", "radius", radiusMeters)
		return nil
	}
	return l.find(ctx, AroundQuery(lat, lon, radiusMeters))
}

func (l *Locator) find(ctx context.Context, query string) *models.PointOfInterest {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			l.logger.Info("geodata query abandoned", "error", err)
			return nil
		}
	}

	elements, err := l.query(ctx, query)
	if err != nil {
		l.logger.Error("geodata query failed", "endpoint", l.endpoint, "error", err)
		return nil
	}
	if len(elements) == 0 {
		l.logger.Info("geodata query returned no restaurants")
		return nil
	}

	poi := elements[l.pick(len(elements))]
	l.logger.Info("picked restaurant", "name", poi.Name(), "id", poi.ID, "matches", len(elements))
	return &poi
}

func (l *Locator) query(ctx context.Context, query string) ([]models.PointOfInterest, error) {
	body, err := l.fetcher.PostForm(ctx, l.endpoint, url.Values{"data": {query}})
	if err != nil {
		return nil, err
	}

	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode geodata response: %w", err)
	}

	named := resp.Elements[:0]
	for _, e := range resp.Elements {
		if strings.TrimSpace(e.Tags["name"]) != "" {
			named = append(named, e)
		}
	}
	return named, nil
}
