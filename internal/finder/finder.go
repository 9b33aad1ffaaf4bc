// Package finder repeatedly picks candidate restaurants until one resolves
// to real content.
package finder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/dtnitsch/kurvalgom/models"
	"github.com/dtnitsch/kurvalgom/pkg/mapview"
)

// ErrExhausted is returned when MaxAttempts candidates failed to resolve.
var ErrExhausted = errors.New("no resolvable restaurant found")

// Locator supplies candidate restaurants. Nil means no candidate.
type Locator interface {
	FindRandom(ctx context.Context) *models.PointOfInterest
	FindNearby(ctx context.Context, lat, lon float64, radiusMeters int) *models.PointOfInterest
}

// Resolver enriches a restaurant name.
type Resolver interface {
	Resolve(ctx context.Context, name string) (models.EnrichedContent, string)
}

// Query selects where candidates come from. WholeArea ignores the
// coordinate and searches the locator's configured area.
type Query struct {
	Lat          float64
	Lon          float64
	RadiusMeters int
	WholeArea    bool
}

func (q Query) Validate() error {
	if q.WholeArea {
		return nil
	}
	if q.RadiusMeters <= 0 {
		return fmt.Errorf("radius must be a positive number of meters, got %d", q.RadiusMeters)
	}
	if q.Lat < -90 || q.Lat > 90 || q.Lon < -180 || q.Lon > 180 {
		return fmt.Errorf("coordinate %v,%v is out of range", q.Lat, q.Lon)
	}
	return nil
}

type Options struct {
	MaxAttempts int

	// BackoffInitial is the sleep after the first locator miss.
	BackoffInitial time.Duration
	// BackoffMax caps exponential backoff.
	BackoffMax time.Duration
	// BackoffJitterFrac applies +/- jitter to backoff sleeps (0.2 = +/-20%).
	BackoffJitterFrac float64
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 25
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = 250 * time.Millisecond
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 5 * time.Second
	}
	if o.BackoffJitterFrac < 0 {
		o.BackoffJitterFrac = 0
	}
	return o
}

type Finder struct {
	locator  Locator
	resolver Resolver
	opts     Options
	logger   *slog.Logger
}

func New(locator Locator, resolver Resolver, opts Options, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{
		locator:  locator,
		resolver: resolver,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// Find loops until a candidate resolves, the attempt cap is hit
// (ErrExhausted) or ctx is done. Locator misses back off exponentially;
// resolution misses retry at once with a fresh candidate.
func (f *Finder) Find(ctx context.Context, q Query) (*models.RestaurantResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	misses := 0
	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		poi := f.candidate(ctx, q)
		if poi == nil {
			f.logger.Info("no candidate restaurant", "attempt", attempt)
			if attempt < f.opts.MaxAttempts {
				if err := f.sleep(ctx, misses); err != nil {
					return nil, err
				}
			}
			misses++
			continue
		}

		name := poi.Name()
		content, url := f.resolver.Resolve(ctx, name)
		if !content.Resolved() {
			f.logger.Info("candidate did not resolve", "attempt", attempt, "restaurant", name)
			continue
		}

		mapHTML, err := mapview.Render(poi.Lat, poi.Lon, name)
		if err != nil {
			f.logger.Error("failed to render map", "restaurant", name, "error", err)
		}

		f.logger.Info("restaurant resolved", "attempt", attempt, "restaurant", name, "url", url)
		return &models.RestaurantResult{
			Name:            name,
			Lat:             poi.Lat,
			Lon:             poi.Lon,
			Location:        poi.Location(),
			URL:             url,
			MapHTML:         mapHTML,
			EnrichedContent: content,
		}, nil
	}

	f.logger.Error("giving up on restaurant search", "attempts", f.opts.MaxAttempts)
	return nil, ErrExhausted
}

func (f *Finder) candidate(ctx context.Context, q Query) *models.PointOfInterest {
	if q.WholeArea {
		return f.locator.FindRandom(ctx)
	}
	return f.locator.FindNearby(ctx, q.Lat, q.Lon, q.RadiusMeters)
}

func (f *Finder) sleep(ctx context.Context, misses int) error {
	t := time.NewTimer(backoffSleep(f.opts.BackoffInitial, f.opts.BackoffMax, f.opts.BackoffJitterFrac, misses))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func backoffSleep(initial, max time.Duration, jitterFrac float64, attempt int) time.Duration {
	sleep := initial
	for i := 0; i < attempt && sleep < max; i++ {
		sleep *= 2
		if sleep > max {
			sleep = max
			break
		}
	}
	if jitterFrac <= 0 {
		return sleep
	}
	j := 1 + (rand.Float64()*2-1)*jitterFrac
	return time.Duration(float64(sleep) * j)
}
