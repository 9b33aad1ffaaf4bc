// Package resolver turns a bare restaurant name into enriched content by
// guessing detail-page URLs and confirming them by their content marker.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/kurvalgom/models"
	"github.com/dtnitsch/kurvalgom/pkg/browser"
	"github.com/dtnitsch/kurvalgom/pkg/caching"
	"github.com/dtnitsch/kurvalgom/pkg/db"
	"github.com/dtnitsch/kurvalgom/pkg/extractor"
)

// Recorder stores resolution history. It may be nil.
type Recorder interface {
	RecordResolution(r db.Resolution) (int64, error)
}

type Options struct {
	SiteBaseURL string
	CitySlug    string
	Placeholder string

	// BlacklistReadThrough makes Resolve fail fast for blacklisted names
	// instead of probing them again.
	BlacklistReadThrough bool
}

type Resolver struct {
	launcher  browser.Launcher
	extractor *extractor.Extractor
	cache     *caching.Cache
	recorder  Recorder
	opts      Options
	logger    *slog.Logger
}

func New(launcher browser.Launcher, ex *extractor.Extractor, cache *caching.Cache, recorder Recorder, opts Options, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CitySlug == "" {
		opts.CitySlug = "vilnius"
	}
	return &Resolver{
		launcher:  launcher,
		extractor: ex,
		cache:     cache,
		recorder:  recorder,
		opts:      opts,
		logger:    logger,
	}
}

// Resolve returns enriched content for name and the detail-page URL it came
// from. Every failure, including a browser that will not start, yields
// models.FailureContent and an empty URL; Resolve never returns an error.
func (r *Resolver) Resolve(ctx context.Context, name string) (models.EnrichedContent, string) {
	start := time.Now()
	log := r.logger.With("restaurant", name)

	if entry, ok := r.cache.Get(name); ok {
		log.Info("using cached data for restaurant", "url", entry.URL)
		r.record(db.Resolution{Name: name, URL: entry.URL, Status: db.StatusCached, Duration: time.Since(start)})
		return entry.Content, entry.URL
	}

	if r.opts.BlacklistReadThrough {
		blacklisted, err := r.cache.IsBlacklisted(name)
		if err != nil {
			log.Error("failed to check blacklist", "error", err)
		}
		if blacklisted {
			log.Info("restaurant is blacklisted, skipping lookup")
			r.record(db.Resolution{Name: name, Status: db.StatusSkipped, Duration: time.Since(start)})
			return r.failure(), ""
		}
	}

	rec := r.probe(ctx, log, name)
	rec.Duration = time.Since(start)
	r.record(rec.Resolution)
	if rec.Status != db.StatusResolved {
		return r.failure(), ""
	}
	return rec.content, rec.URL
}

type attempt struct {
	db.Resolution
	content models.EnrichedContent
}

// probe owns the page-loading session for one resolution. The session is
// released on every return path.
func (r *Resolver) probe(ctx context.Context, log *slog.Logger, name string) (rec attempt) {
	rec = attempt{Resolution: db.Resolution{Name: name}}
	defer func() {
		if p := recover(); p != nil {
			log.Error("failed to load page for restaurant", "error", fmt.Sprint(p))
			rec.Status = db.StatusError
			rec.Error = fmt.Sprint(p)
		}
	}()

	session, err := r.launcher.Launch(ctx)
	if err != nil {
		log.Error("failed to load page for restaurant", "error", err)
		rec.Status = db.StatusError
		rec.Error = err.Error()
		return rec
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Error("failed to close browser session", "error", err)
		}
	}()

	log.Info("generating restaurant")
	for i, candidate := range Candidates(r.opts.SiteBaseURL, r.opts.CitySlug, name) {
		if err := ctx.Err(); err != nil {
			log.Error("resolution cancelled", "error", err)
			rec.Status = db.StatusError
			rec.Error = err.Error()
			return rec
		}

		rec.CandidatesTried++
		probe := db.Probe{Position: i, URL: candidate}

		page, err := session.Load(ctx, candidate)
		if err != nil {
			log.Info("candidate failed to load", "candidate", candidate, "attempt", i+1, "error", err)
			probe.Error = err.Error()
			rec.Probes = append(rec.Probes, probe)
			continue
		}
		log.Info("attempted URL", "candidate", candidate, "attempt", i+1)

		if !r.extractor.Verify(page) {
			rec.Probes = append(rec.Probes, probe)
			continue
		}

		content := r.extractor.Extract(page, name)
		if !content.Resolved() {
			probe.Error = "description missing"
			rec.Probes = append(rec.Probes, probe)
			continue
		}

		probe.Valid = true
		rec.Probes = append(rec.Probes, probe)
		log.Info("loaded valid URL", "url", page.URL)

		r.cache.Set(name, content, page.URL)
		rec.Status = db.StatusResolved
		rec.URL = page.URL
		rec.content = content
		return rec
	}

	log.Info("failed to load a valid page", "candidates", rec.CandidatesTried)
	if err := r.cache.AddToBlacklist(name); err != nil {
		log.Error("failed to blacklist restaurant", "error", err)
	}
	rec.Status = db.StatusBlacklisted
	return rec
}

func (r *Resolver) failure() models.EnrichedContent {
	return models.FailureContent(r.opts.Placeholder)
}

func (r *Resolver) record(res db.Resolution) {
	if r.recorder == nil {
		return
	}
	if _, err := r.recorder.RecordResolution(res); err != nil {
		r.logger.Error("failed to record resolution", "restaurant", res.Name, "error", err)
	}
}
