package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/kurvalgom/models"
	"github.com/dtnitsch/kurvalgom/pkg/browser"
	"github.com/dtnitsch/kurvalgom/pkg/caching"
	"github.com/dtnitsch/kurvalgom/pkg/db"
	"github.com/dtnitsch/kurvalgom/pkg/extractor"
	"github.com/dtnitsch/kurvalgom/pkg/fetcher"
)

const (
	testBase   = "https://www.meniu.lt/vieta/"
	detailPage = `<html><body><div class="quick-info">Cozy spot</div>
		<div class="fork-overlay"></div><span>4.5</span></body></html>`
	searchPage = `<html><body><div class="search-results"></div></body></html>`
)

// fakeLauncher serves pages from a map; unknown URLs fail to load.
type fakeLauncher struct {
	mu        sync.Mutex
	pages     map[string]string
	launchErr error
	launches  int
	loads     []string
	closes    int
}

func (l *fakeLauncher) Launch(ctx context.Context) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	return &fakeSession{l: l}, nil
}

type fakeSession struct{ l *fakeLauncher }

func (s *fakeSession) Load(ctx context.Context, rawURL string) (*browser.Page, error) {
	s.l.mu.Lock()
	s.l.loads = append(s.l.loads, rawURL)
	html, ok := s.l.pages[rawURL]
	s.l.mu.Unlock()
	if !ok {
		return nil, errors.New("navigation failed")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &browser.Page{URL: rawURL, Doc: doc}, nil
}

func (s *fakeSession) Close() error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	s.l.closes++
	return nil
}

type memRecorder struct {
	mu   sync.Mutex
	recs []db.Resolution
}

func (m *memRecorder) RecordResolution(r db.Resolution) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, r)
	return int64(len(m.recs)), nil
}

func (m *memRecorder) last(t *testing.T) db.Resolution {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recs) == 0 {
		t.Fatal("no resolution recorded")
	}
	return m.recs[len(m.recs)-1]
}

func newTestResolver(t *testing.T, l browser.Launcher, opts Options) (*Resolver, *caching.Cache, *memRecorder) {
	t.Helper()
	cache := caching.NewCache(filepath.Join(t.TempDir(), "blacklist.txt"))
	rec := &memRecorder{}
	if opts.SiteBaseURL == "" {
		opts.SiteBaseURL = testBase
	}
	return New(l, extractor.New(nil, "", nil), cache, rec, opts, nil), cache, rec
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		restName string
		want     []string
	}{
		{
			name:     "two words",
			base:     testBase,
			restName: "La Boheme",
			want: []string{
				"https://www.meniu.lt/vieta/la-boheme-1",
				"https://www.meniu.lt/vieta/la-boheme-vilnius-1",
				"https://www.meniu.lt/vieta/la-boheme-vilnius",
				"https://www.meniu.lt/vieta/la-boheme-vilnius-2",
				"https://www.meniu.lt/vieta/la-boheme",
			},
		},
		{
			name:     "punctuation is kept and base gains a slash",
			base:     "https://www.meniu.lt/vieta",
			restName: "Cafe & Co",
			want: []string{
				"https://www.meniu.lt/vieta/cafe-&-co-1",
				"https://www.meniu.lt/vieta/cafe-&-co-vilnius-1",
				"https://www.meniu.lt/vieta/cafe-&-co-vilnius",
				"https://www.meniu.lt/vieta/cafe-&-co-vilnius-2",
				"https://www.meniu.lt/vieta/cafe-&-co",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(tt.base, "vilnius", tt.restName)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestResolveShortCircuits(t *testing.T) {
	l := &fakeLauncher{pages: map[string]string{
		testBase + "la-boheme-1":         searchPage,
		testBase + "la-boheme-vilnius-1": detailPage,
		testBase + "la-boheme-vilnius":   detailPage,
	}}
	r, cache, rec := newTestResolver(t, l, Options{})

	content, url := r.Resolve(context.Background(), "La Boheme")

	if url != testBase+"la-boheme-vilnius-1" {
		t.Errorf("url = %q", url)
	}
	if content.Description != "Cozy spot" || content.Rating != "4.5" {
		t.Errorf("content = %+v", content)
	}
	if len(l.loads) != 2 {
		t.Errorf("loaded %d candidates, want 2: %v", len(l.loads), l.loads)
	}
	if l.closes != 1 {
		t.Errorf("session closed %d times, want 1", l.closes)
	}
	if _, ok := cache.Get("La Boheme"); !ok {
		t.Error("resolved restaurant was not cached")
	}

	got := rec.last(t)
	if got.Status != db.StatusResolved || got.CandidatesTried != 2 {
		t.Errorf("recorded %+v", got)
	}
	if len(got.Probes) != 2 || got.Probes[0].Valid || !got.Probes[1].Valid {
		t.Errorf("probes = %+v", got.Probes)
	}
}

func TestResolveCacheHit(t *testing.T) {
	l := &fakeLauncher{}
	r, cache, rec := newTestResolver(t, l, Options{})
	want := models.EnrichedContent{Description: "cached", Rating: "5"}
	cache.Set("Known", want, testBase+"known")

	content, url := r.Resolve(context.Background(), "Known")

	if !reflect.DeepEqual(content, want) || url != testBase+"known" {
		t.Errorf("Resolve() = %+v, %q", content, url)
	}
	if l.launches != 0 || len(l.loads) != 0 {
		t.Errorf("cache hit launched %d sessions and %d loads", l.launches, len(l.loads))
	}
	if got := rec.last(t).Status; got != db.StatusCached {
		t.Errorf("status = %q, want %q", got, db.StatusCached)
	}
}

func TestResolveExhaustedBlacklists(t *testing.T) {
	l := &fakeLauncher{pages: map[string]string{
		testBase + "nowhere-1": searchPage,
	}}
	r, cache, rec := newTestResolver(t, l, Options{})

	for i := 0; i < 2; i++ {
		content, url := r.Resolve(context.Background(), "Nowhere")
		if content.Resolved() || url != "" {
			t.Fatalf("Resolve() = %+v, %q; want failure", content, url)
		}
		if !reflect.DeepEqual(content, models.FailureContent("")) {
			t.Errorf("content = %+v, want the failure sentinel", content)
		}
	}

	if len(l.loads) != 10 {
		t.Errorf("loaded %d URLs, want 5 per attempt", len(l.loads))
	}
	names, err := cache.Blacklist()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"Nowhere", "Nowhere"}) {
		t.Errorf("blacklist = %v, want one line per attempt", names)
	}
	if _, ok := cache.Get("Nowhere"); ok {
		t.Error("failed restaurant was cached positively")
	}
	if got := rec.last(t); got.Status != db.StatusBlacklisted || got.CandidatesTried != 5 {
		t.Errorf("recorded %+v", got)
	}
}

func TestResolveLaunchFailure(t *testing.T) {
	l := &fakeLauncher{launchErr: errors.New("chrome not installed")}
	r, cache, rec := newTestResolver(t, l, Options{})

	content, url := r.Resolve(context.Background(), "Anywhere")

	if content.Resolved() || url != "" {
		t.Errorf("Resolve() = %+v, %q; want failure", content, url)
	}
	names, _ := cache.Blacklist()
	if len(names) != 0 {
		t.Errorf("launch failure blacklisted %v", names)
	}
	got := rec.last(t)
	if got.Status != db.StatusError || !strings.Contains(got.Error, "chrome not installed") {
		t.Errorf("recorded %+v", got)
	}
}

type panicLauncher struct{}

func (panicLauncher) Launch(ctx context.Context) (browser.Session, error) {
	panic("driver crashed")
}

func TestResolveRecoversPanics(t *testing.T) {
	r, _, rec := newTestResolver(t, panicLauncher{}, Options{})

	content, _ := r.Resolve(context.Background(), "Crashy")
	if content.Resolved() {
		t.Error("Resolve() after panic reported success")
	}
	if got := rec.last(t).Status; got != db.StatusError {
		t.Errorf("status = %q, want %q", got, db.StatusError)
	}
}

func TestResolveReadThrough(t *testing.T) {
	l := &fakeLauncher{}
	r, cache, rec := newTestResolver(t, l, Options{BlacklistReadThrough: true})
	if err := cache.AddToBlacklist("Gone"); err != nil {
		t.Fatal(err)
	}

	content, url := r.Resolve(context.Background(), "Gone")

	if content.Resolved() || url != "" {
		t.Errorf("Resolve() = %+v, %q; want failure", content, url)
	}
	if l.launches != 0 {
		t.Errorf("blacklisted name launched %d sessions", l.launches)
	}
	if names, _ := cache.Blacklist(); len(names) != 1 {
		t.Errorf("blacklist grew to %v", names)
	}
	if got := rec.last(t).Status; got != db.StatusSkipped {
		t.Errorf("status = %q, want %q", got, db.StatusSkipped)
	}
}

func TestResolveOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/vieta/test-place-vilnius", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	launcher := &browser.HTTPLauncher{Fetcher: fetcher.NewFetcher(5*time.Second, "")}
	r, _, _ := newTestResolver(t, launcher, Options{SiteBaseURL: srv.URL + "/vieta/"})

	content, url := r.Resolve(context.Background(), "Test Place")
	if url != srv.URL+"/vieta/test-place-vilnius" {
		t.Errorf("url = %q", url)
	}
	if content.Description != "Cozy spot" {
		t.Errorf("Description = %q", content.Description)
	}
}

func TestResolveWithHistoryDatabase(t *testing.T) {
	history, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	defer history.Close()

	l := &fakeLauncher{pages: map[string]string{testBase + "x-vilnius-2": detailPage}}
	cache := caching.NewCache(filepath.Join(t.TempDir(), "blacklist.txt"))
	r := New(l, extractor.New(nil, "", nil), cache, history, Options{SiteBaseURL: testBase}, nil)

	r.Resolve(context.Background(), "X")
	r.Resolve(context.Background(), "X")

	stats, err := history.ResolutionStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats[db.StatusResolved] != 1 || stats[db.StatusCached] != 1 {
		t.Errorf("stats = %v", stats)
	}

	list, err := history.ListResolutions(1)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListResolutions() = %v, %v", list, err)
	}
	probes, err := history.GetProbes(list[0].ResolutionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(probes) != 0 {
		t.Errorf("cache hit recorded %d probes", len(probes))
	}

	if _, err := os.Stat(cache.BlacklistPath()); !os.IsNotExist(err) {
		t.Errorf("blacklist file created without a failure: %v", err)
	}
}
