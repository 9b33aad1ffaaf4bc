package browser

import (
	"context"

	"github.com/dtnitsch/kurvalgom/pkg/fetcher"
)

// HTTPLauncher loads pages with plain GET requests. It does not run
// scripts, so it only sees server-rendered markup.
type HTTPLauncher struct {
	Fetcher *fetcher.Fetcher
}

func (l *HTTPLauncher) Launch(ctx context.Context) (Session, error) {
	return &httpSession{fetcher: l.Fetcher}, nil
}

type httpSession struct {
	fetcher *fetcher.Fetcher
}

func (s *httpSession) Load(ctx context.Context, rawURL string) (*Page, error) {
	doc, finalURL, err := s.fetcher.GetHtml(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &Page{URL: finalURL, Doc: doc}, nil
}

func (s *httpSession) Close() error { return nil }
