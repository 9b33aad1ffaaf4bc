// Package browser loads restaurant detail pages inside a scoped session.
//
// A Session is acquired with Launcher.Launch and must be released with
// Close on every path; callers defer Close immediately after a successful
// Launch.
package browser

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Page is a loaded document together with the URL it ended up at.
type Page struct {
	URL string
	Doc *goquery.Document
}

// Session loads pages one at a time.
type Session interface {
	Load(ctx context.Context, rawURL string) (*Page, error)
	Close() error
}

// Launcher acquires a fresh Session.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}
