package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const defaultPageTimeout = 30 * time.Second

// ChromeLauncher starts one headless Chrome process per session.
type ChromeLauncher struct {
	Headless    bool
	UserAgent   string
	PageTimeout time.Duration
	Logger      *slog.Logger
}

func (l *ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if l.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.UserAgent))
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)

	// The first Run starts the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	timeout := l.PageTimeout
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}

	return &chromeSession{
		ctx:     tabCtx,
		timeout: timeout,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}, nil
}

type chromeSession struct {
	ctx     context.Context
	timeout time.Duration

	once   sync.Once
	cancel func()
}

func (s *chromeSession) Load(ctx context.Context, rawURL string) (*Page, error) {
	loadCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html, location string
	if err := chromedp.Run(loadCtx,
		chromedp.Navigate(rawURL),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if location == "" {
		location = rawURL
	}
	return &Page{URL: location, Doc: doc}, nil
}

// Close quits the browser. It is safe to call more than once.
func (s *chromeSession) Close() error {
	s.once.Do(s.cancel)
	return nil
}
