package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 16 << 20

// StatusError is returned for any non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
// A zero timeout leaves requests bounded only by their context.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// GetHtml fetches rawURL and parses it. It also returns the final URL after
// redirects.
func (f *Fetcher) GetHtml(ctx context.Context, rawURL string) (*goquery.Document, string, error) {
	bodyBytes, finalURL, err := f.GetHtmlBytes(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, finalURL, nil
}

func (f *Fetcher) GetHtmlBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	body, resp, err := f.do(req)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Request.URL.String(), nil
}

// PostForm submits form as application/x-www-form-urlencoded and returns the
// response body.
func (f *Fetcher) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, _, err := f.do(req)
	return body, err
}

func (f *Fetcher) do(req *http.Request) ([]byte, *http.Response, error) {
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, nil, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, resp, nil
}
