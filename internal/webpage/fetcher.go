// Package webpage fetches a page and reduces it to a bounded amount of text.
package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"football-agent/internal/httpx"
)

// DefaultUserAgent is enough for most sites that reject Go's default client.
const DefaultUserAgent = "Mozilla/5.0"

// Page is the text extracted from one URL.
type Page struct {
	URL         string
	Title       string
	Description string
	Text        string
}

type Fetcher struct {
	http      *httpx.Client
	extractor Extractor
	userAgent string
	maxBytes  int64
}

// NewFetcher builds a fetcher; maxSizeMB <= 0 means 5MB.
func NewFetcher(h *httpx.Client, extractor Extractor, userAgent string, maxSizeMB int) *Fetcher {
	if h == nil {
		h = httpx.New("webpage")
	}
	if extractor == nil {
		extractor = RegexExtractor{MaxChars: DefaultMaxChars}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &Fetcher{
		http:      h,
		extractor: extractor,
		userAgent: userAgent,
		maxBytes:  int64(maxSizeMB) * 1024 * 1024,
	}
}

// Fetch downloads url and extracts its text and metadata.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	html, err := f.fetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}
	text, err := f.extractor.Extract(url, html)
	if err != nil {
		return nil, err
	}
	title, description := Metadata(html)
	return &Page{URL: url, Title: title, Description: description, Text: text}, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
