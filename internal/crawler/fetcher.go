package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"filmography-crawler/pkg/models"
)

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// HTTPStatus lets the engine decide whether a failed fetch is worth retrying.
func (e *HTTPStatusError) HTTPStatus() int { return e.StatusCode }

// Fetcher downloads pages over plain HTTP and parses them into documents.
type Fetcher struct {
	client    *http.Client
	UserAgent string
}

func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, ref models.PageRef) (models.FetchedPage, error) {
	page := models.FetchedPage{Ref: ref, URL: ref.URL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return page, err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return page, err
	}
	defer resp.Body.Close()

	page.StatusCode = resp.StatusCode
	if resp.Request != nil && resp.Request.URL != nil {
		page.URL = resp.Request.URL.String()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return page, &HTTPStatusError{URL: ref.URL, StatusCode: resp.StatusCode}
	}

	doc, err := Extract(resp.Body)
	if err != nil {
		return page, fmt.Errorf("parse %s: %w", ref.URL, err)
	}
	page.Doc = doc
	return page, nil
}

// Extract parses an HTML stream into a queryable document.
func Extract(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}
