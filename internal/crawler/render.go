package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"filmography-crawler/pkg/models"
)

// RenderFetcher loads pages in headless Chrome and parses the rendered DOM.
// One browser process is shared; each fetch gets its own tab.
type RenderFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

func NewRenderFetcher(userAgent string, timeout time.Duration) *RenderFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &RenderFetcher{allocCtx: allocCtx, cancel: cancel, timeout: timeout}
}

func (r *RenderFetcher) Fetch(ctx context.Context, ref models.PageRef) (models.FetchedPage, error) {
	page := models.FetchedPage{Ref: ref, URL: ref.URL}

	taskCtx, cancelTab := chromedp.NewContext(r.allocCtx)
	defer cancelTab()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, r.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var status atomic.Int64
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.Store(e.Response.Status)
		}
	})

	var location, content string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.8"}),
		chromedp.Navigate(ref.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &content, chromedp.ByQuery),
	)
	if err != nil {
		return page, fmt.Errorf("render %s: %w", ref.URL, err)
	}

	page.StatusCode = int(status.Load())
	if location != "" {
		page.URL = location
	}
	if page.StatusCode >= 300 {
		return page, &HTTPStatusError{URL: ref.URL, StatusCode: page.StatusCode}
	}

	doc, err := Extract(strings.NewReader(content))
	if err != nil {
		return page, fmt.Errorf("parse %s: %w", ref.URL, err)
	}
	page.Doc = doc
	return page, nil
}

// Close shuts down the browser.
func (r *RenderFetcher) Close() {
	r.cancel()
}
