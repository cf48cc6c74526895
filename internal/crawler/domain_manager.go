package crawler

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// DomainManager enforces robots.txt and a per-host request interval.
type DomainManager struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.Group

	client        *http.Client
	userAgent     string
	interval      time.Duration
	respectRobots bool
}

// NewDomainManager allows one request per interval per host. A zero
// interval disables rate limiting.
func NewDomainManager(userAgent string, interval time.Duration, respectRobots bool) *DomainManager {
	return &DomainManager{
		limiters:      make(map[string]*rate.Limiter),
		robotsCache:   make(map[string]*robotstxt.Group),
		client:        &http.Client{Timeout: 10 * time.Second},
		userAgent:     userAgent,
		interval:      interval,
		respectRobots: respectRobots,
	}
}

func (d *DomainManager) Wait(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}

	d.mu.Lock()
	limiter, exists := d.limiters[u.Host]
	if !exists {
		limit := rate.Inf
		if d.interval > 0 {
			limit = rate.Every(d.interval)
		}
		limiter = rate.NewLimiter(limit, 1)
		d.limiters[u.Host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

func (d *DomainManager) IsAllowed(ctx context.Context, link string) bool {
	if !d.respectRobots {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	d.mu.Lock()
	group, exists := d.robotsCache[u.Host]
	d.mu.Unlock()

	if !exists {
		group = d.fetchRobots(ctx, u)
		d.mu.Lock()
		d.robotsCache[u.Host] = group
		d.mu.Unlock()
	}

	if group == nil {
		return true // No robots.txt or parse error = Allowed
	}
	return group.Test(u.Path)
}

func (d *DomainManager) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Scheme+"://"+u.Host+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(d.userAgent)
}
