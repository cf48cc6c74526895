package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"filmography-crawler/pkg/models"
)

// InDomainFilter keeps actor links on the site that the domain root names.
// Movie and cast refs derive from the configured start URLs and always pass.
type InDomainFilter struct {
	Domain string
}

func NewInDomainFilter(rootURL string) (*InDomainFilter, error) {
	u, err := url.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("invalid domain root: %w", err)
	}

	// Extract hostname and strip "www." to allow subdomains
	host := u.Hostname()
	domain := strings.TrimPrefix(host, "www.")

	if domain == "" {
		return nil, fmt.Errorf("could not extract domain from %s", rootURL)
	}

	return &InDomainFilter{Domain: domain}, nil
}

func (filter InDomainFilter) Filter(stage models.Stage, link string) bool {
	if stage != models.StageActor {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	domain := strings.ToLower(filter.Domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}
