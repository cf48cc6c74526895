package filmography

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"filmography-crawler/pkg/models"
)

const (
	castContainerSelector = "ol.people.credits"
	actorLinkSelector     = "div.info a"
)

// CastParser extracts actor profile refs from a cast-listing page.
type CastParser struct {
	domainRoot *url.URL
}

// NewCastParser returns a parser resolving actor links against domainRoot.
func NewCastParser(domainRoot *url.URL) *CastParser {
	return &CastParser{domainRoot: domainRoot}
}

// Parse returns one actor ref per link in the first cast container, in
// document order. The crew list follows the cast list on the page and is
// never read.
func (p *CastParser) Parse(page models.FetchedPage) ([]models.PageRef, error) {
	if page.Doc == nil {
		return nil, &StructureNotFoundError{URL: page.URL, Element: "document"}
	}

	cast := page.Doc.Find(castContainerSelector).First()
	if cast.Length() == 0 {
		return nil, &StructureNotFoundError{URL: page.URL, Element: castContainerSelector}
	}

	var refs []models.PageRef
	cast.Find(actorLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		refs = append(refs, models.PageRef{
			URL:   p.domainRoot.ResolveReference(link).String(),
			Stage: models.StageActor,
		})
	})
	return refs, nil
}
