package filmography

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"filmography-crawler/pkg/models"
)

const (
	creditsSectionSelector = "div.credits_list"
	creditHeadingSelector  = "h3"
	creditTableSelector    = "table.card.credits"
	creditGroupSelector    = "table.credit_group"
	creditTitleSelector    = "a.tooltip bdi"

	actingHeading = "Acting"
)

// MaxOrdinalProbe is the number of heading positions probed for the Acting
// table. The site marks headings with word-form classes and the Acting
// table has not been seen past position five.
const MaxOrdinalProbe = 6

var ordinalWords = [MaxOrdinalProbe]string{"zero", "one", "two", "three", "four", "five"}

// ActorPage is the result of parsing one actor profile.
type ActorPage struct {
	Actor      string
	TableIndex int

	// Ambiguity is set when no probed heading read "Acting" and table 0
	// was used anyway.
	Ambiguity *NameDerivationAmbiguity

	Records []models.CreditRecord
}

// ActorParser extracts acting credits from an actor profile page.
type ActorParser struct{}

func NewActorParser() *ActorParser {
	return &ActorParser{}
}

// Parse selects the Acting table by heading position and emits one record
// per title in it. A page without a credits section, or with an empty one,
// yields no records and no error.
func (p *ActorParser) Parse(page models.FetchedPage) (ActorPage, error) {
	result := ActorPage{Actor: ActorNameFromURL(page.URL)}
	if page.Doc == nil {
		return result, &StructureNotFoundError{URL: page.URL, Element: "document"}
	}

	credits := page.Doc.Find(creditsSectionSelector)
	if credits.Length() == 0 {
		return result, nil
	}

	headings := credits.Find(creditHeadingSelector)
	tables := credits.Find(creditTableSelector)
	if headings.Length() == 0 && tables.Length() == 0 {
		return result, nil
	}

	index, found := actingTableIndex(headings)
	if !found {
		result.Ambiguity = &NameDerivationAmbiguity{URL: page.URL, Headings: headings.Length()}
	}
	result.TableIndex = index

	if index >= tables.Length() {
		return result, &StructureNotFoundError{URL: page.URL, Element: creditTableSelector}
	}

	for _, group := range creditGroups(tables.Eq(index)) {
		group.Find(creditTitleSelector).Each(func(_ int, title *goquery.Selection) {
			for _, text := range directTexts(title) {
				// Whitespace between inline tags is layout, not a title.
				if strings.TrimSpace(text) == "" {
					continue
				}
				result.Records = append(result.Records, models.CreditRecord{
					ActorName:   result.Actor,
					CreditTitle: text,
				})
			}
		})
	}
	return result, nil
}

// creditGroups returns the credit groups of a card table in document order.
// The site opens group tables directly inside the card table; an HTML5
// parser closes the card table there, leaving the groups as its following
// siblings up to the next card table.
func creditGroups(table *goquery.Selection) []*goquery.Selection {
	var groups []*goquery.Selection
	table.Find(creditGroupSelector).Each(func(_ int, g *goquery.Selection) {
		groups = append(groups, g)
	})
	table.NextUntil(creditTableSelector).Each(func(_ int, sib *goquery.Selection) {
		if sib.Is(creditGroupSelector) {
			groups = append(groups, sib)
			return
		}
		sib.Find(creditGroupSelector).Each(func(_ int, g *goquery.Selection) {
			groups = append(groups, g)
		})
	})
	return groups
}

// actingTableIndex returns the first probed heading position whose heading
// reads "Acting". Without a match it returns 0, false.
func actingTableIndex(headings *goquery.Selection) (int, bool) {
	for i := 0; i < headings.Length() && i < MaxOrdinalProbe; i++ {
		h := headings.Eq(i)
		if !h.Is(creditHeadingSelector + "." + ordinalWords[i]) {
			continue
		}
		texts := directTexts(h)
		if len(texts) > 0 && texts[0] == actingHeading {
			return i, true
		}
	}
	return 0, false
}

// directTexts returns the non-empty text node children of the first node in s.
// Text is returned as found, without trimming.
func directTexts(s *goquery.Selection) []string {
	if s.Length() == 0 {
		return nil
	}
	var out []string
	for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && c.Data != "" {
			out = append(out, c.Data)
		}
	}
	return out
}
