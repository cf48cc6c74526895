package filmography

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"filmography-crawler/pkg/models"
)

func fetchedPage(t *testing.T, pageURL string, stage models.Stage, body string) models.FetchedPage {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return models.FetchedPage{
		Ref:        models.PageRef{URL: pageURL, Stage: stage},
		URL:        pageURL,
		StatusCode: 200,
		Doc:        doc,
	}
}

type creditCategory struct {
	heading string
	titles  []string
}

// actorHTML renders a credits section the way the site lays it out: an h3
// with a word-form class per position, then a card table whose credit
// groups are nested directly.
func actorHTML(categories ...creditCategory) string {
	var b strings.Builder
	b.WriteString(`<html><body><h2 class="title">Someone</h2><div class="credits_list">`)
	for i, c := range categories {
		class := fmt.Sprintf("pos%d", i)
		if i < len(ordinalWords) {
			class = ordinalWords[i]
		}
		fmt.Fprintf(&b, `<h3 class="%s">%s</h3>`, class, c.heading)
		b.WriteString(`<table class="card credits ">`)
		for _, title := range c.titles {
			fmt.Fprintf(&b, `<table class="credit_group"><tbody><tr><td class="year">2001</td>`+
				`<td class="role"><a class="tooltip" href="/movie/1"><bdi>%s</bdi></a></td></tr></tbody></table>`, title)
		}
		b.WriteString(`</table>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func titlesOf(records []models.CreditRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.CreditTitle)
	}
	return out
}
