package crawler

import (
	"fmt"
	"strings"
)

var testOrdinals = []string{"zero", "one", "two", "three", "four", "five"}

type category struct {
	heading string
	titles  []string
}

func actorPageHTML(categories ...category) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="credits_list">`)
	for i, c := range categories {
		fmt.Fprintf(&b, `<h3 class="%s">%s</h3><table class="card credits">`, testOrdinals[i], c.heading)
		for _, title := range c.titles {
			fmt.Fprintf(&b, `<table class="credit_group"><tr><td><a class="tooltip" href="#"><bdi>%s</bdi></a></td></tr></table>`, title)
		}
		b.WriteString(`</table>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func castPageHTML(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ol class="people credits">`)
	for _, href := range hrefs {
		fmt.Fprintf(&b, `<li><div class="info"><p><a href="%s">x</a></p></div></li>`, href)
	}
	b.WriteString(`</ol><ol class="people credits crew"><li><div class="info"><a href="/person/99-crew-member">c</a></div></li></ol></body></html>`)
	return b.String()
}
