package filmography

import (
	"net/url"
	"path"
	"strings"
)

// ActorNameFromURL derives a display name from a profile URL slug such as
// "/person/12345-daniel-radcliffe": the leading id token is dropped and the
// remaining hyphen-separated tokens are joined with spaces. The slug is not
// unescaped and its case is kept.
func ActorNameFromURL(rawURL string) string {
	slug := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		slug = u.EscapedPath()
	}
	slug = path.Base(strings.TrimRight(slug, "/"))

	tokens := strings.Split(slug, "-")
	if len(tokens) < 2 {
		return ""
	}
	return strings.Join(tokens[1:], " ")
}
