package models

import (
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageRef is a URL scheduled for fetching, tagged with the stage that parses it.
type PageRef struct {
	URL   string
	Stage Stage
}

// FetchedPage is what the engine hands to a stage parser.
type FetchedPage struct {
	Ref PageRef

	// URL is the final URL after redirects. It equals Ref.URL when none happened.
	URL        string
	StatusCode int
	Doc        *goquery.Document
}

// CreditRecord is one acting credit of one actor.
// The title keeps the "movie_or_TV_show" key of the historical output files.
type CreditRecord struct {
	ActorName   string `json:"actor_name"`
	CreditTitle string `json:"movie_or_TV_show"`
}

// StoredCredit is a CreditRecord with the provenance written by database sinks.
type StoredCredit struct {
	CreditRecord
	SourceURL string
	RunID     string
	CrawledAt time.Time
}
