// Package filmography turns fetched movie-database pages into crawl
// follow-ups and acting credits.
//
// Three stages run in order: a movie page resolves to its cast listing,
// the cast listing yields actor profile refs, and each actor profile yields
// the titles from its Acting table. Every stage is a pure function of one
// page; fetching and scheduling belong to the crawl engine.
package filmography
