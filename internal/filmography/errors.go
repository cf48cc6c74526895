package filmography

import "fmt"

// StructureNotFoundError reports that a page lacks an element a stage
// depends on. It is scoped to that page only.
type StructureNotFoundError struct {
	URL     string
	Element string
}

func (e *StructureNotFoundError) Error() string {
	return fmt.Sprintf("structure not found: %s on %s", e.Element, e.URL)
}

// NameDerivationAmbiguity records that no heading within the ordinal probe
// range read "Acting" and the first credit table was used instead.
// It is informational and never returned as a parse error.
type NameDerivationAmbiguity struct {
	URL      string
	Headings int
}

func (e *NameDerivationAmbiguity) Error() string {
	return fmt.Sprintf("acting table not identified on %s (%d headings), fell back to table 0", e.URL, e.Headings)
}
