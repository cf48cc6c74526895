package filmography

import "filmography-crawler/pkg/models"

// CastResolver maps a movie page to its cast-listing page.
type CastResolver struct{}

func NewCastResolver() *CastResolver {
	return &CastResolver{}
}

// Resolve appends "/cast" to movieURL. The movie page content is not read.
func (r *CastResolver) Resolve(movieURL string) models.PageRef {
	return models.PageRef{URL: movieURL + "/cast", Stage: models.StageCastList}
}
