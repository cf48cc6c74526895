package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"filmography-crawler/internal/filmography"
	"filmography-crawler/internal/monitoring"
	"filmography-crawler/pkg/models"
)

// FilmographyProcessor implements engine.Processor by handing each fetched
// page to the parser for its stage.
type FilmographyProcessor struct {
	Resolver *filmography.CastResolver
	Cast     *filmography.CastParser
	Actor    *filmography.ActorParser

	RunID   string
	Logger  *zap.Logger
	Metrics *monitoring.Metrics

	now func() time.Time
}

func NewFilmographyProcessor(domainRoot *url.URL, runID string, logger *zap.Logger, m *monitoring.Metrics) *FilmographyProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilmographyProcessor{
		Resolver: filmography.NewCastResolver(),
		Cast:     filmography.NewCastParser(domainRoot),
		Actor:    filmography.NewActorParser(),
		RunID:    runID,
		Logger:   logger,
		Metrics:  m,
		now:      time.Now,
	}
}

func (p *FilmographyProcessor) Process(page models.FetchedPage) ([]models.StoredCredit, []models.PageRef, error) {
	switch page.Ref.Stage {
	case models.StageMovie:
		return nil, []models.PageRef{p.Resolver.Resolve(page.Ref.URL)}, nil

	case models.StageCastList:
		refs, err := p.Cast.Parse(page)
		if err != nil {
			p.countStructureError(err)
			return nil, nil, err
		}
		p.Logger.Info("cast listing parsed", zap.String("url", page.URL), zap.Int("actors", len(refs)))
		return nil, refs, nil

	case models.StageActor:
		actor, err := p.Actor.Parse(page)
		if err != nil {
			p.countStructureError(err)
			return nil, nil, err
		}
		if actor.Ambiguity != nil {
			p.Metrics.IncActingFallback()
			p.Logger.Warn("acting table not identified, using first table",
				zap.String("actor", actor.Actor),
				zap.Error(actor.Ambiguity))
		}
		p.Metrics.AddRecords(len(actor.Records))
		return p.stored(page, actor.Records), nil, nil

	default:
		return nil, nil, fmt.Errorf("no parser for stage %s (%s)", page.Ref.Stage, page.Ref.URL)
	}
}

func (p *FilmographyProcessor) stored(page models.FetchedPage, records []models.CreditRecord) []models.StoredCredit {
	if len(records) == 0 {
		return nil
	}
	crawledAt := p.now().UTC()
	out := make([]models.StoredCredit, 0, len(records))
	for _, rec := range records {
		out = append(out, models.StoredCredit{
			CreditRecord: rec,
			SourceURL:    page.URL,
			RunID:        p.RunID,
			CrawledAt:    crawledAt,
		})
	}
	return out
}

func (p *FilmographyProcessor) countStructureError(err error) {
	var notFound *filmography.StructureNotFoundError
	if errors.As(err, &notFound) {
		p.Metrics.IncErrors("structure_not_found")
	}
}
