package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"filmography-crawler/internal"
	"filmography-crawler/internal/monitoring"
	"filmography-crawler/pkg/models"
)

// Fetcher turns a PageRef into a parsed page.
type Fetcher interface {
	Fetch(ctx context.Context, ref models.PageRef) (models.FetchedPage, error)
}

// Processor defines how to handle a single fetched page.
// It returns extracted data items (T) and new refs to follow.
type Processor[T any] interface {
	Process(page models.FetchedPage) (data []T, next []models.PageRef, err error)
}

// Sink defines how to persist the data.
type Sink[T any] interface {
	Save(ctx context.Context, batch []T) error
}

// Visited reports whether a URL was already handed out, marking it if not.
type Visited interface {
	Visit(ctx context.Context, url string) (seen bool, err error)
}

// Politeness gates requests per host.
type Politeness interface {
	IsAllowed(ctx context.Context, url string) bool
	Wait(ctx context.Context, url string) error
}

// URLFilter decides whether a ref is crawled at all.
type URLFilter interface {
	Filter(stage models.Stage, link string) bool
}

// Config holds worker settings.
type Config struct {
	Workers       int
	BatchSize     int
	FlushInterval time.Duration

	// MaxRetries is the number of extra fetch attempts after the first.
	MaxRetries   int
	RetryBackoff time.Duration
}

// Option configures an Engine.
type Option[T any] func(*Engine[T])

func WithVisited[T any](v Visited) Option[T] {
	return func(e *Engine[T]) { e.visited = v }
}

func WithPoliteness[T any](p Politeness) Option[T] {
	return func(e *Engine[T]) { e.politeness = p }
}

func WithFilter[T any](f URLFilter) Option[T] {
	return func(e *Engine[T]) { e.filter = f }
}

func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(e *Engine[T]) { e.logger = l }
}

func WithMetrics[T any](m *monitoring.Metrics) Option[T] {
	return func(e *Engine[T]) { e.metrics = m }
}

// Engine orchestrates the crawling process. Run drives a single crawl.
type Engine[T any] struct {
	config     Config
	fetcher    Fetcher
	processor  Processor[T]
	sink       Sink[T]
	visited    Visited
	politeness Politeness
	filter     URLFilter
	logger     *zap.Logger
	metrics    *monitoring.Metrics

	// State
	worklist chan models.PageRef
	results  chan T
	pending  sync.WaitGroup
}

func New[T any](cfg Config, fetcher Fetcher, proc Processor[T], sink Sink[T], opts ...Option[T]) *Engine[T] {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	e := &Engine[T]{
		config:     cfg,
		fetcher:    fetcher,
		processor:  proc,
		sink:       sink,
		visited:    internal.NewSafeMap(),
		politeness: openDoor{},
		filter:     acceptAll{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run crawls from the seed refs until every discovered ref has been handled
// or ctx is cancelled. Buffered results are flushed to the sink before it
// returns. The returned error is ctx's error, if any.
func (engine *Engine[T]) Run(ctx context.Context, seeds ...models.PageRef) error {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unbuffered, so an abandoned send always takes the ctx.Done branch
	// and releases its pending slot.
	engine.worklist = make(chan models.PageRef)
	engine.results = make(chan T, engine.config.BatchSize*2)

	// 1. Start Storage Worker
	storageDone := make(chan struct{})
	go func() {
		defer close(storageDone)
		engine.startStorageWorker(context.WithoutCancel(parent))
	}()

	// 2. Start Crawler Workers
	workers, ctx := errgroup.WithContext(ctx)
	for i := 0; i < engine.config.Workers; i++ {
		id := i
		workers.Go(func() error {
			return engine.startCrawlWorker(ctx, id)
		})
	}

	// 3. Seed the worklist, then stop once nothing is pending
	engine.enqueue(ctx, seeds)
	go func() {
		engine.pending.Wait()
		cancel()
	}()

	engine.logger.Info("engine started", zap.Int("workers", engine.config.Workers), zap.Int("seeds", len(seeds)))
	// Workers only stop on cancellation; a drained crawl is not an error.
	if err := workers.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		engine.logger.Warn("workers stopped", zap.Error(err))
	}

	close(engine.results)
	<-storageDone
	engine.logger.Info("engine stopped")
	return parent.Err()
}

func (engine *Engine[T]) enqueue(ctx context.Context, refs []models.PageRef) {
	if len(refs) == 0 {
		return
	}
	engine.pending.Add(len(refs))
	go func() {
		for i, ref := range refs {
			select {
			case engine.worklist <- ref:
			case <-ctx.Done():
				for range refs[i:] {
					engine.pending.Done()
				}
				return
			}
		}
	}()
}

// startCrawlWorker handles refs until ctx is done and returns ctx's error.
func (engine *Engine[T]) startCrawlWorker(ctx context.Context, id int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ref := <-engine.worklist:
			engine.handle(ctx, id, ref)
		}
	}
}

func (engine *Engine[T]) handle(ctx context.Context, id int, ref models.PageRef) {
	defer engine.pending.Done()

	stage := ref.Stage.String()
	log := engine.logger.With(zap.Int("worker", id), zap.String("url", ref.URL), zap.String("stage", stage))

	// Checks & Rate Limiting handled by the Engine, not the Processor.
	// Only refs that pass the filter and robots.txt are marked visited.
	if !engine.filter.Filter(ref.Stage, ref.URL) {
		log.Debug("filtered out")
		engine.metrics.IncPages(stage, "filtered")
		return
	}
	if !engine.politeness.IsAllowed(ctx, ref.URL) {
		log.Info("disallowed by robots.txt")
		engine.metrics.IncPages(stage, "disallowed")
		return
	}
	seen, err := engine.visited.Visit(ctx, ref.URL)
	if err != nil {
		log.Warn("visited check failed, crawling anyway", zap.Error(err))
	}
	if seen {
		log.Debug("already visited")
		engine.metrics.IncPages(stage, "duplicate")
		return
	}

	log.Debug("processing")
	page, err := engine.fetch(ctx, ref, log)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		engine.metrics.IncErrors("fetch_failed")
		engine.metrics.IncPages(stage, "fetch_failed")
		return
	}

	data, next, err := engine.processor.Process(page)
	if err != nil {
		log.Warn("page skipped", zap.Error(err))
		engine.metrics.IncErrors("process_failed")
		engine.metrics.IncPages(stage, "process_failed")
		return
	}
	engine.metrics.IncPages(stage, "ok")

	// Send results to storage
	for _, item := range data {
		engine.results <- item
	}

	// Queue new refs
	engine.enqueue(ctx, next)
}

func (engine *Engine[T]) fetch(ctx context.Context, ref models.PageRef, log *zap.Logger) (models.FetchedPage, error) {
	var lastErr error
	for attempt := 0; attempt <= engine.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * engine.config.RetryBackoff
			log.Info("retrying fetch", zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return models.FetchedPage{}, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := engine.politeness.Wait(ctx, ref.URL); err != nil {
			return models.FetchedPage{}, err
		}

		start := time.Now()
		page, err := engine.fetcher.Fetch(ctx, ref)
		engine.metrics.ObserveFetch(ref.Stage.String(), time.Since(start))
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}
	return models.FetchedPage{}, lastErr
}

// retryable rejects cancellation and client errors other than 429.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var status interface{ HTTPStatus() int }
	if errors.As(err, &status) {
		code := status.HTTPStatus()
		return code == 429 || code >= 500
	}
	return true
}

func (engine *Engine[T]) startStorageWorker(ctx context.Context) {
	buffer := make([]T, 0, engine.config.BatchSize)
	ticker := time.NewTicker(engine.config.FlushInterval) // Flush interval
	defer ticker.Stop()

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if err := engine.sink.Save(ctx, buffer); err != nil {
			engine.logger.Error("failed to save batch", zap.Int("size", len(buffer)), zap.Error(err))
			engine.metrics.IncErrors("sink_failed")
		} else {
			engine.logger.Info("saved batch", zap.Int("size", len(buffer)))
		}
		buffer = buffer[:0] // Reset buffer
	}

	for {
		select {
		case item, ok := <-engine.results:
			if !ok {
				flush()
				return
			}
			buffer = append(buffer, item)
			if len(buffer) >= engine.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

type openDoor struct{}

func (openDoor) IsAllowed(context.Context, string) bool { return true }
func (openDoor) Wait(context.Context, string) error     { return nil }

type acceptAll struct{}

func (acceptAll) Filter(models.Stage, string) bool { return true }
