package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"filmography-crawler/internal/config"
	"filmography-crawler/internal/crawler"
	"filmography-crawler/internal/crawler/engine"
	"filmography-crawler/internal/logger"
	"filmography-crawler/internal/monitoring"
	"filmography-crawler/pkg/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCmd binds flags over cfg, so every flag defaults to its
// environment value.
func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crawler",
		Short:         "Crawl a movie's cast and record every actor's acting credits",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err := run(ctx, cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "crawler: %v\n", err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&cfg.StartURLs, "url", cfg.StartURLs, "movie page to start from (repeatable)")
	flags.StringVar(&cfg.DomainRoot, "domain", cfg.DomainRoot, "site root used to resolve actor links")
	flags.StringVar(&cfg.Output, "output", cfg.Output, "JSON Lines output file for the jsonl sink")
	flags.StringVar(&cfg.Sink, "sink", cfg.Sink, "credit sink: jsonl, postgres or sqlite")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of concurrent workers")
	flags.BoolVar(&cfg.RenderJS, "render", cfg.RenderJS, "render pages with headless Chrome")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	domainRoot, err := config.ParseHTTPURL(cfg.DomainRoot)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv := monitoring.NewServer(cfg.MetricsAddr, reg, log)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var fetcher engine.Fetcher
	if cfg.RenderJS {
		renderer := crawler.NewRenderFetcher(cfg.UserAgent, cfg.FetchTimeout)
		defer renderer.Close()
		fetcher = renderer
	} else {
		fetcher = crawler.NewFetcher(cfg.UserAgent, cfg.FetchTimeout)
	}

	sink, closeSink, err := openSink(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s sink: %w", cfg.Sink, err)
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.Warn("closing sink", zap.Error(err))
		}
	}()

	visited, closeVisited, err := openVisited(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open visited set: %w", err)
	}
	defer closeVisited()

	filter, err := crawler.NewInDomainFilter(cfg.DomainRoot)
	if err != nil {
		return err
	}

	eng := engine.New[models.StoredCredit](
		engine.Config{
			Workers:       cfg.Workers,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			MaxRetries:    cfg.MaxRetries,
			RetryBackoff:  cfg.RetryBackoff,
		},
		fetcher,
		crawler.NewFilmographyProcessor(domainRoot, runID, log, metrics),
		sink,
		engine.WithVisited[models.StoredCredit](visited),
		engine.WithPoliteness[models.StoredCredit](crawler.NewDomainManager(cfg.UserAgent, cfg.RateLimit, cfg.RespectRobots)),
		engine.WithFilter[models.StoredCredit](filter),
		engine.WithLogger[models.StoredCredit](log),
		engine.WithMetrics[models.StoredCredit](metrics),
	)

	seeds := make([]models.PageRef, 0, len(cfg.StartURLs))
	for _, u := range cfg.StartURLs {
		seeds = append(seeds, models.PageRef{URL: u, Stage: models.StageMovie})
	}

	log.Info("starting crawl",
		zap.Strings("start_urls", cfg.StartURLs),
		zap.String("domain_root", cfg.DomainRoot),
		zap.String("sink", cfg.Sink),
		zap.Bool("render", cfg.RenderJS),
	)
	if err := eng.Run(ctx, seeds...); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("crawl interrupted")
			return nil
		}
		return err
	}
	log.Info("crawl finished")
	return nil
}
