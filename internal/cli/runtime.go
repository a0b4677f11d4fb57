package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ppiankov/phonespec/internal/cache"
	"github.com/ppiankov/phonespec/internal/extract"
	"github.com/ppiankov/phonespec/internal/extract/adapters"
	"github.com/ppiankov/phonespec/internal/llm"
	"github.com/ppiankov/phonespec/internal/metrics"
	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/pipeline"
	"github.com/ppiankov/phonespec/internal/store/postgres"
	"github.com/ppiankov/phonespec/internal/util"
	"github.com/ppiankov/phonespec/internal/worker"
)

// scrapeRuntime holds the collaborators shared by ingest and compare
type scrapeRuntime struct {
	fetcher   *pipeline.Fetcher
	limiter   *worker.Limiter
	registry  *adapters.Registry
	extractor extract.Extractor
	metrics   *metrics.Manager
}

func newScrapeRuntime(c *model.Config, log *slog.Logger) (*scrapeRuntime, error) {
	rt := &scrapeRuntime{
		limiter:  worker.NewLimiter(c.RateLimiting.Delay),
		registry: adapters.NewRegistry(),
		metrics:  metrics.NewManager(metrics.WithMetricsEnabled(c.Metrics.Enabled)),
	}

	opts := []pipeline.FetcherOption{pipeline.WithFetchLogger(log)}
	if c.Cache.Enabled {
		store := cache.NewLayeredCache(c.Cache.MemoryTTL, c.Cache.Dir, c.Cache.DiskTTL)
		opts = append(opts, pipeline.WithPageCache(cache.NewPageCache(store, c.Cache.DiskTTL)))
	}
	if c.HTTP.RespectRobots {
		robots := util.NewRobotsChecker(proxiedClient(c.HTTP, 10*time.Second), c.HTTP.UserAgent)
		opts = append(opts, pipeline.WithRobots(robots, func(host string, delay time.Duration) {
			rt.limiter.RaiseHostInterval(host, delay)
			log.Info("honouring crawl-delay", slog.String("host", host), slog.Duration("delay", delay))
		}))
	}
	rt.fetcher = pipeline.NewFetcher(c.HTTP, opts...)

	extractor, err := newExtractor(c, rt.registry)
	if err != nil {
		return nil, err
	}
	rt.extractor = extractor
	return rt, nil
}

func (rt *scrapeRuntime) dependencies(log *slog.Logger) pipeline.Dependencies {
	return pipeline.Dependencies{
		Fetcher:   rt.fetcher,
		Pacer:     rt.limiter,
		Extractor: rt.extractor,
		Sources:   rt.registry,
		Metrics:   rt.metrics,
		Logger:    log,
	}
}

func newExtractor(c *model.Config, registry *adapters.Registry) (extract.Extractor, error) {
	switch c.Extraction.Strategy {
	case model.StrategyPattern, "":
		return adapters.NewPatternStrategy(registry), nil
	case model.StrategySchema:
		provider, err := llm.NewProvider(llm.ConfigFromModel(c.LLM, c.HTTP))
		if err != nil {
			return nil, fmt.Errorf("create LLM provider: %w", err)
		}
		if provider == nil {
			return nil, fmt.Errorf("schema extraction requires llm.provider (openai, anthropic, ollama)")
		}
		return extract.NewSchemaExtractor(provider, c.Extraction.Instructions, c.Extraction.MaxChars), nil
	default:
		return nil, fmt.Errorf("unknown extraction strategy: %s (supported: pattern, schema)", c.Extraction.Strategy)
	}
}

func proxiedClient(c model.HTTPConfig, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(c.HTTPProxy, c.HTTPSProxy, c.NoProxy)
	return &http.Client{Timeout: timeout, Transport: transport}
}

func openPool(ctx context.Context, c model.DatabaseConfig) (*pgxpool.Pool, error) {
	if c.DSN == "" {
		return nil, fmt.Errorf("no database configured: set database.dsn, PHONESPEC_DATABASE_DSN or --dsn")
	}
	pool, err := postgres.NewPool(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}
