// Package sitemap collects the URL inventory of a site by walking its
// XML sitemap, following nested sitemap indexes up to a depth cap. The
// collected list is the tracked payload for sitemap-mode pages: a new or
// vanished URL shows up as a change like any other payload edit.
package sitemap

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// URLsKey is the mapping key the collected URL list is stored under.
const URLsKey = "urls"

// Collector walks XML sitemaps and returns the referenced page URLs.
type Collector struct {
	cfg       config.SitemapConfig
	userAgent string
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewCollector creates a sitemap collector. Timeout and user agent come
// from the fetcher configuration so sitemap requests look like any other
// page fetch.
func NewCollector(cfg config.SitemapConfig, fetcherCfg config.FetcherConfig, logger zerolog.Logger) *Collector {
	timeout := time.Duration(fetcherCfg.HTTPTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultFetcherTimeoutSecs) * time.Second
	}
	return &Collector{
		cfg:       cfg,
		userAgent: fetcherCfg.UserAgent,
		timeout:   timeout,
		logger:    logger.With().Str("component", "SitemapCollector").Logger(),
	}
}

// CollectURLs fetches the sitemap at sitemapURL, follows sitemap index
// entries, and returns the sorted, deduplicated URL list wrapped as a
// payload value.
func (sc *Collector) CollectURLs(ctx context.Context, sitemapURL string) (models.Value, error) {
	maxDepth := sc.cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = config.DefaultSitemapMaxDepth
	}
	parallelism := sc.cfg.Parallelism
	if parallelism <= 0 {
		parallelism = config.DefaultSitemapParallelism
	}

	collectorOptions := []colly.CollectorOption{
		colly.Async(true),
		colly.MaxDepth(maxDepth),
		colly.IgnoreRobotsTxt(),
	}
	if sc.userAgent != "" {
		collectorOptions = append(collectorOptions, colly.UserAgent(sc.userAgent))
	}

	c := colly.NewCollector(collectorOptions...)
	c.SetRequestTimeout(sc.timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
	}); err != nil {
		return nil, errorwrapper.WrapError(err, "error setting up colly limit rule")
	}

	var (
		mu       sync.Mutex
		seen     = make(map[string]struct{})
		urls     []string
		firstErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			sc.logger.Debug().Str("url", r.URL.String()).Msg("Context cancelled, aborting request")
			r.Abort()
		}
	})

	c.OnXML("//urlset/url/loc", func(e *colly.XMLElement) {
		loc := strings.TrimSpace(e.Text)
		if loc == "" {
			return
		}
		mu.Lock()
		if _, exists := seen[loc]; !exists {
			seen[loc] = struct{}{}
			urls = append(urls, loc)
		}
		mu.Unlock()
	})

	c.OnXML("//sitemapindex/sitemap/loc", func(e *colly.XMLElement) {
		nested := strings.TrimSpace(e.Text)
		if nested == "" {
			return
		}
		if err := e.Request.Visit(nested); err != nil {
			sc.logger.Debug().Err(err).Str("url", nested).Msg("Skipping nested sitemap")
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = errorwrapper.NewNetworkError(r.Request.URL.String(), "sitemap request failed", err)
		}
		mu.Unlock()
		sc.logger.Warn().
			Str("url", r.Request.URL.String()).
			Int("status", r.StatusCode).
			Err(err).
			Msg("Sitemap request failed")
	})

	if err := c.Visit(sitemapURL); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to start sitemap walk from "+sitemapURL)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	// Partial results from a broken nested sitemap still diff usefully;
	// only a walk that produced nothing surfaces the failure.
	if len(urls) == 0 && firstErr != nil {
		return nil, firstErr
	}

	sort.Strings(urls)
	sequence := make(models.Sequence, 0, len(urls))
	for _, u := range urls {
		sequence = append(sequence, models.String(u))
	}

	sc.logger.Debug().
		Int("url_count", len(urls)).
		Str("sitemap", sitemapURL).
		Msg("Collected sitemap URLs")

	return models.Mapping{
		{Key: URLsKey, Value: sequence},
	}, nil
}
