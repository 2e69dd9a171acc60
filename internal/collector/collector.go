// Package collector sequences a collection run: organic search, image
// search, related-content expansion, the optional external scrape, and the
// final export and candidate-link hand-off.
package collector

import (
	"context"
	"fmt"

	"github.com/jonesrussell/tikspyder/internal/apify"
	"github.com/jonesrussell/tikspyder/internal/database"
	"github.com/jonesrussell/tikspyder/internal/domain"
	"github.com/jonesrussell/tikspyder/internal/logger"
	"github.com/jonesrussell/tikspyder/internal/normalize"
	"github.com/jonesrussell/tikspyder/internal/query"
	"github.com/jonesrussell/tikspyder/internal/rawdata"
	"github.com/jonesrussell/tikspyder/internal/serpapi"
)

// Config carries the user inputs for one collection run.
type Config struct {
	// Query is the search target (term, user or tag, plus date bounds).
	Query query.Params
	// Search carries the locale parameters; its Query field is filled from
	// the built query string.
	Search serpapi.SearchParams
	// Depth caps how many related-content URLs are followed.
	Depth int
	// IncludeRelated folds author-scoped related links into the candidate
	// list.
	IncludeRelated bool
	// OutputDir is the run's output root (database, snapshots, CSV files).
	OutputDir string
	// DownloadsDir is an optional legacy downloaded-media directory
	// consulted when listing candidates.
	DownloadsDir string

	// Scrape enables the external-scraper stage.
	Scrape bool
	// ScrapeDownloadVideos toggles the scraper's video sidecar downloads.
	ScrapeDownloadVideos bool
	// OldestPostDate/NewestPostDate bound the scrape (YYYY-MM-DD).
	OldestPostDate string
	NewestPostDate string
}

// Summary reports what a run collected.
type Summary struct {
	Query          string
	Pages          int
	SearchResults  int
	ImageResults   int
	RelatedContent int
	ScraperVideos  int
	CandidateLinks []string
}

// Collector runs the collection pipeline. The pipeline is sequential and
// single-writer; stages are individually fault-tolerant and idempotent, so a
// failed stage is logged and the run proceeds.
type Collector struct {
	cfg     Config
	serp    *serpapi.Client
	scraper *apify.Client
	store   *database.Store
	raw     *rawdata.Writer
	log     logger.Logger

	relatedURLs []string
	summary     Summary
}

// New creates a Collector. scraper may be nil when the scrape stage is
// disabled.
func New(
	cfg Config,
	serp *serpapi.Client,
	scraper *apify.Client,
	store *database.Store,
	raw *rawdata.Writer,
	log logger.Logger,
) *Collector {
	return &Collector{
		cfg:     cfg,
		serp:    serp,
		scraper: scraper,
		store:   store,
		raw:     raw,
		log:     log,
	}
}

type stage struct {
	name string
	fn   func(context.Context) error
}

// Run executes the pipeline. Only input validation aborts before any work;
// afterwards each stage's failure is logged and the next stage runs.
// Cancellation is honored at stage boundaries.
func (c *Collector) Run(ctx context.Context) (*Summary, error) {
	q, err := c.cfg.Query.Build()
	if err != nil {
		return nil, err
	}
	if c.cfg.Scrape {
		for _, d := range []struct{ name, value string }{
			{"oldest-post-date", c.cfg.OldestPostDate},
			{"newest-post-date", c.cfg.NewestPostDate},
		} {
			if dateErr := query.ValidateDate(d.name, d.value); dateErr != nil {
				return nil, dateErr
			}
		}
	}
	c.cfg.Search.Query = q
	c.summary = Summary{Query: q}

	c.log.Info("starting collection", logger.String("query", q))

	stages := []stage{
		{"search_results", c.collectSearchResults},
		{"image_results", c.collectImageResults},
		{"related_content", c.collectRelatedContent},
	}
	if c.cfg.Scrape {
		stages = append(stages, stage{"external_scrape", c.collectScraperData})
	}
	stages = append(stages, stage{"export", c.export})

	for _, s := range stages {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("collection canceled before %s: %w", s.name, ctxErr)
		}

		c.log.Info("stage started", logger.String("stage", s.name))
		if stageErr := s.fn(ctx); stageErr != nil {
			c.log.Error("stage failed, continuing",
				logger.String("stage", s.name),
				logger.Error(stageErr))
			continue
		}
		c.log.Info("stage finished", logger.String("stage", s.name))
	}

	candidates, err := c.store.ListCandidateLinks(ctx, database.CandidateOptions{
		IncludeRelated: c.cfg.IncludeRelated,
		DownloadsDir:   c.cfg.DownloadsDir,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidate links: %w", err)
	}
	c.summary.CandidateLinks = candidates

	c.log.Info("collection finished",
		logger.Int("search_results", c.summary.SearchResults),
		logger.Int("image_results", c.summary.ImageResults),
		logger.Int("related_content", c.summary.RelatedContent),
		logger.Int("scraper_videos", c.summary.ScraperVideos),
		logger.Int("candidate_links", len(c.summary.CandidateLinks)))

	return &c.summary, nil
}

// snapshot saves a raw payload; snapshot failures never fail a stage.
func (c *Collector) snapshot(resultType string, payload any) {
	if err := c.raw.Save(resultType, payload); err != nil {
		c.log.Warn("raw snapshot failed",
			logger.String("result_type", resultType),
			logger.Error(err))
	}
}

// reportItemErrors logs per-item normalization failures.
func (c *Collector) reportItemErrors(stageName string, errs []error) {
	for _, err := range errs {
		c.log.Warn("record skipped",
			logger.String("stage", stageName),
			logger.Error(err))
	}
}

func (c *Collector) collectSearchResults(ctx context.Context) error {
	var found int

	pages, err := c.serp.Paginate(ctx, c.cfg.Search, false, func(res *serpapi.SearchResponse) error {
		c.snapshot(rawdata.TypeSearchResult, res)
		found += len(res.OrganicResults)

		records, errs := normalize.SearchResults(res.OrganicResults)
		c.reportItemErrors("search_results", errs)

		n, insErr := c.store.InsertSearchResults(ctx, records)
		if insErr != nil {
			return insErr
		}
		c.summary.SearchResults += n
		return nil
	})
	c.summary.Pages += pages
	if err != nil {
		return err
	}

	if found == 0 {
		c.log.Info("no organic results found")
	}
	return nil
}

func (c *Collector) collectImageResults(ctx context.Context) error {
	var found int

	pages, err := c.serp.Paginate(ctx, c.cfg.Search, true, func(res *serpapi.SearchResponse) error {
		c.snapshot(rawdata.TypeImageResult, res)
		found += len(res.ImagesResults)

		records, errs := normalize.ImageResults(res.ImagesResults)
		c.reportItemErrors("image_results", errs)

		n, insErr := c.store.InsertImageResults(ctx, records)
		if insErr != nil {
			return insErr
		}
		c.summary.ImageResults += n

		for _, record := range records {
			if record.RelatedContentLink != "" {
				c.relatedURLs = append(c.relatedURLs, record.RelatedContentLink)
			}
		}
		return nil
	})
	c.summary.Pages += pages
	if err != nil {
		return err
	}

	if found == 0 {
		c.log.Info("no image results found")
	}
	return nil
}

func (c *Collector) collectRelatedContent(ctx context.Context) error {
	if len(c.relatedURLs) == 0 {
		c.log.Info("no related content to follow")
		return nil
	}

	urls := c.relatedURLs
	if c.cfg.Depth > 0 && len(urls) > c.cfg.Depth {
		urls = urls[:c.cfg.Depth]
	}

	for _, u := range urls {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		res, err := c.serp.LoadRelated(ctx, u)
		if err != nil {
			c.log.Warn("related content fetch failed",
				logger.String("url", u),
				logger.Error(err))
			continue
		}
		c.snapshot(rawdata.TypeRelatedContent, res)

		var records []domain.RelatedContent
		switch {
		case len(res.RelatedContent) > 0:
			records = normalize.RelatedItems(res.RelatedContent)
		case len(res.ImagesResults) > 0:
			records = normalize.RelatedFromImages(res.ImagesResults)
		default:
			c.log.Info("no results found in related content url", logger.String("url", u))
			continue
		}

		n, insErr := c.store.InsertRelatedContent(ctx, records)
		if insErr != nil {
			c.log.Error("related content insert failed",
				logger.String("url", u),
				logger.Error(insErr))
			continue
		}
		c.summary.RelatedContent += n
	}

	return nil
}

func (c *Collector) collectScraperData(ctx context.Context) error {
	if c.scraper == nil {
		return fmt.Errorf("external scrape requested but no scraper client configured")
	}

	input := apify.RunInput{
		ResultsPerPage:        100,
		ShouldDownloadVideos:  c.cfg.ScrapeDownloadVideos,
		ShouldDownloadCovers:  true,
		ShouldDownloadAvatars: true,
		OldestPostDate:        c.cfg.OldestPostDate,
		NewestPostDate:        c.cfg.NewestPostDate,
	}

	var kind domain.Kind
	var provenance, resultType string
	switch {
	case c.cfg.Query.User != "":
		input.Profiles = []string{c.cfg.Query.CleanUser()}
		input.ProfileScrapeSections = []string{"videos"}
		input.ProfileSorting = "latest"
		kind = domain.KindScraperProfile
		provenance = c.cfg.Query.CleanUser()
		resultType = rawdata.TypeScraperProfile
	case c.cfg.Query.Tag != "":
		input.Hashtags = []string{c.cfg.Query.CleanTag()}
		kind = domain.KindScraperHashtag
		provenance = c.cfg.Query.CleanTag()
		resultType = rawdata.TypeScraperHashtag
	default:
		return fmt.Errorf("external scrape needs a user or a tag target")
	}

	items, err := c.scraper.RunActor(ctx, input)
	if err != nil {
		return fmt.Errorf("actor run: %w", err)
	}
	c.snapshot(resultType, items)

	records, errs := normalize.ScraperVideos(items, provenance)
	c.reportItemErrors("external_scrape", errs)

	n, insErr := c.store.InsertScraperVideos(ctx, kind, records)
	if insErr != nil {
		return insErr
	}
	c.summary.ScraperVideos += n

	return nil
}

func (c *Collector) export(ctx context.Context) error {
	return c.store.ExportCSV(ctx, c.cfg.OutputDir)
}
