package common

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jonesrussell/tikspyder/internal/apify"
	"github.com/jonesrussell/tikspyder/internal/collector"
	"github.com/jonesrussell/tikspyder/internal/config"
	"github.com/jonesrussell/tikspyder/internal/database"
	"github.com/jonesrussell/tikspyder/internal/logger"
	"github.com/jonesrussell/tikspyder/internal/query"
	"github.com/jonesrussell/tikspyder/internal/rawdata"
	"github.com/jonesrussell/tikspyder/internal/serpapi"
)

// DatabaseFileName is the SQLite file created under the output directory.
const DatabaseFileName = "database.sql"

// CollectOptions are the per-run inputs assembled from command flags.
type CollectOptions struct {
	Query                query.Params
	Depth                int
	IncludeRelated       bool
	OutputDir            string
	Scrape               bool
	ScrapeDownloadVideos bool
	OldestPostDate       string
	NewestPostDate       string
}

// OpenStore opens the run database under outputDir and returns a store with
// tables created. The caller owns the returned close function.
func OpenStore(ctx context.Context, deps *Deps, outputDir string) (*database.Store, func() error, error) {
	db, err := database.Open(filepath.Join(outputDir, DatabaseFileName))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	store := database.NewStore(db, deps.Logger,
		database.RelatedPolicy(deps.Config.Store.RelatedPolicy))
	if err := store.CreateTables(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create tables: %w", err)
	}

	return store, db.Close, nil
}

// RunCollection wires the clients, store and collector for one run and
// executes the pipeline.
func RunCollection(ctx context.Context, deps *Deps, opts CollectOptions) (*collector.Summary, error) {
	if err := deps.Config.ValidateCollect(opts.Scrape); err != nil {
		return nil, err
	}

	outputDir := config.SanitizeOutput(opts.OutputDir)

	store, closeStore, err := OpenStore(ctx, deps, outputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			deps.Logger.Warn("close store", logger.Error(closeErr))
		}
	}()

	// Import any legacy downloaded-media state before computing candidates.
	if dir := deps.Config.Output.DownloadsDir; dir != "" {
		added, syncErr := store.SyncDownloadsDir(ctx, dir)
		if syncErr != nil {
			deps.Logger.Warn("sync downloads directory", logger.Error(syncErr))
		} else if added > 0 {
			deps.Logger.Info("imported downloaded ids from directory",
				logger.Int("count", added),
				logger.String("dir", dir))
		}
	}

	serpClient := serpapi.NewClient(serpapi.ClientConfig{
		APIKey:    deps.Config.SerpAPI.APIKey,
		PageDelay: deps.Config.SerpAPI.PageDelay,
		Logger:    deps.Logger,
	})

	var scrapeClient *apify.Client
	if opts.Scrape {
		scrapeClient = apify.NewClient(apify.ClientConfig{
			Token:        deps.Config.Apify.Token,
			ActorID:      deps.Config.Apify.ActorID,
			RunTimeout:   deps.Config.Apify.RunTimeout,
			PollInterval: deps.Config.Apify.PollInterval,
			Logger:       deps.Logger,
		})
	}

	col := collector.New(
		collector.Config{
			Query: opts.Query,
			Search: serpapi.SearchParams{
				GoogleDomain: deps.Config.SerpAPI.GoogleDomain,
				GL:           deps.Config.SerpAPI.GL,
				HL:           deps.Config.SerpAPI.HL,
				CR:           deps.Config.SerpAPI.CR,
				LR:           deps.Config.SerpAPI.LR,
				Safe:         deps.Config.SerpAPI.Safe,
			},
			Depth:                opts.Depth,
			IncludeRelated:       opts.IncludeRelated,
			OutputDir:            outputDir,
			DownloadsDir:         deps.Config.Output.DownloadsDir,
			Scrape:               opts.Scrape,
			ScrapeDownloadVideos: opts.ScrapeDownloadVideos,
			OldestPostDate:       opts.OldestPostDate,
			NewestPostDate:       opts.NewestPostDate,
		},
		serpClient,
		scrapeClient,
		store,
		rawdata.NewWriter(outputDir),
		deps.Logger,
	)

	return col.Run(ctx)
}
