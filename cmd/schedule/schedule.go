// Package schedule implements the schedule command: periodic collection runs
// driven by a cron expression.
package schedule

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/tikspyder/cmd/common"
	"github.com/jonesrussell/tikspyder/internal/config"
	"github.com/jonesrussell/tikspyder/internal/logger"
	"github.com/jonesrussell/tikspyder/internal/query"
)

// Command returns the schedule command.
func Command() *cobra.Command {
	var (
		spec           string
		term           string
		user           string
		tag            string
		depth          int
		includeRelated bool
		output         string
		scrape         bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run collection on a cron schedule",
		Long: `Runs the collection pipeline periodically until interrupted. Each run
writes into its own timestamped directory under the output root, so runs
stay independent and resumable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			if output == "" {
				output = "tikspyder-data"
			}
			if depth <= 0 {
				depth = config.DefaultDepth
			}

			params := query.Params{Term: term, User: user, Tag: tag}
			if err := params.Validate(); err != nil {
				return err
			}

			runOnce := func() {
				runDir := filepath.Join(output, fmt.Sprintf("%d", time.Now().Unix()))
				deps.Logger.Info("scheduled collection run starting",
					logger.String("output", runDir))

				summary, runErr := common.RunCollection(cmd.Context(), deps, common.CollectOptions{
					Query:          params,
					Depth:          depth,
					IncludeRelated: includeRelated,
					OutputDir:      runDir,
					Scrape:         scrape,
				})
				if runErr != nil {
					deps.Logger.Error("scheduled collection run failed", logger.Error(runErr))
					return
				}

				deps.Logger.Info("scheduled collection run finished",
					logger.Int("search_results", summary.SearchResults),
					logger.Int("image_results", summary.ImageResults),
					logger.Int("related_content", summary.RelatedContent),
					logger.Int("scraper_videos", summary.ScraperVideos),
					logger.Int("candidate_links", len(summary.CandidateLinks)))
			}

			c := cron.New()
			if _, err := c.AddFunc(spec, runOnce); err != nil {
				return fmt.Errorf("parse cron expression %q: %w", spec, err)
			}

			deps.Logger.Info("scheduler started", logger.String("cron", spec))
			c.Start()

			<-cmd.Context().Done()

			deps.Logger.Info("scheduler stopping")
			stopCtx := c.Stop()
			<-stopCtx.Done()

			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "@hourly", "cron expression for run cadence")
	cmd.Flags().StringVar(&term, "q", "", "search term or phrase")
	cmd.Flags().StringVar(&user, "user", "", "TikTok user to search videos from")
	cmd.Flags().StringVar(&tag, "tag", "", "TikTok tag to search videos from")
	cmd.Flags().IntVar(&depth, "depth", config.DefaultDepth, "how many related-content links to follow")
	cmd.Flags().BoolVar(&includeRelated, "include-related", false,
		"include author-scoped related-content links in the candidate list")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"output root for per-run directories (default tikspyder-data)")
	cmd.Flags().BoolVar(&scrape, "apify", false, "also run the Apify TikTok scraper")

	return cmd
}
