// Package collect implements the collect command: one full collection run.
package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/tikspyder/cmd/common"
	"github.com/jonesrussell/tikspyder/internal/collector"
	"github.com/jonesrussell/tikspyder/internal/config"
	"github.com/jonesrussell/tikspyder/internal/query"
)

// CandidateLinksFileName is where the not-yet-downloaded links are written.
const CandidateLinksFileName = "candidate_links.txt"

// Command returns the collect command.
func Command() *cobra.Command {
	var (
		term           string
		user           string
		tag            string
		before         string
		after          string
		depth          int
		includeRelated bool
		output         string

		scrape         bool
		scrapeVideos   bool
		oldestPostDate string
		newestPostDate string
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a collection pipeline pass",
		Long: `Runs the collection pipeline: organic search results, image results,
related content, the optional Apify scrape, then CSV export. Prints the
candidate links still awaiting download and writes them next to the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			if output == "" {
				output = filepath.Join("tikspyder-data", fmt.Sprintf("%d", time.Now().Unix()))
			}
			if depth <= 0 {
				depth = config.DefaultDepth
			}

			opts := common.CollectOptions{
				Query: query.Params{
					Term:   term,
					User:   user,
					Tag:    tag,
					Before: before,
					After:  after,
				},
				Depth:                depth,
				IncludeRelated:       includeRelated,
				OutputDir:            output,
				Scrape:               scrape,
				ScrapeDownloadVideos: scrapeVideos,
				OldestPostDate:       oldestPostDate,
				NewestPostDate:       newestPostDate,
			}

			summary, err := common.RunCollection(cmd.Context(), deps, opts)
			if err != nil {
				return err
			}

			printSummary(summary)

			if writeErr := writeCandidateLinks(output, summary.CandidateLinks); writeErr != nil {
				return writeErr
			}
			fmt.Printf("\n%d candidate links written to %s\n",
				len(summary.CandidateLinks),
				filepath.Join(config.SanitizeOutput(output), CandidateLinksFileName))

			return nil
		},
	}

	cmd.Flags().StringVar(&term, "q", "", "search term or phrase")
	cmd.Flags().StringVar(&user, "user", "", "TikTok user to search videos from")
	cmd.Flags().StringVar(&tag, "tag", "", "TikTok tag to search videos from")
	cmd.Flags().StringVar(&before, "before", "", "only posts published before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&after, "after", "", "only posts published after this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&depth, "depth", config.DefaultDepth, "how many related-content links to follow")
	cmd.Flags().BoolVar(&includeRelated, "include-related", false,
		"include author-scoped related-content links in the candidate list")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"output directory (default tikspyder-data/<timestamp>)")
	cmd.Flags().BoolVar(&scrape, "apify", false, "also run the Apify TikTok scraper")
	cmd.Flags().BoolVar(&scrapeVideos, "scrape-videos", false,
		"ask the scraper to download video sidecars")
	cmd.Flags().StringVar(&oldestPostDate, "oldest-post-date", "",
		"scraper: skip posts older than this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&newestPostDate, "newest-post-date", "",
		"scraper: skip posts newer than this date (YYYY-MM-DD)")

	return cmd
}

func printSummary(summary *collector.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Stage", "Records"})
	t.AppendRows([]table.Row{
		{"search results", summary.SearchResults},
		{"image results", summary.ImageResults},
		{"related content", summary.RelatedContent},
		{"scraper videos", summary.ScraperVideos},
	})
	t.AppendFooter(table.Row{"candidate links", len(summary.CandidateLinks)})
	t.Render()
}

func writeCandidateLinks(outputDir string, links []string) error {
	path := filepath.Join(config.SanitizeOutput(outputDir), CandidateLinksFileName)

	var b strings.Builder
	for _, link := range links {
		b.WriteString(link)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write candidate links: %w", err)
	}
	return nil
}
