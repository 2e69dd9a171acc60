// Package links implements the links command group for working with the
// download ledger of a run database.
package links

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/tikspyder/cmd/common"
	"github.com/jonesrussell/tikspyder/internal/config"
	"github.com/jonesrussell/tikspyder/internal/database"
)

// Command returns the links command with its subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Inspect and update the download ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(listCommand())
	cmd.AddCommand(markCommand())
	cmd.AddCommand(syncCommand())

	return cmd
}

func listCommand() *cobra.Command {
	var (
		output         string
		includeRelated bool
		all            bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidate links not yet downloaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, store, closeStore, err := openLinksStore(cmd, output)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()
			defer func() { _ = deps.Logger.Sync() }()

			var linksOut []string
			if all {
				linksOut, err = store.ListAllLinks(cmd.Context())
			} else {
				linksOut, err = store.ListCandidateLinks(cmd.Context(), database.CandidateOptions{
					IncludeRelated: includeRelated,
					DownloadsDir:   deps.Config.Output.DownloadsDir,
				})
			}
			if err != nil {
				return fmt.Errorf("list links: %w", err)
			}

			for _, link := range linksOut {
				fmt.Println(link)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "run directory holding the database")
	cmd.Flags().BoolVar(&includeRelated, "include-related", false,
		"include author-scoped related-content links")
	cmd.Flags().BoolVar(&all, "all", false, "list every known link, downloaded or not")

	return cmd
}

func markCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "mark <link>...",
		Short: "Mark links as downloaded",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, store, closeStore, err := openLinksStore(cmd, output)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()
			defer func() { _ = deps.Logger.Sync() }()

			for _, link := range args {
				if err := store.MarkDownloaded(cmd.Context(), link); err != nil {
					return fmt.Errorf("mark %s: %w", link, err)
				}
			}

			fmt.Printf("%d links marked as downloaded\n", len(args))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "run directory holding the database")

	return cmd
}

func syncCommand() *cobra.Command {
	var (
		output string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import downloaded post ids from a media directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, store, closeStore, err := openLinksStore(cmd, output)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()
			defer func() { _ = deps.Logger.Sync() }()

			syncDir := dir
			if syncDir == "" {
				syncDir = deps.Config.Output.DownloadsDir
			}
			if syncDir == "" {
				return fmt.Errorf("no downloads directory given; use --dir or set output.downloads_dir")
			}

			added, err := store.SyncDownloadsDir(cmd.Context(), syncDir)
			if err != nil {
				return fmt.Errorf("sync downloads directory: %w", err)
			}

			fmt.Printf("%d new downloaded ids imported from %s\n", added, syncDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "run directory holding the database")
	cmd.Flags().StringVar(&dir, "dir", "", "downloaded-media directory to scan")

	return cmd
}

func openLinksStore(cmd *cobra.Command, output string) (*common.Deps, *database.Store, func() error, error) {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize dependencies: %w", err)
	}

	if output == "" {
		return nil, nil, nil, fmt.Errorf("--output is required")
	}

	store, closeStore, err := common.OpenStore(cmd.Context(), deps, config.SanitizeOutput(output))
	if err != nil {
		return nil, nil, nil, err
	}

	return deps, store, closeStore, nil
}
