// Package cmd implements the command-line interface for TikSpyder.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/tikspyder/cmd/collect"
	"github.com/jonesrussell/tikspyder/cmd/export"
	"github.com/jonesrussell/tikspyder/cmd/links"
	"github.com/jonesrussell/tikspyder/cmd/schedule"
	"github.com/jonesrussell/tikspyder/internal/config"
)

var (
	cfgFile string

	rootCmd *cobra.Command
)

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "tikspyder",
		Short: "TikTok OSINT collection pipeline",
		Long: `Collects publicly indexed TikTok content metadata through SerpAPI,
optionally enriches it with the Apify TikTok scraper, and persists normalized
records into a local SQLite store for incremental, resumable collection.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return fmt.Errorf("initialize configuration: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tikspyder version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(collect.Command())
	rootCmd.AddCommand(export.Command())
	rootCmd.AddCommand(links.Command())
	rootCmd.AddCommand(schedule.Command())
}

// initConfig reads the config file and environment variables. It runs from
// PersistentPreRunE, after cobra has parsed the flags, so --config and
// --debug are already populated.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// .env is optional; credentials usually arrive through it.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: config file not loaded: %v\n", err)
		}
	}

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("bind debug flag: %w", err)
	}

	return nil
}
