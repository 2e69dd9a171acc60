// Package common provides shared dependency construction for commands.
package common

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/tikspyder/internal/config"
	"github.com/jonesrussell/tikspyder/internal/logger"
)

// Deps bundles the dependencies every command needs.
type Deps struct {
	Config *config.Config
	Logger logger.Logger
}

// NewCommandDeps loads configuration and builds the logger.
func NewCommandDeps() (*Deps, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Deps{Config: cfg, Logger: log}, nil
}
