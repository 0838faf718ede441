package app

import (
	"log/slog"

	"github.com/heartmarshall/cardgen/internal/config"
)

// Bootstrap loads configuration and initializes the default logger. All
// cardgen commands start here. An empty configPath falls back to the
// CONFIG_PATH environment variable and then to ./config.yaml.
func Bootstrap(configPath string) (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	logger := NewLogger(cfg.Log)

	logger.Debug("configuration loaded",
		slog.String("version", BuildVersion()),
		slog.String("collection", cfg.CollectionPath),
		slog.String("log_level", cfg.Log.Level),
	)

	return cfg, logger, nil
}
