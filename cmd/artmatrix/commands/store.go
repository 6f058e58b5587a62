package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/artmatrix/internal/config"
	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/dyluth/artmatrix/pkg/catalog"
	"github.com/redis/go-redis/v9"
)

// storeFlags holds the persistent flags shared by every subcommand.
// Flags win over the environment, which wins over the config file.
var storeFlags struct {
	configPath string
	driver     string
	redisURL   string
	sqlitePath string
	collection string
}

// loadConfig reads the config file (or defaults) and layers the flags on top.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if storeFlags.configPath != "" {
		cfg, err = config.Load(storeFlags.configPath)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath)
	}
	if err != nil {
		return nil, printer.Error(
			"failed to load configuration",
			err.Error(),
			[]string{"Check the file passed to --config (or ./artmatrix.yml)"},
		)
	}

	if storeFlags.driver != "" {
		cfg.Store.Driver = storeFlags.driver
	}
	if storeFlags.redisURL != "" {
		cfg.Store.RedisURL = storeFlags.redisURL
	}
	if storeFlags.sqlitePath != "" {
		cfg.Store.SQLitePath = storeFlags.sqlitePath
	}
	if storeFlags.collection != "" {
		cfg.Store.Collection = storeFlags.collection
	}

	if err := cfg.Validate(); err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{"Valid store drivers: redis, sqlite"},
		)
	}
	return cfg, nil
}

// openStore connects to the configured store and verifies it is reachable.
func openStore(ctx context.Context, cfg *config.Config) (catalog.Store, error) {
	var (
		store  catalog.Store
		target string
	)

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err := catalog.OpenSQLite(cfg.Store.SQLitePath, cfg.Store.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		store, target = s, cfg.Store.SQLitePath

	default:
		opts, err := redis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			return nil, printer.Error(
				"invalid Redis URL",
				fmt.Sprintf("Could not parse %q: %v", cfg.Store.RedisURL, err),
				[]string{"Use the form redis://host:port/db"},
			)
		}
		c, err := catalog.NewClient(opts, cfg.Store.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog client: %w", err)
		}
		store, target = c, cfg.Store.RedisURL
	}

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, printer.ErrorWithContext(
			"store connection failed",
			fmt.Sprintf("Could not reach the %s store.", cfg.Store.Driver),
			map[string]string{
				"target": target,
				"error":  err.Error(),
			},
			[]string{
				"Check the store is running and the address is correct",
				"Override with --store, --redis-url or --sqlite-path",
			},
		)
	}

	return store, nil
}

// setup is loadConfig followed by openStore.
func setup(ctx context.Context) (*config.Config, catalog.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}
