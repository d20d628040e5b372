// Package cli provides the command-line interface for catgallery.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/catgallery/internal/catalog"
	"github.com/raphaelgruber/catgallery/internal/config"
	"github.com/raphaelgruber/catgallery/internal/db"
	"github.com/raphaelgruber/catgallery/internal/favorites"
	"github.com/raphaelgruber/catgallery/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and services, set up in PersistentPreRunE.
	cfg       config.Config
	logger    *slog.Logger
	closeLog  func() error
	collector *metrics.Collector
	api       *catalog.Client
	store     *favorites.Store
	dbClient  *db.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "catgallery",
	Short: "Browse cat images and keep a list of favorites",
	Long: `Catgallery browses The Cat API from the terminal.

Scroll through an endless catalog of cat images, narrow it down by breed,
open an image for breed details and keep your favorites between sessions.
Without a subcommand the interactive browser is started.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
	RunE: runBrowse,
}

// setup loads configuration and wires the services every command shares.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The browser owns the terminal, so logs only go to stderr with --verbose.
	if verbose {
		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	} else {
		logger, closeLog = config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
	}
	slog.SetDefault(logger)

	collector = metrics.NewCollector()
	api = catalog.New(catalog.Config{
		BaseURL:  cfg.APIURL,
		APIKey:   cfg.APIKey,
		PageSize: cfg.PageSize,
		Timeout:  cfg.Timeout,
	}, collector, logger)

	storage, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	store = favorites.NewStore(storage, logger)

	logger.Debug("catgallery started",
		"command", cmd.CommandPath(),
		"storage", cfg.Storage,
		"config_file", cfg.ConfigFile,
	)
	return nil
}

// openStorage returns the favorites backend selected by cfg.Storage.
func openStorage(ctx context.Context) (favorites.Storage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Storage {
	case config.StorageSurrealDB:
		var err error
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := dbClient.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		return db.NewBlobStore(dbClient, cfg.Timeout), nil
	default:
		return favorites.NewFileStorage(cfg.DataDir), nil
	}
}

func teardown() {
	if logger != nil && collector != nil {
		for _, op := range collector.Snapshot().Operations {
			logger.Debug("catalog requests",
				"op", op.Name,
				"count", op.Count,
				"failures", op.Failures,
				"avg_ms", op.AvgTimeMs,
			)
		}
	}
	if dbClient != nil {
		if err := dbClient.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
		dbClient = nil
	}
	if closeLog != nil {
		_ = closeLog()
		closeLog = nil
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also log to stderr")
	addBrowseFlags(rootCmd)

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(breedsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the catgallery version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "catgallery %s\n", Version)
	},
}
