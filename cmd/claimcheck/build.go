package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/claimcheck/internal/db"
	"github.com/gyeh/claimcheck/internal/exitcode"
	"github.com/gyeh/claimcheck/internal/ingest"
	"github.com/gyeh/claimcheck/internal/logging"
	"github.com/gyeh/claimcheck/internal/store"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Discover, download, and ingest the latest NCCI datasets",
	RunE:  runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringSliceVar(&cfg.Categories, "categories", nil, "Subset of dataset categories (default: all)")
	f.StringVar(&cfg.OutDir, "out-dir", "artifacts", "Directory for downloaded artifacts")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Locate artifacts only; no download or ingest")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat).Level(zerolog.InfoLevel)
	if cfg.Verbose {
		log = log.Level(zerolog.DebugLevel)
	}
	ctx := context.Background()

	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			log.Error().Err(err).Msg("config file invalid")
			os.Exit(exitcode.UsageError)
		}
	}
	cats, err := cfg.ResolveCategories()
	if err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	var repo store.RuleRepository
	if cfg.DryRun {
		repo = store.NewMemory()
	} else {
		if err := cfg.ValidateWithDSN(); err != nil {
			log.Error().Err(err).Msg("config validation failed")
			os.Exit(exitcode.UsageError)
		}
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()
		repo = store.NewPostgres(pool)
	}

	summary, err := ingest.Run(ctx, repo, log, cats, ingest.Options{
		OutDir: cfg.OutDir,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		log.Error().Err(err).Msg("build failed")
		os.Exit(exitcode.IngestError)
	}

	for key, path := range summary.ArtifactPaths() {
		fmt.Printf("%-20s %s\n", key, path)
	}
	if failed := summary.Failed(); len(failed) > 0 {
		for _, r := range failed {
			log.Error().Err(r.Err).Str("category", r.CategoryKey).Msg("category failed")
		}
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}
