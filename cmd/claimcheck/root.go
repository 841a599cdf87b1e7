package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimcheck/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "claimcheck",
	Short: "NCCI coding-compliance rule engine",
	Long:  "Ingests CMS NCCI edit datasets (PTP, MUE, AOC) into Postgres and validates candidate claims against them.",
}

var configFile string

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVar(&cfg.Verbose, "verbose", false, "Enable per-candidate debug logging")
	pf.StringVar(&configFile, "config", "", "Optional YAML config file (categories, source URL overrides)")
}
