package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimcheck/internal/db"
	"github.com/gyeh/claimcheck/internal/exitcode"
	"github.com/gyeh/claimcheck/internal/logging"
	"github.com/gyeh/claimcheck/internal/model"
	"github.com/gyeh/claimcheck/internal/store"
	"github.com/gyeh/claimcheck/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a claim JSON document against the rule store",
	RunE:  runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&cfg.ClaimFile, "claim", "", "Path to a claim JSON file, or - for stdin (required)")
	f.StringVar(&cfg.ProviderType, "provider-type", "", "Default provider type when the claim carries none")
	_ = validateCmd.MarkFlagRequired("claim")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	var data []byte
	var err error
	if cfg.ClaimFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(cfg.ClaimFile)
	}
	if err != nil {
		log.Error().Err(err).Msg("read claim file failed")
		os.Exit(exitcode.UsageError)
	}

	var claim model.ClaimInput
	if err := json.Unmarshal(data, &claim); err != nil {
		log.Error().Err(err).Msg("claim JSON invalid")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	validator := validate.New(store.NewPostgres(pool))
	result, err := validator.Validate(ctx, &claim, cfg.ProviderType)
	if err != nil {
		log.Error().Err(err).Msg("validation failed")
		os.Exit(exitcode.ValidationError)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))

	if !result.IsValid {
		os.Exit(exitcode.ValidationError)
	}
	return nil
}
