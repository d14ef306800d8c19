package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single record by identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	rec, err := repo.GetByID(ctx, args[0])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("no record with %s %q", cfg.KeyField, args[0])
		}
		return fmt.Errorf("failed to get record: %w", err)
	}
	return renderRecord(cmd.OutOrStdout(), rec, formatFlag, cfg.KeyField)
}
