package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteAllYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a record by identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var deleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Remove every record in the collection",
	Args:  cobra.NoArgs,
	RunE:  runDeleteAll,
}

func init() {
	deleteAllCmd.Flags().BoolVar(&deleteAllYes, "yes", false, "confirm deleting every record")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(deleteAllCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	removed, err := repo.DeleteByID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if !removed {
		return fmt.Errorf("no record with %s %q", cfg.KeyField, args[0])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

func runDeleteAll(cmd *cobra.Command, args []string) error {
	if !deleteAllYes {
		return fmt.Errorf("refusing to delete every record without --yes")
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted all records from %s/%s\n", cfg.Container, cfg.objectName())
	return nil
}
