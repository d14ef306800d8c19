package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the local staging copy from the mirror document",
	Long: "Download the mirror document into the staging directory and report\n" +
		"what it holds.",
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	client, err := newBlobClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	object := cfg.objectName()
	data, err := client.Fetch(ctx, cfg.Container, object)
	if err != nil {
		if blob.IsNotFound(err) {
			return fmt.Errorf("mirror document %s/%s does not exist", cfg.Container, object)
		}
		return fmt.Errorf("failed to fetch mirror document: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("mirror document is not a JSON array: %w", err)
	}

	staging := cfg.StagingDir
	if staging == "" {
		staging = repository.DefaultStagingDir
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	dest := filepath.Join(staging, object)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write staging copy: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "synced %d records to %s\n", len(records), dest)
	return nil
}
