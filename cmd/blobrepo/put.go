package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

var putFile string

var putCmd = &cobra.Command{
	Use:   "put [record]",
	Short: "Insert or replace a record",
	Long: "Store a JSON object as a record. A record with the same identity is\n" +
		"replaced in place; a record without the identity field gets a fresh\n" +
		"UUID. The stored identity is printed on stdout.",
	Example: `  blobrepo put '{"id":"1","firstName":"Carl","lastName":"Franklin"}'
  blobrepo put --file member.json
  cat member.json | blobrepo put --file -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringVar(&putFile, "file", "", "read the record from a file, - for stdin")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	data, err := readRecordData(cmd, args)
	if err != nil {
		return err
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("invalid record JSON: %w", err)
	}

	key := recordKey(cfg.KeyField)(rec)
	if key == "" {
		key = uuid.New().String()
		rec[cfg.KeyField] = key
	}

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if _, err := repo.Update(ctx, rec); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to store record: %w", err)
		}
		if _, err := repo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("failed to store record: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}

func readRecordData(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 {
		return []byte(args[0]), nil
	}
	switch putFile {
	case "":
		return nil, fmt.Errorf("provide the record as an argument or with --file")
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	default:
		data, err := os.ReadFile(putFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read record file: %w", err)
		}
		return data, nil
	}
}
