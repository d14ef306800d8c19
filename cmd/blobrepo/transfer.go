package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
	"github.com/carlfranklin/BlobRepositoryDemo/internal/validation"
)

var transferQuiet bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file> [object]",
	Short: "Upload a file as an object",
	Long: "Upload a local file to the configured container in blocks, with a\n" +
		"progress meter on stderr. The object name defaults to the file name.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

var downloadCmd = &cobra.Command{
	Use:   "download <object> [file]",
	Short: "Download an object to a file",
	Long: "Download an object from the configured container. The file name\n" +
		"defaults to the object name; an existing file is overwritten.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&transferQuiet, "quiet", "q", false, "suppress the progress meter")
	downloadCmd.Flags().BoolVarP(&transferQuiet, "quiet", "q", false, "suppress the progress meter")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	source := args[0]
	object := filepath.Base(source)
	if len(args) == 2 {
		object = args[1]
	}
	if err := validation.ValidateObjectName(object); err != nil {
		return fmt.Errorf("invalid object name: %w", err)
	}

	var opts []blob.ClientOption
	if !transferQuiet {
		opts = append(opts, blob.WithProgress(progressMeter(cmd.ErrOrStderr())))
	}
	client, err := newBlobClient(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}

	if err := client.Upload(ctx, cfg.Container, source, object); err != nil {
		return fmt.Errorf("failed to upload %s: %w", source, err)
	}
	if !transferQuiet {
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s to %s/%s\n", source, cfg.Container, object)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	object := args[0]
	dest := filepath.Base(object)
	if len(args) == 2 {
		dest = args[1]
	}

	client, err := newBlobClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := client.Download(ctx, cfg.Container, object, dest); err != nil {
		if blob.IsNotFound(err) {
			return fmt.Errorf("object %s/%s does not exist", cfg.Container, object)
		}
		return fmt.Errorf("failed to download %s: %w", object, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s/%s to %s\n", cfg.Container, object, dest)
	return nil
}

// progressMeter renders cumulative block progress on one line.
func progressMeter(w io.Writer) blob.ProgressFunc {
	return func(p blob.Progress) {
		if p.Total <= 0 {
			fmt.Fprintf(w, "\r%d bytes", p.Sent)
			return
		}
		fmt.Fprintf(w, "\r%3.0f%% (%d/%d bytes)", float64(p.Sent)/float64(p.Total)*100, p.Sent, p.Total)
	}
}
