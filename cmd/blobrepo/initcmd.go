package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: "Write the effective configuration, defaults plus any environment\n" +
		"overrides, to blobrepo.yaml or the --config path.",
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = "blobrepo.yaml"
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	// Loading against the final path folds in env overrides while the
	// file itself does not exist yet.
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	if err := SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
