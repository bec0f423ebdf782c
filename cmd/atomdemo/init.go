package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/atom/internal/config"
	apperrors "github.com/vango-dev/atom/internal/errors"
)

func initCmd(flags *globalFlags) *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write atomdemo.json (or atomdemo.yaml with --format=yaml) with the
default settings into --dir.

Examples:
  atomdemo init
  atomdemo init --format=yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			switch format {
			case "json":
				name = config.ConfigFileName
			case "yaml":
				name = "atomdemo.yaml"
			default:
				return apperrors.Newf(apperrors.CategoryCLI, "unknown format %q", format).
					WithSuggestion("Use --format=json or --format=yaml")
			}
			path := filepath.Join(flags.dir, name)

			if _, err := os.Stat(path); err == nil && !force {
				return apperrors.Newf(apperrors.CategoryCLI, "%s already exists", path).
					WithSuggestion("Use --force to overwrite it")
			}
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "File format: json or yaml")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}
