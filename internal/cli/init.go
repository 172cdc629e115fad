package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lengau/craft-application/internal/config"
	"github.com/lengau/craft-application/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	initName    string
	initVersion string
	initBase    string
	initSummary string
	initTitle   string
	initLicense string
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Project name (default: directory name)")
	initCmd.Flags().StringVar(&initVersion, "version", "", "Project version (default 0.1)")
	initCmd.Flags().StringVar(&initBase, "base", "", "Base the project builds on, e.g. ubuntu@24.04")
	initCmd.Flags().StringVar(&initSummary, "summary", "", "One-line project summary")
	initCmd.Flags().StringVar(&initTitle, "title", "", "Human-readable project title")
	initCmd.Flags().StringVar(&initLicense, "license", "", "SPDX license expression")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a starter project manifest",
	Long: `Create a starter project manifest in the given directory (default: current).

The generated file is loaded back immediately and any problems are printed as
warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", dir, err)
		}

		name := initName
		if name == "" {
			name = strings.ToLower(filepath.Base(abs))
		}

		data := scaffold.NewData(name, initBase)
		data.Title = initTitle
		data.License = initLicense
		if initVersion != "" {
			data.Version = initVersion
		}
		if initSummary != "" {
			data.Summary = initSummary
		}

		fileName := config.ManifestFile()

		logger.Debug().Str("dir", abs).Str("name", name).Msg("scaffolding manifest")
		result, err := scaffold.Generate(data, abs, fileName)
		if errors.Is(err, scaffold.ErrExists) {
			return &exitError{code: ExitFailure, msg: err.Error(), err: err}
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created %s\n", result.Path)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "Warning: %s\n", w)
		}
		return nil
	},
}
