package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var requireSemver bool

func init() {
	validateCmd.Flags().BoolVar(&requireSemver, "require-semver", false, "Also require the version to be a semantic version")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a project manifest",
	Long: `Load a project manifest and report every problem found in it.

The path may be a manifest file or a directory containing one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := manifestPath(args)
		m, err := loadManifest(path)
		if err != nil {
			return err
		}

		if requireSemver {
			if _, err := m.SemanticVersion(); err != nil {
				return &exitError{
					code: ExitFailure,
					msg:  fmt.Sprintf("%s: version %q is not a semantic version", path, m.Version()),
					err:  err,
				}
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", path)
		return nil
	},
}
