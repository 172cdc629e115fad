package cli

import (
	"errors"
	"fmt"

	"github.com/lengau/craft-application/internal/manifest"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(baseCmd)
}

var baseCmd = &cobra.Command{
	Use:   "base [path]",
	Short: "Print the base the project builds on",
	Long:  `Print the effective build base of a project: build_base when set, base otherwise.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest(manifestPath(args))
		if err != nil {
			return err
		}

		base, err := m.EffectiveBase()
		if errors.Is(err, manifest.ErrUndeterminedBase) {
			return &exitError{
				code: ExitInternal,
				msg:  fmt.Sprintf("internal error: %v", err),
				err:  err,
			}
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), base)
		return nil
	},
}
