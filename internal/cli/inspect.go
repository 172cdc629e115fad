package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var inspectOutput string

func init() {
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "yaml", "Output format: yaml or json")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Print the normalized manifest",
	Long: `Load a project manifest and print it back with every known field present.
Absent optional fields are printed as null.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest(manifestPath(args))
		if err != nil {
			return err
		}

		var out []byte
		switch inspectOutput {
		case "yaml":
			out, err = yaml.Marshal(m.Marshal())
		case "json":
			out, err = json.MarshalIndent(m.Marshal(), "", "  ")
			out = append(out, '\n')
		default:
			return fmt.Errorf("unknown output format %q (want yaml or json)", inspectOutput)
		}
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
