package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lengau/craft-application/internal/branding"
	"github.com/lengau/craft-application/internal/config"
	"github.com/lengau/craft-application/internal/logging"
	"github.com/lengau/craft-application/internal/manifest"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitNotFound = 2
	ExitInternal = 70
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	manifestFlag  string
	logLevelFlag  string
	logFormatFlag string

	logger = logging.Nop()
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestFlag, "file", "f", "", "Manifest file to read (default from config, then "+branding.ManifestFile()+")")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: pretty or json")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` loads and validates craft project manifests, reporting every
problem in the file at once.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()

		level := logLevelFlag
		if level == "" {
			level = config.Get(config.KeyLogLevel)
		}
		format := logFormatFlag
		if format == "" {
			format = config.Get(config.KeyLogFormat)
		}
		logger = logging.New(logging.Options{
			Level:  level,
			Format: format,
			Output: cmd.ErrOrStderr(),
		})
	},
}

// exitError carries a user-facing message and the process exit code for it.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) Unwrap() error { return e.err }

// Execute runs the root command with build info injected via ldflags and
// returns the process exit code.
func Execute(version, commit, date string) int {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(stderr, err.Error())
	return exitCode(err)
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitFailure
}

// manifestPath resolves the manifest to operate on: an explicit argument,
// then --file, then the configured default. A directory argument refers to
// the default file name inside it.
func manifestPath(args []string) string {
	fileName := config.ManifestFile()

	path := manifestFlag
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fileName
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, fileName)
	}
	return path
}

// loadManifest reads and validates the manifest at path, translating load
// failures into exit errors.
func loadManifest(path string) (*manifest.Manifest, error) {
	loader := manifest.NewLoader(manifest.WithLogger(logging.WithComponent(logger, "manifest")))

	logger.Debug().Str("path", path).Msg("resolved manifest path")
	m, err := loader.FromFile(path)
	if err == nil {
		return m, nil
	}

	if errors.Is(err, manifest.ErrFileMissing) {
		return nil, &exitError{
			code: ExitNotFound,
			msg: fmt.Sprintf("Could not find project file '%s'\nRun '%s init' to create one.",
				path, branding.CLIName()),
			err: err,
		}
	}
	return nil, &exitError{code: ExitFailure, msg: err.Error(), err: err}
}
