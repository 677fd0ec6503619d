// Package commands wires the actions into a cobra command tree. Every flag
// falls back to the matching INPUT_* variable so the binary runs unchanged
// as an action step.
package commands

import (
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mbround18/gh-reusable/internal/actions"
)

// App is the state shared by the subcommands.
type App struct {
	// Verbose turns on debug logging
	Verbose bool

	// EnvFile is loaded before the command runs, when it exists
	EnvFile string

	// DryRun prints commands instead of running them
	DryRun bool

	Log *zap.Logger
	Out *actions.Writer
}

// NewRootCommand returns the gh-reusable command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gh-reusable",
		Short:         "Image tagging, docker build and semver steps for GitHub Actions",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return app.setup()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Turns on verbose logging")
	rootCmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", ".env.local", "Env file with local overrides, ignored when missing")
	rootCmd.PersistentFlags().BoolVar(&app.DryRun, "dry-run", false, "Print commands instead of running them")

	rootCmd.AddCommand(
		newFactsCommand(app),
		newBuildCommand(app),
		newSemverCommand(app),
		newGraphQLCommand(app),
	)
	return rootCmd
}

func (a *App) setup() error {
	if a.EnvFile != "" {
		if err := godotenv.Load(a.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "loading %s", a.EnvFile)
		}
	}
	if a.Log == nil {
		log, err := NewLogger(a.Verbose)
		if err != nil {
			return err
		}
		a.Log = log
	}
	if a.Out == nil {
		a.Out = actions.NewWriter(a.Log.Named("actions"))
	}
	return nil
}

// NewLogger builds the console logger. Output goes to stderr so stdout stays
// free for workflow commands.
func NewLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	return log, errors.Wrap(err, "building logger")
}

// stringInput returns the flag when it was set on the command line,
// otherwise the action input of the same name, otherwise def.
func stringInput(cmd *cobra.Command, name, def string) string {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return strings.TrimSpace(f.Value.String())
	}
	return actions.InputOr(name, def)
}

func boolInput(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return f.Value.String() == "true"
	}
	return actions.InputBool(name)
}
