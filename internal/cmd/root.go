// Package cmd provides the uni20 CLI command implementations.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	uni20 "github.com/uni20/uni20-go"
	"github.com/uni20/uni20-go/internal/config"
	"github.com/uni20/uni20-go/internal/output"
)

// Exit codes. "Bindings not configured" gets its own code so CI can tell
// "nothing to probe" apart from a real failure, mirroring the skipped-test
// semantics of the Go and Python test harnesses.
const (
	ExitFailure       = 1
	ExitNotConfigured = 2
)

var (
	// Global flags
	bindingsDirFlag string
	pythonFlag      string
	timeoutFlag     string
	configFlag      string
	verboseFlag     bool

	// Resolved configuration (loaded during PersistentPreRunE)
	cfg      *config.Config
	cfgViper *viper.Viper
)

// NewRootCmd creates the root command for the uni20 CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "uni20",
		Short: "Probe and validate the uni20 Python bindings",
		Long: `uni20 is the Go harness for the uni20 Python bindings.

It launches a Python probe subprocess against a bindings directory,
invokes the bindings' greet() and buildinfo() entry points, and
validates the BuildInfo contract.

The bindings directory is resolved from the positional argument,
the --bindings-dir flag, or the UNI20_BINDINGS_DIR environment
variable. When none is supplied, probing commands exit with code 2
("not configured") instead of failing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&bindingsDirFlag, "bindings-dir", "", "Path to the uni20 bindings directory (env: UNI20_BINDINGS_DIR)")
	rootCmd.PersistentFlags().StringVar(&pythonFlag, "python", "", "Python interpreter to launch the probe with (env: UNI20_PYTHON)")
	rootCmd.PersistentFlags().StringVar(&timeoutFlag, "timeout", "", "Timeout per probe call, e.g. 30s (env: UNI20_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: UNI20_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewBuildinfoCmd())
	rootCmd.AddCommand(NewGreetCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals loads configuration and sets up logging.
func initializeGlobals(cmd *cobra.Command) error {
	loaded, v, err := config.Load(config.LoaderOptions{ConfigFile: configFlag})
	if err != nil {
		return err
	}

	// Flags override config file and environment.
	if cmd.Flags().Changed("bindings-dir") {
		v.Set("bindings_dir", bindingsDirFlag)
	}
	if cmd.Flags().Changed("python") {
		v.Set("python", pythonFlag)
	}
	if cmd.Flags().Changed("timeout") {
		v.Set("timeout", timeoutFlag)
	}
	if cmd.Flags().Changed("verbose") {
		v.Set("verbose", verboseFlag)
	}

	loaded, err = config.Decode(v)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	cfgViper = v

	output.SetupLogging(cfg.Verbose)
	output.Debug("configuration resolved",
		"bindings_dir", cfg.BindingsDir,
		"python", cfg.Python,
		"timeout", cfg.Timeout,
	)

	return nil
}

// ExitCode maps an error returned from Execute to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, uni20.ErrBindingsNotConfigured) {
		return ExitNotConfigured
	}
	return ExitFailure
}

// openProbe resolves the interpreter and the bindings directory, then
// launches the probe. explicitDir is the positional argument, which takes
// precedence over configuration.
func openProbe(explicitDir string) (*uni20.Probe, error) {
	dir := explicitDir
	if dir == "" {
		dir = cfg.BindingsDir
	}

	bindings, err := uni20.ResolveBindings(dir, nil)
	if err != nil {
		return nil, err
	}
	output.Debug("bindings resolved", "dir", bindings.Dir, "artifact", bindings.Artifact)

	var env *uni20.PythonEnvironment
	if cfg.Python != "" {
		env, err = uni20.NewEnvironmentFromExecutable(cfg.Python)
	} else {
		env, err = uni20.NewEnvironmentFromSystem()
	}
	if err != nil {
		return nil, fmt.Errorf("no usable Python interpreter: %w", err)
	}
	output.Debug("interpreter selected", "python", env.PythonPath, "version", env.PythonVersion.String())

	probe, err := env.NewProbe(bindings, nil)
	if err != nil {
		return nil, err
	}
	output.Debug("probe ready", "codec", probe.Codec)
	return probe, nil
}

// callContext returns the context bounding a single probe call.
func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.Timeout)
}
