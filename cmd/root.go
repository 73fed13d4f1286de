package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zaguiini/create-sandbox/internal/config"
	"github.com/zaguiini/create-sandbox/internal/errors"
	"github.com/zaguiini/create-sandbox/internal/logging"
	"github.com/zaguiini/create-sandbox/internal/system"
)

var (
	verbose     bool
	jsonOutput  bool
	buildScript string
	configPath  string
	timeout     time.Duration
	noProgress  bool
)

var rootCmd = &cobra.Command{
	Use:   "create-sandbox <source> [directory]",
	Short: "Create a sandbox app linked to a locally developed React package",
	Long: `create-sandbox sets up a freshly generated React app that consumes a
package you are developing, through npm or yarn links.

It will:
  - Clone <source> into [directory] (or reuse it if it already exists)
  - Generate <directory>-sandbox with create-react-app
  - Install and build the package, then install its peer dependencies
    into the sandbox
  - Link the package, and its own copy of react and react-dom, into the
    sandbox so both resolve a single react instance

The package manager is yarn when the package has a yarn.lock, npm otherwise.`,
	Example: `  create-sandbox https://github.com/acme/widget.git
  create-sandbox git@github.com:acme/widget.git my-widget
  create-sandbox ../widget --build-script bundle`,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, logging.Stderr)
	},
	RunE: runCreate,
}

// Execute runs the root command and reports any error to the user.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(err)
	}
	return err
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&buildScript, "build-script", "b", config.DefaultBuildScript, "Package script that builds the source package")
	flags.StringVar(&configPath, "config", "", "Config file (.toml, .yaml or .yml; default $XDG_CONFIG_HOME/create-sandbox/config.toml)")
	flags.DurationVar(&timeout, "timeout", 0, "Time limit for each external command, e.g. 10m (0 disables)")
	flags.BoolVar(&noProgress, "no-progress", false, "Print plain progress lines instead of the interactive view")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig layers flags over the file and environment configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, os.Environ())
	if err != nil {
		return nil, errors.ConfigError("failed to load configuration", err)
	}

	if cmd.Flags().Changed("build-script") {
		cfg.BuildScript = buildScript
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = config.Duration{Duration: timeout}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// reportError prints err, the tail of a failed command's output and the
// remediation hint.
func reportError(err error) {
	if jsonOutput {
		logging.Error("create-sandbox failed",
			"kind", string(errors.KindOf(err)),
			"exitCode", errors.GetExitCode(err),
			"error", err.Error())
	}
	logging.UserError("%s", err.Error())

	var cmdErr *system.CommandError
	if errors.As(err, &cmdErr) {
		if out := strings.TrimSpace(string(cmdErr.Output)); out != "" {
			fmt.Fprintln(logging.Stderr, out)
		}
	}

	if hint := errors.HintOf(err); hint != "" {
		logging.UserHint(hint)
	} else if !errors.As(err, new(*errors.SandboxError)) {
		logging.UserHint(fmt.Sprintf("%s --help", config.AppName))
	}
}
