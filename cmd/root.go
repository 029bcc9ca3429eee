package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	cache "github.com/RobsonDevCode/pyninja/internal/caching"
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	"github.com/RobsonDevCode/pyninja/internal/logging"
	notificationservice "github.com/RobsonDevCode/pyninja/internal/services/notificationService"
	packageupdateservice "github.com/RobsonDevCode/pyninja/internal/services/packageUpdateService"
	runnerservice "github.com/RobsonDevCode/pyninja/internal/services/runnerService"
	pipcommands "github.com/RobsonDevCode/pyninja/internal/thirdPartyCommands/pipCommands"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Focus selects which parts of the analysis a command needs.
type Focus int

const (
	FocusFull Focus = iota
	FocusSecurity
	FocusModernize
	FocusUpdate
)

type Dependencies struct {
	Runner    runnerservice.RunnerService
	DiskCache *cache.DiskCache
	// Notifier is nil when no Slack webhook is configured.
	Notifier notificationservice.NotificationService
	// Installer runs pip for analyze --auto-fix.
	Installer pipcommands.PipExecutor
	// Updater is only built for FocusUpdate.
	Updater packageupdateservice.PackageUpdateService
}

type DependencyBuilder func(config *configuration.Config, focus Focus, logger *slog.Logger) (*Dependencies, error)

var buildDependencies DependencyBuilder

// cant DI directly into the commands so main sets the builder
func SetDependencyBuilder(builder DependencyBuilder) {
	buildDependencies = builder
}

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pyninja",
	Short: "analyse python dependency manifests",
	Long: `pyninja reads a requirements.txt, pyproject.toml, Pipfile or lock file and checks
every package for known vulnerabilities, available updates, deprecations and modern alternatives.

Running pyninja without a sub command runs analyze.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: .pyninja.yaml, .pyninja.yml or .pyninja.toml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log lookups, retries and cache hits to stderr")

	addAnalyzeFlags(rootCmd)
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, analysiserrors.ErrIssuesFound):
		fmt.Fprintln(os.Stderr, color.RedString("\n%s", err))
		return 1
	case errors.Is(err, analysiserrors.ErrConfig):
		fmt.Fprintln(os.Stderr, color.RedString("\nerror: %s", err))
		return 2
	default:
		fmt.Fprintln(os.Stderr, color.RedString("\nerror: %s", err))
		return 1
	}
}

func newLogger() *slog.Logger {
	return logging.New(os.Stderr, verbose)
}

func dependencies(config *configuration.Config, focus Focus, logger *slog.Logger) (*Dependencies, error) {
	if buildDependencies == nil {
		return nil, errors.New("dependency builder not set")
	}
	return buildDependencies(config, focus, logger)
}
