package cmd

import (
	manifestformats "github.com/RobsonDevCode/pyninja/internal/constants/manifestFormats"
	runnerservice "github.com/RobsonDevCode/pyninja/internal/services/runnerService"
	"github.com/spf13/cobra"
)

var modernizeCmd = &cobra.Command{
	Use:   "modernize",
	Short: "suggest modern alternatives for outdated packages",
	Long: `modernize checks each package against the table of legacy packages, Python 3 back-ports
and insecure libraries, plus any custom_alternatives in the configuration, and reports deprecated packages.`,
	Args: cobra.NoArgs,
	RunE: runModernize,
}

func runModernize(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the focused command always suggests, --modernize=false would leave nothing to show
	config.Modernize = true

	deps, err := dependencies(config, FocusModernize, newLogger())
	if err != nil {
		return err
	}

	file, _ := flags.GetString(FileFlag)
	format, _ := flags.GetString(FormatFlag)

	_, err = deps.Runner.Run(cmd.Context(), runnerservice.RunOptions{
		ManifestPath: file,
		Format:       manifestformats.Normalize(format),
		TargetPython: config.TargetPython,
	}, runnerservice.ModernizationConsoleSink{Writer: cmd.OutOrStdout()})

	return err
}

func init() {
	flags := modernizeCmd.Flags()
	flags.StringP(FileFlag, "f", "", "Manifest file or directory (auto-detected if not specified)")
	flags.String(FormatFlag, "", "Manifest format: requirements, pyproject, pipfile or lockfile")
	flags.Bool(PerformanceFlag, false, "Also suggest performance alternatives")
	flags.String(PythonVersionFlag, "", "Target Python version, e.g. 3.11")

	rootCmd.AddCommand(modernizeCmd)
}
