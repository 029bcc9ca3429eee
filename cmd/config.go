package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tablewriterservice "github.com/RobsonDevCode/pyninja/internal/cmdLineWriters/tablewriter"
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "write a configuration file",
	Long: `config writes the effective settings to a configuration file, .pyninja.toml by default.
Existing settings are kept unless overridden by a flag.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

const TargetFlag = "target"

func runConfig(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString(TargetFlag)

	path := configPath
	if path == "" {
		path = target
	}

	config := configuration.Defaults()
	if existing, err := configuration.LoadFile(path); err == nil {
		config = *existing
	} else if !isMissing(path) {
		return err
	}

	if err := applyFlags(cmd, &config); err != nil {
		return err
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if err := configuration.Save(target, config); err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), color.GreenString("\n Configuration written to %s\n", target))
	tablewriterservice.DisplaySettingsTable(cmd.OutOrStdout(), config.Settings())
	return nil
}

func isMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}

func init() {
	flags := configCmd.Flags()
	flags.String(TargetFlag, configuration.DefaultFileName, "Configuration file to write, .toml or .yaml")
	flags.Bool(SecurityFirstFlag, true, "Show security issues before everything else")
	flags.Bool(ModernizeFlag, true, "Suggest modern alternatives")
	flags.Bool(PerformanceFlag, false, "Also suggest performance alternatives")
	flags.Bool(AutoFixFlag, false, "Write updated requirements after every analysis")
	flags.Bool(StrictFlag, false, "Fail when data is unavailable and exit non-zero when issues are found")
	flags.String(PythonVersionFlag, "", "Target Python version, e.g. 3.11")
	flags.String(VulnerabilityDbFlag, "", "Vulnerability database: osv or github")

	rootCmd.AddCommand(configCmd)
}
