package cmd

import (
	"errors"
	"fmt"

	tablewriterservice "github.com/RobsonDevCode/pyninja/internal/cmdLineWriters/tablewriter"
	packageupdateservice "github.com/RobsonDevCode/pyninja/internal/services/packageUpdateService"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update PACKAGE...",
	Short: "install the latest release of packages with pip",
	Long: `update installs the latest stable release of each package into the environment of
the configured python executable. A release with known vulnerabilities is refused unless
--security-check=false is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpdate,
}

const (
	LatestFlag        = "latest"
	SecurityCheckFlag = "security-check"
)

func runUpdate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	deps, err := dependencies(config, FocusUpdate, newLogger())
	if err != nil {
		return err
	}
	if deps.Updater == nil {
		return errors.New("package updates are not available")
	}

	latest, _ := flags.GetBool(LatestFlag)
	securityCheck, _ := flags.GetBool(SecurityCheckFlag)
	dryRun, _ := flags.GetBool(DryRunFlag)
	options := packageupdateservice.UpdateOptions{Latest: latest, SecurityCheck: securityCheck, DryRun: dryRun}

	ctx := cmd.Context()
	results := make([]packageupdateservice.UpdateResult, 0, len(args))
	for _, name := range args {
		if err := ctx.Err(); err != nil {
			return err
		}
		results = append(results, deps.Updater.UpdatePackage(ctx, name, options))
	}

	tablewriterservice.DisplayUpdateResults(cmd.OutOrStdout(), results)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d updates failed", failed, len(results))
	}

	return nil
}

func init() {
	flags := updateCmd.Flags()
	flags.Bool(LatestFlag, false, "Allow pre-releases as the update target")
	flags.Bool(SecurityCheckFlag, true, "Refuse releases with known vulnerabilities")
	flags.Bool(DryRunFlag, false, "Show what would be installed without running pip")
	flags.String(VulnerabilityDbFlag, "", "Vulnerability database: osv or github")

	rootCmd.AddCommand(updateCmd)
}
