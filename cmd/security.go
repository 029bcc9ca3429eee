package cmd

import (
	"fmt"
	"strings"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	manifestformats "github.com/RobsonDevCode/pyninja/internal/constants/manifestFormats"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	runnerservice "github.com/RobsonDevCode/pyninja/internal/services/runnerService"
	"github.com/spf13/cobra"
)

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "check a manifest for known vulnerabilities only",
	Args:  cobra.NoArgs,
	RunE:  runSecurity,
}

const (
	SeverityFlag = "severity"
	ExportFlag   = "export"
)

func runSecurity(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	severity, _ := flags.GetString(SeverityFlag)
	if !extensions.IsSeverity(severity) {
		return analysiserrors.NewConfigError(SeverityFlag, severity, fmt.Errorf("must be one of %s", strings.Join(extensions.Severities, ", ")))
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	deps, err := dependencies(config, FocusSecurity, newLogger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sinks := []runnerservice.ReportSink{runnerservice.VulnerabilityConsoleSink{Writer: out, MinSeverity: severity}}
	if export, _ := flags.GetString(ExportFlag); export != "" {
		sinks = append(sinks, runnerservice.JsonSink{Path: export, Writer: out})
	}

	file, _ := flags.GetString(FileFlag)
	format, _ := flags.GetString(FormatFlag)

	report, err := deps.Runner.Run(cmd.Context(), runnerservice.RunOptions{
		ManifestPath:    file,
		Format:          manifestformats.Normalize(format),
		TargetPython:    config.TargetPython,
		VulnerabilityDb: config.VulnerabilityDb,
	}, sinks...)
	if err != nil {
		return err
	}

	vulnerabilities := len(extensions.FlattenVulnerabilities(extensions.FilterBySeverity(report.Assessments, severity)))
	return strictResult(config, vulnerabilities > 0, vulnerabilities, 0)
}

func init() {
	flags := securityCmd.Flags()
	flags.StringP(FileFlag, "f", "", "Manifest file or directory (auto-detected if not specified)")
	flags.String(FormatFlag, "", "Manifest format: requirements, pyproject, pipfile or lockfile")
	flags.String(SeverityFlag, "medium", "Minimum severity to show: low, medium, high or critical")
	flags.String(ExportFlag, "", "Export the report as JSON to this file")
	flags.String(VulnerabilityDbFlag, "", "Vulnerability database: osv or github")
	flags.Bool(StrictFlag, false, "Fail when the database is unavailable and exit non-zero when vulnerabilities are found")

	rootCmd.AddCommand(securityCmd)
}
