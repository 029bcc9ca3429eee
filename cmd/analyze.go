package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	manifestformats "github.com/RobsonDevCode/pyninja/internal/constants/manifestFormats"
	excelexportservice "github.com/RobsonDevCode/pyninja/internal/services/excelExportService"
	reportexportservice "github.com/RobsonDevCode/pyninja/internal/services/reportExportService"
	runnerservice "github.com/RobsonDevCode/pyninja/internal/services/runnerService"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "analyse a dependency manifest",
	Long: `analyze parses the manifest, checks every package against the vulnerability database,
looks up release metadata on PyPI and suggests modern alternatives.

If no file is given the working directory is searched for requirements.txt, pyproject.toml,
Pipfile and poetry.lock in that order.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

const (
	FileFlag            = "file"
	OutputFlag          = "output"
	FormatFlag          = "format"
	AutoFixFlag         = "auto-fix"
	StrictFlag          = "strict"
	SecurityFirstFlag   = "security-first"
	ModernizeFlag       = "modernize"
	PerformanceFlag     = "performance"
	PythonVersionFlag   = "python-version"
	DryRunFlag          = "dry-run"
	ExportReportFlag    = "export-report"
	ExportXlsxFlag      = "export-xlsx"
	GithubPrFlag        = "github-pr"
	InteractiveFlag     = "interactive"
	CacheClearFlag      = "cache-clear"
	VulnerabilityDbFlag = "vulnerability-db"
	NotifyFlag          = "notify"
)

func addAnalyzeFlags(command *cobra.Command) {
	flags := command.Flags()
	flags.StringP(FileFlag, "f", "", "Manifest file or directory (auto-detected if not specified)")
	flags.StringP(OutputFlag, "o", "", "Write updated requirements to this file")
	flags.String(FormatFlag, "", "Manifest format: requirements, pyproject, pipfile or lockfile (auto-detected if not specified)")
	flags.Bool(AutoFixFlag, false, "Write updated requirements to "+reportexportservice.DefaultRequirementsFile)
	flags.Bool(StrictFlag, false, "Fail when data is unavailable and exit non-zero when issues are found")
	flags.Bool(SecurityFirstFlag, true, "Show security issues before everything else")
	flags.Bool(ModernizeFlag, true, "Suggest modern alternatives")
	flags.Bool(PerformanceFlag, false, "Also suggest performance alternatives")
	flags.String(PythonVersionFlag, "", "Target Python version, e.g. 3.11")
	flags.Bool(DryRunFlag, false, "Show what would change without writing updated requirements")
	flags.String(ExportReportFlag, "", "Export the full report as JSON to this file")
	flags.Lookup(ExportReportFlag).NoOptDefVal = reportexportservice.DefaultReportFile
	flags.Bool(ExportXlsxFlag, false, "Export the report as an Excel workbook to "+excelexportservice.DefaultExportDir)
	flags.Bool(GithubPrFlag, false, "Write a pull request description to "+reportexportservice.DefaultPrFile)
	flags.Bool(InteractiveFlag, false, "Ask before analysing and before writing files")
	flags.Bool(CacheClearFlag, false, "Clear the lookup cache before running")
	flags.String(VulnerabilityDbFlag, "", "Vulnerability database: osv or github")
	flags.Bool(NotifyFlag, false, "Send the summary to the configured Slack webhook")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	file, _ := flags.GetString(FileFlag)
	format, _ := flags.GetString(FormatFlag)
	output, _ := flags.GetString(OutputFlag)
	exportReport, _ := flags.GetString(ExportReportFlag)
	exportXlsx, _ := flags.GetBool(ExportXlsxFlag)
	githubPr, _ := flags.GetBool(GithubPrFlag)
	interactive, _ := flags.GetBool(InteractiveFlag)
	cacheClear, _ := flags.GetBool(CacheClearFlag)
	notify, _ := flags.GetBool(NotifyFlag)

	dryRun := config.DryRunDefault
	if flags.Changed(DryRunFlag) {
		dryRun, _ = flags.GetBool(DryRunFlag)
	}

	if interactive {
		proceed, err := askInteractiveOptions(config, file)
		if err != nil || !proceed {
			return err
		}
	}

	logger := newLogger()
	deps, err := dependencies(config, FocusFull, logger)
	if err != nil {
		return err
	}

	if cacheClear {
		if err := deps.DiskCache.Clear(); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), color.GreenString("Cache cleared\n"))
	}

	out := cmd.OutOrStdout()
	var confirm runnerservice.Confirm
	if interactive {
		confirm = confirmPrompt
	}

	sinks := []runnerservice.ReportSink{runnerservice.ConsoleSink{Writer: out, SecurityFirst: config.SecurityFirst}}

	if exportReport == "" && config.ExportReports {
		exportReport = reportexportservice.DefaultReportFile
	}
	if exportReport != "" {
		sinks = append(sinks, runnerservice.JsonSink{Path: exportReport, Writer: out})
	}

	if exportXlsx {
		sinks = append(sinks, runnerservice.ExcelSink{Writer: out})
	} else if interactive {
		sinks = append(sinks, runnerservice.ExcelSink{Writer: out, Confirm: selectExcelExport})
	}

	if output == "" && config.AutoFix {
		output = reportexportservice.DefaultRequirementsFile
	}
	if output != "" {
		sink := runnerservice.RequirementsSink{Path: output, DryRun: dryRun, Writer: out, Confirm: confirm}
		if config.AutoFix && !dryRun {
			sink.Installer = deps.Installer
		}
		sinks = append(sinks, sink)
	}

	if githubPr {
		sinks = append(sinks, runnerservice.GithubPrSink{Path: reportexportservice.DefaultPrFile, Writer: out})
	}

	if notify {
		if deps.Notifier == nil {
			return analysiserrors.NewConfigError("slack_webhook_url", "", fmt.Errorf("--%s needs a webhook, set it in the config or %s", NotifyFlag, configuration.SlackWebhookEnv))
		}
		sinks = append(sinks, runnerservice.NotificationSink{Notifier: deps.Notifier})
	}

	report, err := deps.Runner.Run(ctx, runnerservice.RunOptions{
		ManifestPath:    file,
		Format:          manifestformats.Normalize(format),
		TargetPython:    config.TargetPython,
		VulnerabilityDb: config.VulnerabilityDb,
		DryRun:          dryRun,
	}, sinks...)
	if err != nil {
		return err
	}

	return strictResult(config, report.HasIssues(), report.Summary.VulnerabilityCount, report.Summary.DeprecatedPackages)
}

// strictResult fails a completed run in strict mode when it found issues.
func strictResult(config *configuration.Config, hasIssues bool, vulnerabilities int, deprecated int) error {
	if !config.StrictMode || !hasIssues {
		return nil
	}

	return fmt.Errorf("%w: %d vulnerabilities, %d deprecated packages", analysiserrors.ErrIssuesFound, vulnerabilities, deprecated)
}

func askInteractiveOptions(config *configuration.Config, file string) (bool, error) {
	target := file
	if target == "" {
		target = "the current directory"
	}

	proceed, err := confirmPrompt(fmt.Sprintf("Proceed with analysis of %s?", target))
	if err != nil || !proceed {
		return false, err
	}

	if !config.Modernize {
		if config.Modernize, err = confirmPrompt("Enable modernization suggestions?"); err != nil {
			return false, err
		}
	}

	if !config.PerformanceFocus {
		if config.PerformanceFocus, err = confirmPrompt("Enable performance optimization suggestions?"); err != nil {
			return false, err
		}
	}

	return true, nil
}

func confirmPrompt(message string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{Message: message, Default: true}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, fmt.Errorf("selection error: %w", err)
	}
	return ok, nil
}

func selectExcelExport(message string) (bool, error) {
	return excelexportservice.SelectExportReportToExcel()
}

// loadConfig reads the configuration file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*configuration.Config, error) {
	config, err := configuration.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyFlags(cmd *cobra.Command, config *configuration.Config) error {
	flags := cmd.Flags()

	bools := map[string]*bool{
		StrictFlag:        &config.StrictMode,
		SecurityFirstFlag: &config.SecurityFirst,
		ModernizeFlag:     &config.Modernize,
		PerformanceFlag:   &config.PerformanceFocus,
		AutoFixFlag:       &config.AutoFix,
	}
	for name, target := range bools {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*target = value
	}

	values := map[string]*string{
		PythonVersionFlag:   &config.TargetPython,
		VulnerabilityDbFlag: &config.VulnerabilityDb,
	}
	for name, target := range values {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = value
	}

	return nil
}

func init() {
	addAnalyzeFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
