package runnerservice

import (
	"context"
	"fmt"
	"io"

	tablewriterservice "github.com/RobsonDevCode/pyninja/internal/cmdLineWriters/tablewriter"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	excelexportservice "github.com/RobsonDevCode/pyninja/internal/services/excelExportService"
	notificationservice "github.com/RobsonDevCode/pyninja/internal/services/notificationService"
	reportexportservice "github.com/RobsonDevCode/pyninja/internal/services/reportExportService"
	pipcommands "github.com/RobsonDevCode/pyninja/internal/thirdPartyCommands/pipCommands"
	"github.com/fatih/color"
)

// Confirm asks the user a yes/no question. A nil Confirm always proceeds.
type Confirm func(message string) (bool, error)

func confirmed(confirm Confirm, message string) (bool, error) {
	if confirm == nil {
		return true, nil
	}
	return confirm(message)
}

type ConsoleSink struct {
	Writer        io.Writer
	SecurityFirst bool
}

func (s ConsoleSink) Name() string { return "console" }

func (s ConsoleSink) Report(ctx context.Context, report scannermodels.RunReport) error {
	tablewriterservice.DisplayReport(s.Writer, report, s.SecurityFirst)
	return nil
}

// VulnerabilityConsoleSink only prints vulnerabilities at or above MinSeverity.
type VulnerabilityConsoleSink struct {
	Writer      io.Writer
	MinSeverity string
}

func (s VulnerabilityConsoleSink) Name() string { return "security console" }

func (s VulnerabilityConsoleSink) Report(ctx context.Context, report scannermodels.RunReport) error {
	fmt.Fprintf(s.Writer, "\n%s (minimum severity %s)\n", color.HiCyanString("PyNinja Security Report"), s.MinSeverity)
	filtered := extensions.FilterBySeverity(report.Assessments, s.MinSeverity)
	tablewriterservice.DisplayVulnerabilityTable(s.Writer, filtered)
	tablewriterservice.DisplayWarnings(s.Writer, report.Warnings)
	return nil
}

// ModernizationConsoleSink prints suggested alternatives and deprecations.
type ModernizationConsoleSink struct {
	Writer io.Writer
}

func (s ModernizationConsoleSink) Name() string { return "modernization console" }

func (s ModernizationConsoleSink) Report(ctx context.Context, report scannermodels.RunReport) error {
	fmt.Fprintf(s.Writer, "\n%s (Python %s)\n", color.HiCyanString("PyNinja Modernization Report"), report.Metadata.TargetPython)
	if report.Summary.AlternativesSuggested == 0 {
		fmt.Fprint(s.Writer, color.GreenString("\n No modernization opportunities found!\n"))
	}
	tablewriterservice.DisplayAlternativesTable(s.Writer, report.Assessments)
	tablewriterservice.DisplayFlagged(s.Writer, report.Flagged)
	tablewriterservice.DisplayWarnings(s.Writer, report.Warnings)
	return nil
}

type JsonSink struct {
	Path   string
	Writer io.Writer
}

func (s JsonSink) Name() string { return "json report" }

func (s JsonSink) Report(ctx context.Context, report scannermodels.RunReport) error {
	if err := reportexportservice.WriteJsonReport(s.Path, report); err != nil {
		return err
	}
	fmt.Fprint(s.Writer, color.GreenString("Report exported to %s\n", s.Path))
	return nil
}

type ExcelSink struct {
	Dir     string
	Writer  io.Writer
	Confirm Confirm
}

func (s ExcelSink) Name() string { return "excel export" }

func (s ExcelSink) Report(ctx context.Context, report scannermodels.RunReport) error {
	ok, err := confirmed(s.Confirm, "Export report to Excel?")
	if err != nil || !ok {
		return err
	}

	path, err := excelexportservice.ExportReport(s.Dir, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Writer, "Your file has been saved to: %s\n", path)
	return nil
}

type GithubPrSink struct {
	Path   string
	Writer io.Writer
}

func (s GithubPrSink) Name() string { return "github pr description" }

func (s GithubPrSink) Report(ctx context.Context, report scannermodels.RunReport) error {
	if err := reportexportservice.WriteGithubPrDescription(s.Path, report); err != nil {
		return err
	}
	fmt.Fprint(s.Writer, color.GreenString("GitHub PR description written to %s\n", s.Path))
	return nil
}

// RequirementsSink writes the updated requirements file. In dry-run mode it only
// says what it would write. With an Installer the written file is installed afterwards.
type RequirementsSink struct {
	Path      string
	DryRun    bool
	Writer    io.Writer
	Confirm   Confirm
	Installer pipcommands.PipExecutor
}

func (s RequirementsSink) Name() string { return "updated requirements" }

func (s RequirementsSink) Report(ctx context.Context, report scannermodels.RunReport) error {
	if s.DryRun {
		fmt.Fprint(s.Writer, color.YellowString("Dry run: would write updated requirements to %s\n", s.Path))
		return nil
	}

	ok, err := confirmed(s.Confirm, fmt.Sprintf("Write updated requirements to %s?", s.Path))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprint(s.Writer, color.YellowString("Update cancelled\n"))
		return nil
	}

	if err := reportexportservice.WriteUpdatedRequirements(s.Path, report); err != nil {
		return err
	}
	fmt.Fprint(s.Writer, color.GreenString("Updated requirements written to %s\n", s.Path))

	if s.Installer == nil {
		return nil
	}
	return s.install(ctx)
}

func (s RequirementsSink) install(ctx context.Context) error {
	ok, err := confirmed(s.Confirm, "Install updated packages now?")
	if err != nil || !ok {
		return err
	}

	fmt.Fprint(s.Writer, color.BlueString("Installing packages from %s...\n", s.Path))
	if err := s.Installer.InstallRequirements(ctx, s.Path); err != nil {
		return fmt.Errorf("installation failed: %w", err)
	}
	fmt.Fprint(s.Writer, color.GreenString("Packages installed successfully\n"))
	return nil
}

type NotificationSink struct {
	Notifier notificationservice.NotificationService
}

func (s NotificationSink) Name() string { return "slack notification" }

func (s NotificationSink) Report(ctx context.Context, report scannermodels.RunReport) error {
	return s.Notifier.NotifyReport(ctx, report)
}
