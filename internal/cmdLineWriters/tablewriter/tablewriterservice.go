package tablewriterservice

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RobsonDevCode/pyninja/internal/configuration"
	"github.com/RobsonDevCode/pyninja/internal/constants/tableHeaders"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	packageupdateservice "github.com/RobsonDevCode/pyninja/internal/services/packageUpdateService"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

const maxPathWidth = 60

func newTable(w io.Writer, maxWidth int) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNormal}, //wrap long content like summaries and notes
				Alignment:    tw.CellAlignment{Global: tw.AlignLeft},
				ColMaxWidths: tw.CellWidth{Global: maxWidth},
			},
		}),
	)
}

// DisplayReport writes the full console report. With securityFirst the vulnerability
// table comes before the summary.
func DisplayReport(w io.Writer, report scannermodels.RunReport, securityFirst bool) {
	fmt.Fprintf(w, "\n%s\n", color.HiCyanString("PyNinja Analysis Report"))
	fmt.Fprintf(w, "Manifest: %s (%s), Python %s, database %s\n",
		extensions.TruncateStringStart(report.Metadata.ManifestPath, maxPathWidth),
		report.Metadata.ManifestFormat,
		report.Metadata.TargetPython,
		report.Metadata.VulnerabilityDb)

	if report.Metadata.Partial {
		fmt.Fprint(w, color.YellowString("Analysis was cancelled, the report is partial\n"))
	}

	if securityFirst {
		DisplayVulnerabilityTable(w, report.Assessments)
		DisplaySummaryTable(w, report.Summary)
	} else {
		DisplaySummaryTable(w, report.Summary)
		DisplayVulnerabilityTable(w, report.Assessments)
	}

	DisplayOutdatedTable(w, report.Assessments)
	DisplayAlternativesTable(w, report.Assessments)
	DisplayFlagged(w, report.Flagged)
	DisplayWarnings(w, report.Warnings)
}

func DisplaySummaryTable(w io.Writer, summary scannermodels.ReportSummary) {
	fmt.Fprint(w, "\n Summary: \n")

	table := newTable(w, 40)
	table.Header(tableHeaders.SummaryTableHeaders)

	rows := [][]string{
		{"Total packages", strconv.Itoa(summary.TotalPackages)},
		{"Packages with updates", strconv.Itoa(summary.PackagesWithUpdates)},
		{"Security vulnerabilities", strconv.Itoa(summary.VulnerabilityCount)},
		{"Deprecated packages", strconv.Itoa(summary.DeprecatedPackages)},
		{"Alternatives suggested", strconv.Itoa(summary.AlternativesSuggested)},
		{"Compatibility issues", strconv.Itoa(summary.CompatibilityIssues)},
		{"Compatibility score", extensions.FormatScore(summary.CompatibilityScore)},
		{"Community score", extensions.FormatScore(summary.CommunityScore)},
	}
	for _, row := range rows {
		table.Append(row)
	}

	table.Render()
}

func DisplayVulnerabilityTable(w io.Writer, assessments []scannermodels.PackageAssessment) {
	vulnerable := extensions.FlattenVulnerabilities(assessments)
	if len(vulnerable) == 0 {
		fmt.Fprint(w, color.GreenString("\n No Package Vulnerabilities!\n"))
		return
	}

	fmt.Fprintf(w, "\n Found %s: \n", color.RedString("%d Package Vulnerabilities", len(vulnerable)))

	table := newTable(w, 30)
	table.Header(tableHeaders.VulnerabilityTableHeaders)

	for _, entry := range vulnerable {
		fixedIn := entry.Vulnerability.FixedIn
		if fixedIn == "" {
			fixedIn = "-"
		}

		table.Append([]string{
			entry.Assessment.Requirement.Name,
			entry.Assessment.Requirement.DisplayConstraint(),
			entry.Vulnerability.AdvisoryId,
			entry.Vulnerability.Severity,
			extensions.TruncateString(entry.Vulnerability.AffectedRange, 60),
			fixedIn,
		})
	}

	table.Render()
}

func DisplayOutdatedTable(w io.Writer, assessments []scannermodels.PackageAssessment) {
	var outdated []scannermodels.PackageAssessment
	for _, assessment := range assessments {
		if assessment.UpdateAvailable {
			outdated = append(outdated, assessment)
		}
	}

	if len(outdated) == 0 {
		return
	}

	fmt.Fprintf(w, "\n %d Packages Can Be Updated: \n", len(outdated))

	table := newTable(w, 30)
	table.Header(tableHeaders.OutdatedTableHeaders)
	for _, assessment := range outdated {
		table.Append([]string{
			assessment.Requirement.Name,
			assessment.CurrentVersion,
			assessment.LatestStable,
		})
	}

	table.Render()
}

func DisplayAlternativesTable(w io.Writer, assessments []scannermodels.PackageAssessment) {
	var suggested []scannermodels.PackageAssessment
	for _, assessment := range assessments {
		if assessment.Alternative != nil {
			suggested = append(suggested, assessment)
		}
	}

	if len(suggested) == 0 {
		return
	}

	fmt.Fprint(w, color.HiMagentaString("\n Suggested Alternatives: \n"))

	table := newTable(w, 40)
	table.Header(tableHeaders.AlternativeTableHeaders)
	for _, assessment := range suggested {
		table.Append([]string{
			assessment.Requirement.Name,
			assessment.Alternative.Suggestion(),
			assessment.Alternative.Rationale,
			extensions.TruncateString(assessment.Alternative.Note, 80),
		})
	}

	table.Render()
}

func DisplayFlagged(w io.Writer, flagged scannermodels.FlaggedPackages) {
	lists := []struct {
		title    string
		packages []string
	}{
		{"Deprecated", flagged.Deprecated},
		{"Compatibility issues", flagged.CompatibilityIssues},
		{"Performance opportunities", flagged.Performance},
	}

	for _, list := range lists {
		if len(list.packages) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n %s: %s\n", color.YellowString(list.title), strings.Join(list.packages, ", "))
	}
}

func DisplayWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}

	fmt.Fprintf(w, "%s", color.YellowString("\n Warnings: \n"))
	for _, warning := range warnings {
		fmt.Fprintf(w, "  - %s\n", warning)
	}
}

func DisplaySettingsTable(w io.Writer, settings []configuration.Setting) {
	table := newTable(w, 60)
	table.Header([]string{"Setting", "Value"})

	for _, setting := range settings {
		table.Append([]string{setting.Key, setting.Value})
	}

	table.Render()
}

// DisplayUpdateResults writes one row per requested package. Installed is blank for
// packages that were not installed before.
func DisplayUpdateResults(w io.Writer, results []packageupdateservice.UpdateResult) {
	table := newTable(w, 50)
	table.Header(tableHeaders.UpdateTableHeaders)

	for _, result := range results {
		table.Append([]string{
			result.Package,
			result.OldVersion,
			result.NewVersion,
			updateOutcome(result),
		})
	}

	table.Render()

	for _, result := range results {
		if len(result.Warnings) > 0 {
			DisplayWarnings(w, result.Warnings)
		}
	}
}

func updateOutcome(result packageupdateservice.UpdateResult) string {
	switch {
	case result.Err != nil:
		return color.RedString("failed: %s", result.Err)
	case result.Updated:
		return color.GreenString("updated")
	case len(result.Vulnerabilities) > 0:
		return color.RedString("refused: %s", result.Skipped)
	default:
		return color.YellowString("%s", result.Skipped)
	}
}
