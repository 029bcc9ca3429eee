package excelexportservice

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/RobsonDevCode/pyninja/internal/constants/exportExcelOptions"
	"github.com/RobsonDevCode/pyninja/internal/constants/tableHeaders"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/xuri/excelize/v2"
)

const DefaultExportDir = "./export"
const packageSheetName = "Packages"
const summarySheetName = "Summary"

// ExportReport writes one row per package, or per vulnerability when a package has
// several, plus a summary sheet. It returns the path of the saved workbook.
func ExportReport(dir string, report scannermodels.RunReport) (string, error) {
	if dir == "" {
		dir = DefaultExportDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating directory %s, %w", dir, err)
	}

	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", packageSheetName)
	for i, header := range tableHeaders.ExcelPackageTableHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(packageSheetName, cell, header)
	}

	row := 2 // excel is 1 indexed and row 1 is the header
	for _, assessment := range report.Assessments {
		vulnerabilities := assessment.Vulnerabilities
		if len(vulnerabilities) == 0 {
			vulnerabilities = []scannermodels.VulnerabilityRecord{{}}
		}

		for _, vulnerability := range vulnerabilities {
			rowData := packageRow(assessment, vulnerability)
			if err := file.SetSheetRow(packageSheetName, fmt.Sprintf("A%d", row), &rowData); err != nil {
				return "", fmt.Errorf("error writing row %d, %w", row, err)
			}
			row++
		}
	}

	if _, err := file.NewSheet(summarySheetName); err != nil {
		return "", fmt.Errorf("error creating summary sheet, %w", err)
	}

	summary := report.Summary
	summaryRows := [][]interface{}{
		{"Manifest", report.Metadata.ManifestPath},
		{"Generated", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total packages", summary.TotalPackages},
		{"Packages with updates", summary.PackagesWithUpdates},
		{"Security vulnerabilities", summary.VulnerabilityCount},
		{"Deprecated packages", summary.DeprecatedPackages},
		{"Compatibility score", summary.CompatibilityScore},
		{"Community score", summary.CommunityScore},
	}
	for i, summaryRow := range summaryRows {
		if err := file.SetSheetRow(summarySheetName, fmt.Sprintf("A%d", i+1), &summaryRow); err != nil {
			return "", fmt.Errorf("error writing summary, %w", err)
		}
	}

	name := strings.TrimSuffix(filepath.Base(report.Metadata.ManifestPath), filepath.Ext(report.Metadata.ManifestPath))
	if name == "" || name == "." {
		name = "manifest"
	}

	fileName := fmt.Sprintf("pyninja_%s_%s.xlsx", name, report.Metadata.GeneratedAt.Format("2006-01-02T15-04-05"))
	fullPath := filepath.Join(dir, fileName)

	if err := file.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save excel to %s, %w", fullPath, err)
	}

	return fullPath, nil
}

func packageRow(assessment scannermodels.PackageAssessment, vulnerability scannermodels.VulnerabilityRecord) []interface{} {
	alternative := ""
	if assessment.Alternative != nil {
		alternative = assessment.Alternative.Suggestion()
	}

	return []interface{}{
		assessment.Requirement.Name,
		assessment.Requirement.DisplayConstraint(),
		assessment.Requirement.Format,
		assessment.LatestStable,
		assessment.UpdateAvailable,
		assessment.Deprecated,
		vulnerability.AdvisoryId,
		vulnerability.Severity,
		vulnerability.AffectedRange,
		vulnerability.FixedIn,
		alternative,
		extensions.FormatScore(assessment.CompatibilityScore),
		extensions.FormatScore(assessment.CommunityScore),
	}
}

func SelectExportReportToExcel() (bool, error) {
	prompt := &survey.Select{
		Message: "Export Report To Excel",
		Options: exportExcelOptions.ExcelOptions,
	}

	var selectedIndex int
	err := survey.AskOne(prompt, &selectedIndex)
	if err != nil {
		return false, fmt.Errorf("selection error: %w", err)
	}

	return exportExcelOptions.ExcelOptions[selectedIndex] == exportExcelOptions.Yes, nil
}
