package reportexportservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
)

const (
	DefaultReportFile       = "pyninja-report.json"
	DefaultPrFile           = "github_pr_description.md"
	DefaultRequirementsFile = "requirements_updated.txt"

	maxListedUpdates      = 10
	maxListedAlternatives = 5
)

var ErrSameAsInput = errors.New("output would overwrite the input manifest")

// WriteJsonReport writes the report as indented JSON, creating parent directories.
func WriteJsonReport(path string, report scannermodels.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}

	return writeFile(path, append(data, '\n'))
}

// UpdatedRequirements pins every package with a known stable release to >=latest,
// other packages keep their constraint rewritten as pip specifiers. Extras and
// environment markers are carried over.
func UpdatedRequirements(report scannermodels.RunReport) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "# Updated by pyninja on %s\n", report.Metadata.GeneratedAt.Format(time.DateOnly))

	for _, assessment := range report.Assessments {
		requirement := assessment.Requirement

		specifiers := pipSpecifiers(requirement.Constraint)
		if assessment.LatestStable != "" {
			specifiers = ">=" + assessment.LatestStable
		}

		builder.WriteString(pipLine(requirement, specifiers))
		builder.WriteByte('\n')
	}

	return builder.String()
}

func pipSpecifiers(raw string) string {
	constraint, err := versioning.ParseConstraint(raw)
	if err != nil {
		return strings.ReplaceAll(raw, " ", "")
	}
	return constraint.PipSpecifiers()
}

func pipLine(requirement scannermodels.PackageRequirement, specifiers string) string {
	line := requirement.Name
	if len(requirement.Extras) > 0 {
		line += "[" + strings.Join(requirement.Extras, ",") + "]"
	}
	line += specifiers
	if requirement.Markers != "" {
		line += "; " + requirement.Markers
	}
	return line
}

// WriteUpdatedRequirements refuses to replace the manifest the report was built from.
func WriteUpdatedRequirements(path string, report scannermodels.RunReport) error {
	same, err := samePath(path, report.Metadata.ManifestPath)
	if err != nil {
		return err
	}

	if same {
		return analysiserrors.NewConfigError("output", path, ErrSameAsInput)
	}

	return writeFile(path, []byte(UpdatedRequirements(report)))
}

func GithubPrDescription(report scannermodels.RunReport) string {
	var builder strings.Builder
	summary := report.Summary

	builder.WriteString("# Automated Requirements Update\n\n")
	builder.WriteString("This PR updates Python dependencies based on security and compatibility analysis.\n\n")
	builder.WriteString("## Summary\n")
	fmt.Fprintf(&builder, "- **Total Packages:** %d\n", summary.TotalPackages)
	fmt.Fprintf(&builder, "- **Packages Updated:** %d\n", summary.PackagesWithUpdates)
	fmt.Fprintf(&builder, "- **Security Issues Fixed:** %d\n", summary.VulnerabilityCount)
	fmt.Fprintf(&builder, "- **Deprecated Packages:** %d\n", summary.DeprecatedPackages)
	fmt.Fprintf(&builder, "- **Compatibility Score:** %s\n", extensions.FormatScore(summary.CompatibilityScore))

	builder.WriteString("\n## Changes Made\n\n### Security Updates\n")
	for _, assessment := range report.Assessments {
		if count := len(assessment.Vulnerabilities); count > 0 {
			fmt.Fprintf(&builder, "- **%s**: Fixed %d vulnerabilities\n", assessment.Requirement.Name, count)
		}
	}

	builder.WriteString("\n### Package Updates\n")
	listed := 0
	for _, assessment := range report.Assessments {
		if !assessment.UpdateAvailable || listed == maxListedUpdates {
			continue
		}
		fmt.Fprintf(&builder, "- **%s**: %s → %s\n", assessment.Requirement.Name, assessment.CurrentVersion, assessment.LatestStable)
		listed++
	}

	if len(report.Flagged.Modernization) > 0 || len(report.Flagged.Performance) > 0 {
		builder.WriteString("\n### Modernization Suggestions\n")
		listed = 0
		for _, assessment := range report.Assessments {
			if assessment.Alternative == nil || listed == maxListedAlternatives {
				continue
			}
			fmt.Fprintf(&builder, "- **%s**: %s (%s)\n", assessment.Requirement.Name, assessment.Alternative.Suggestion(), assessment.Alternative.Rationale)
			listed++
		}
	}

	builder.WriteString("\n## Testing\n")
	builder.WriteString("- [ ] All tests pass\n")
	builder.WriteString("- [ ] No breaking changes detected\n")
	builder.WriteString("- [ ] Dependencies install correctly\n")

	return builder.String()
}

func WriteGithubPrDescription(path string, report scannermodels.RunReport) error {
	return writeFile(path, []byte(GithubPrDescription(report)))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s, %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s, %w", path, err)
	}

	return nil
}

func samePath(a string, b string) (bool, error) {
	if a == "" || b == "" {
		return false, nil
	}

	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("error resolving %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("error resolving %s: %w", b, err)
	}

	return absA == absB, nil
}
