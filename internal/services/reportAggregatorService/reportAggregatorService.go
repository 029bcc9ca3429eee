package reportaggregatorservice

import (
	"math"
	"time"

	"github.com/RobsonDevCode/pyninja/internal/constants/rationale"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
)

// CompatibilityThreshold is the score below which a package is flagged as a compatibility issue.
const CompatibilityThreshold = 0.7

const neutralScore = 0.5

type ReportAggregatorService interface {
	Aggregate(assessments []scannermodels.PackageAssessment, options ReportOptions) scannermodels.RunReport
}

type ReportOptions struct {
	ManifestPath     string
	ManifestFormat   string
	TargetPython     string
	VulnerabilityDb  string
	DryRun           bool
	Partial          bool
	ManifestWarnings []string
}

type ReportAggregator struct {
	now func() time.Time
}

func NewReportAggregator() *ReportAggregator {
	return &ReportAggregator{now: time.Now}
}

// Aggregate builds the report. Counters are plain sums, flagged lists keep manifest order
// and score averages only include scored packages.
func (r *ReportAggregator) Aggregate(assessments []scannermodels.PackageAssessment, options ReportOptions) scannermodels.RunReport {
	report := scannermodels.RunReport{
		Metadata: scannermodels.RunMetadata{
			GeneratedAt:     r.now().UTC(),
			ManifestPath:    options.ManifestPath,
			ManifestFormat:  options.ManifestFormat,
			TargetPython:    options.TargetPython,
			VulnerabilityDb: options.VulnerabilityDb,
			DryRun:          options.DryRun,
			Partial:         options.Partial,
		},
		Flagged: scannermodels.FlaggedPackages{
			Vulnerable:          []string{},
			Outdated:            []string{},
			Deprecated:          []string{},
			CompatibilityIssues: []string{},
			Modernization:       []string{},
			Performance:         []string{},
		},
		Assessments: assessments,
		Warnings:    append([]string{}, options.ManifestWarnings...),
	}

	if report.Assessments == nil {
		report.Assessments = []scannermodels.PackageAssessment{}
	}

	summary := &report.Summary
	flagged := &report.Flagged
	summary.TotalPackages = len(assessments)

	scored := 0
	var compatibilityTotal, communityTotal float64

	for _, assessment := range assessments {
		name := assessment.Requirement.Name

		if count := len(assessment.Vulnerabilities); count > 0 {
			summary.VulnerabilityCount += count
			summary.VulnerablePackages++
			flagged.Vulnerable = append(flagged.Vulnerable, name)
		}

		if assessment.UpdateAvailable {
			summary.PackagesWithUpdates++
			flagged.Outdated = append(flagged.Outdated, name)
		}

		if assessment.Deprecated {
			summary.DeprecatedPackages++
			flagged.Deprecated = append(flagged.Deprecated, name)
		}

		if assessment.Alternative != nil {
			summary.AlternativesSuggested++
			if assessment.Alternative.Rationale == rationale.Performance {
				flagged.Performance = append(flagged.Performance, name)
			} else {
				flagged.Modernization = append(flagged.Modernization, name)
			}
		}

		if assessment.Scored {
			scored++
			compatibilityTotal += assessment.CompatibilityScore
			communityTotal += assessment.CommunityScore

			if assessment.CompatibilityScore < CompatibilityThreshold {
				summary.CompatibilityIssues++
				flagged.CompatibilityIssues = append(flagged.CompatibilityIssues, name)
			}
		}

		report.Warnings = append(report.Warnings, assessment.Warnings...)
	}

	summary.CompatibilityScore = neutralScore
	summary.CommunityScore = neutralScore
	if scored > 0 {
		summary.CompatibilityScore = round(compatibilityTotal / float64(scored))
		summary.CommunityScore = round(communityTotal / float64(scored))
	}

	return report
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}
