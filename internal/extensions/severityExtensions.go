package extensions

import (
	"strings"

	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
)

var Severities = []string{"low", "medium", "high", "critical"}

// SeverityRank orders severities, unknown ranks below low.
func SeverityRank(severity string) int {
	switch strings.ToLower(severity) {
	case "critical":
		return 4
	case "high":
		return 3
	case "medium", "moderate":
		return 2
	case "low":
		return 1
	default:
		return 0
	}
}

func IsSeverity(severity string) bool {
	return SeverityRank(severity) > 0
}

// FilterBySeverity returns copies of assessments keeping only vulnerabilities at or
// above minimum. Records with an unknown severity are kept so nothing is hidden.
func FilterBySeverity(assessments []scannermodels.PackageAssessment, minimum string) []scannermodels.PackageAssessment {
	threshold := SeverityRank(minimum)
	filtered := make([]scannermodels.PackageAssessment, len(assessments))

	for i, assessment := range assessments {
		kept := []scannermodels.VulnerabilityRecord{}
		for _, vulnerability := range assessment.Vulnerabilities {
			rank := SeverityRank(vulnerability.Severity)
			if rank == 0 || rank >= threshold {
				kept = append(kept, vulnerability)
			}
		}
		assessment.Vulnerabilities = kept
		filtered[i] = assessment
	}

	return filtered
}
