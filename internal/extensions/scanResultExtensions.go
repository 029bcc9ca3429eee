package extensions

import (
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
)

// CollectAssessments drains scans into a slice indexed by manifest position.
// Packages that never produced a result are left nil.
func CollectAssessments(scans <-chan scannermodels.ConcurrentScanResult, total int) ([]*scannermodels.PackageAssessment, []error) {
	assessments := make([]*scannermodels.PackageAssessment, total)
	var failed []error

	for scan := range scans {
		if scan.Err != nil {
			failed = append(failed, scan.Err)
		}

		if scan.Assessment != nil && scan.Index >= 0 && scan.Index < total {
			assessments[scan.Index] = scan.Assessment
		}
	}

	return assessments, failed
}

// FlattenVulnerabilities pairs every vulnerability with its assessment, keeping manifest order.
func FlattenVulnerabilities(assessments []scannermodels.PackageAssessment) []VulnerablePackage {
	var vulnerable []VulnerablePackage
	for i := range assessments {
		for _, vulnerability := range assessments[i].Vulnerabilities {
			vulnerable = append(vulnerable, VulnerablePackage{
				Assessment:    &assessments[i],
				Vulnerability: vulnerability,
			})
		}
	}
	return vulnerable
}

type VulnerablePackage struct {
	Assessment    *scannermodels.PackageAssessment
	Vulnerability scannermodels.VulnerabilityRecord
}
