package reportaggregatorservice

import (
	"testing"
	"time"

	"github.com/RobsonDevCode/pyninja/internal/constants/rationale"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assessment(name string) scannermodels.PackageAssessment {
	return scannermodels.PackageAssessment{
		Requirement:        scannermodels.PackageRequirement{Name: name, NormalizedName: name},
		Vulnerabilities:    []scannermodels.VulnerabilityRecord{},
		CompatibilityScore: 0.9,
		CommunityScore:     0.8,
		Scored:             true,
	}
}

func TestAggregateCountsAndFlags(t *testing.T) {
	requests := assessment("requests")
	requests.Vulnerabilities = []scannermodels.VulnerabilityRecord{{AdvisoryId: "A"}, {AdvisoryId: "B"}}
	requests.UpdateAvailable = true
	requests.Alternative = &scannermodels.Alternative{Original: "requests", Replacement: "httpx", Rationale: rationale.Performance}

	numpy := assessment("numpy")
	numpy.UpdateAvailable = true
	numpy.CompatibilityScore = 0.5
	numpy.Warnings = []string{"package metadata unavailable for numpy"}

	pycrypto := assessment("pycrypto")
	pycrypto.Deprecated = true
	pycrypto.Vulnerabilities = []scannermodels.VulnerabilityRecord{{AdvisoryId: "C"}}
	pycrypto.Alternative = &scannermodels.Alternative{Original: "pycrypto", Replacement: "pycryptodome", Rationale: rationale.Security}

	aggregator := NewReportAggregator()
	aggregator.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	report := aggregator.Aggregate([]scannermodels.PackageAssessment{requests, numpy, pycrypto}, ReportOptions{
		ManifestPath:     "requirements.txt",
		TargetPython:     "3.11",
		VulnerabilityDb:  "osv",
		ManifestWarnings: []string{"line 4 skipped: pip option"},
	})

	summary := report.Summary
	assert.Equal(t, 3, summary.TotalPackages)
	assert.Equal(t, 3, summary.VulnerabilityCount)
	assert.Equal(t, 2, summary.VulnerablePackages)
	assert.Equal(t, 2, summary.PackagesWithUpdates)
	assert.Equal(t, 1, summary.DeprecatedPackages)
	assert.Equal(t, 2, summary.AlternativesSuggested)
	assert.Equal(t, 1, summary.CompatibilityIssues)
	assert.InDelta(t, 0.77, summary.CompatibilityScore, 1e-9)
	assert.InDelta(t, 0.8, summary.CommunityScore, 1e-9)

	assert.Equal(t, []string{"requests", "pycrypto"}, report.Flagged.Vulnerable)
	assert.Equal(t, []string{"requests", "numpy"}, report.Flagged.Outdated)
	assert.Equal(t, []string{"pycrypto"}, report.Flagged.Deprecated)
	assert.Equal(t, []string{"numpy"}, report.Flagged.CompatibilityIssues)
	assert.Equal(t, []string{"pycrypto"}, report.Flagged.Modernization)
	assert.Equal(t, []string{"requests"}, report.Flagged.Performance)

	assert.Equal(t, []string{"line 4 skipped: pip option", "package metadata unavailable for numpy"}, report.Warnings)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), report.Metadata.GeneratedAt)
	assert.True(t, report.HasIssues())
}

func TestAggregateOneAssessmentPerPackage(t *testing.T) {
	assessments := []scannermodels.PackageAssessment{assessment("a"), assessment("b"), assessment("c")}

	report := NewReportAggregator().Aggregate(assessments, ReportOptions{})

	require.Len(t, report.Assessments, 3)
	assert.Equal(t, report.Summary.TotalPackages, len(report.Assessments))
	assert.False(t, report.HasIssues())
}

func TestAggregateUnscoredRunIsNeutral(t *testing.T) {
	unscored := assessment("flask")
	unscored.Scored = false
	unscored.CompatibilityScore = 0.5

	report := NewReportAggregator().Aggregate([]scannermodels.PackageAssessment{unscored}, ReportOptions{Partial: true})

	assert.Equal(t, 0, report.Summary.CompatibilityIssues)
	assert.Equal(t, 0.5, report.Summary.CompatibilityScore)
	assert.True(t, report.Metadata.Partial)
}

func TestAggregateEmpty(t *testing.T) {
	report := NewReportAggregator().Aggregate(nil, ReportOptions{})

	assert.NotNil(t, report.Assessments)
	assert.NotNil(t, report.Flagged.Vulnerable)
	assert.Zero(t, report.Summary.TotalPackages)
}
