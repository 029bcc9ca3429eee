package scannermodels

import "time"

type RunReport struct {
	Metadata    RunMetadata         `json:"metadata"`
	Summary     ReportSummary       `json:"summary"`
	Flagged     FlaggedPackages     `json:"flagged"`
	Assessments []PackageAssessment `json:"assessments"`
	Warnings    []string            `json:"warnings"`
}

type RunMetadata struct {
	GeneratedAt     time.Time `json:"timestamp"`
	ManifestPath    string    `json:"manifest_path"`
	ManifestFormat  string    `json:"manifest_format"`
	TargetPython    string    `json:"python_version"`
	VulnerabilityDb string    `json:"vulnerability_db"`
	DryRun          bool      `json:"dry_run"`
	Partial         bool      `json:"partial"`
}

type ReportSummary struct {
	TotalPackages         int     `json:"total_packages"`
	PackagesWithUpdates   int     `json:"packages_with_updates"`
	VulnerabilityCount    int     `json:"security_vulnerabilities"`
	VulnerablePackages    int     `json:"vulnerable_packages"`
	DeprecatedPackages    int     `json:"deprecated_packages"`
	AlternativesSuggested int     `json:"alternatives_suggested"`
	CompatibilityIssues   int     `json:"compatibility_issues"`
	CompatibilityScore    float64 `json:"compatibility_score"`
	CommunityScore        float64 `json:"community_score"`
}

// FlaggedPackages lists package names per category in manifest order.
type FlaggedPackages struct {
	Vulnerable          []string `json:"security_issues"`
	Outdated            []string `json:"outdated_packages"`
	Deprecated          []string `json:"deprecated_packages"`
	CompatibilityIssues []string `json:"compatibility_issues"`
	Modernization       []string `json:"modernization_opportunities"`
	Performance         []string `json:"performance_opportunities"`
}

// HasIssues reports whether the run found vulnerabilities or deprecated packages.
func (r *RunReport) HasIssues() bool {
	return r.Summary.VulnerabilityCount > 0 || r.Summary.DeprecatedPackages > 0
}
