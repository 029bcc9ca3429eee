package scannermodels

type PackageAssessment struct {
	Requirement        PackageRequirement    `json:"requirement"`
	Vulnerabilities    []VulnerabilityRecord `json:"vulnerabilities"`
	Alternative        *Alternative          `json:"alternative,omitempty"`
	CompatibilityScore float64               `json:"compatibility_score"`
	CommunityScore     float64               `json:"community_score"`
	Scored             bool                  `json:"scored"`
	CurrentVersion     string                `json:"current_version,omitempty"`
	LatestVersion      string                `json:"latest_version,omitempty"`
	LatestStable       string                `json:"latest_stable_version,omitempty"`
	UpdateAvailable    bool                  `json:"update_available"`
	Deprecated         bool                  `json:"deprecated"`
	DeprecationMessage string                `json:"deprecation_message,omitempty"`
	Warnings           []string              `json:"warnings,omitempty"`
	Cancelled          bool                  `json:"cancelled,omitempty"`
}

func (a *PackageAssessment) AddWarning(warning string) {
	a.Warnings = append(a.Warnings, warning)
}
