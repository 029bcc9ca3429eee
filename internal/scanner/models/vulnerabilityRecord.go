package scannermodels

import "github.com/RobsonDevCode/pyninja/internal/versioning"

type VulnerabilityRecord struct {
	Package          string                `json:"package"`
	AdvisoryId       string                `json:"advisory_id"`
	Aliases          []string              `json:"aliases,omitempty"`
	Summary          string                `json:"summary"`
	Severity         string                `json:"severity"`
	AffectedRange    string                `json:"affected_range"`
	Ranges           []versioning.Interval `json:"ranges,omitempty"`
	AffectedVersions []string              `json:"affected_versions,omitempty"`
	FixedIn          string                `json:"fixed_in,omitempty"`
	Source           string                `json:"source"`
	Url              string                `json:"url,omitempty"`
}
