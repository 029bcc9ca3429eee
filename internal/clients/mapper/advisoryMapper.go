package mapper

import (
	"strconv"
	"strings"

	"github.com/RobsonDevCode/pyninja/internal/clients/models"
	vulnerabilitydatabases "github.com/RobsonDevCode/pyninja/internal/constants/vulnerabilityDatabases"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
	"github.com/goark/go-cvss/v3/metric"
)

const osvVulnerabilityUrl = "https://osv.dev/vulnerability/"

// MapOsvVulnerabilities converts OSV entries into records for packageName, skipping
// entries that only affect other packages.
func MapOsvVulnerabilities(packageName string, vulns []models.OsvVulnerability) []scannermodels.VulnerabilityRecord {
	normalized := extensions.NormalizeName(packageName)

	var records []scannermodels.VulnerabilityRecord
	for _, vuln := range vulns {
		record := scannermodels.VulnerabilityRecord{
			Package:    packageName,
			AdvisoryId: vuln.Id,
			Aliases:    vuln.Aliases,
			Summary:    osvSummary(vuln),
			Severity:   osvSeverity(vuln),
			Source:     vulnerabilitydatabases.Osv,
			Url:        osvVulnerabilityUrl + vuln.Id,
		}

		matched := false
		for _, affected := range vuln.Affected {
			if affected.Package.Name != "" && extensions.NormalizeName(affected.Package.Name) != normalized {
				continue
			}
			if affected.Package.Ecosystem != "" && affected.Package.Ecosystem != vulnerabilitydatabases.OsvEcosystem {
				continue
			}

			matched = true
			for _, r := range affected.Ranges {
				if r.Type == "GIT" {
					continue
				}
				intervals, fixed := osvRangeIntervals(r.Events)
				record.Ranges = append(record.Ranges, intervals...)
				if record.FixedIn == "" {
					record.FixedIn = fixed
				}
			}
			record.AffectedVersions = append(record.AffectedVersions, affected.Versions...)

			if record.Severity == "unknown" {
				if severity, ok := affected.DatabaseSpecific["severity"].(string); ok {
					record.Severity = NormalizeSeverity(severity)
				}
			}
		}

		if !matched {
			continue
		}

		record.AffectedRange = describeAffected(record)
		records = append(records, record)
	}

	return records
}

// osvRangeIntervals walks introduced/fixed/last_affected events in order.
func osvRangeIntervals(events []models.OsvEvent) ([]versioning.Interval, string) {
	var intervals []versioning.Interval
	var current *versioning.Interval
	var firstFixed string

	for _, event := range events {
		switch {
		case event.Introduced != "":
			current = &versioning.Interval{}
			if event.Introduced != "0" {
				current.Lower = event.Introduced
				current.LowerInclusive = true
			}
		case event.Fixed != "" && current != nil:
			current.Upper = event.Fixed
			intervals = append(intervals, *current)
			current = nil
			if firstFixed == "" {
				firstFixed = event.Fixed
			}
		case event.LastAffected != "" && current != nil:
			current.Upper = event.LastAffected
			current.UpperInclusive = true
			intervals = append(intervals, *current)
			current = nil
		case event.Limit != "" && current != nil:
			current.Upper = event.Limit
			intervals = append(intervals, *current)
			current = nil
		}
	}

	if current != nil {
		intervals = append(intervals, *current)
	}

	return intervals, firstFixed
}

func osvSummary(vuln models.OsvVulnerability) string {
	if vuln.Summary != "" {
		return vuln.Summary
	}
	details := strings.TrimSpace(vuln.Details)
	if i := strings.IndexByte(details, '\n'); i >= 0 {
		details = details[:i]
	}
	return extensions.TruncateString(details, 200)
}

func osvSeverity(vuln models.OsvVulnerability) string {
	if severity, ok := vuln.DatabaseSpecific["severity"].(string); ok && severity != "" {
		return NormalizeSeverity(severity)
	}

	for _, s := range vuln.Severity {
		if score, ok := cvssScore(s); ok {
			return severityFromScore(score)
		}
	}

	return "unknown"
}

// cvssScore accepts a bare base score or a CVSS v3 vector.
func cvssScore(severity models.OsvSeverity) (float64, bool) {
	if score, err := strconv.ParseFloat(severity.Score, 64); err == nil {
		return score, true
	}

	if !strings.HasPrefix(severity.Score, "CVSS:3") {
		return 0, false
	}

	base, err := metric.NewBase().Decode(severity.Score)
	if err != nil {
		return 0, false
	}
	return base.Score(), true
}

func severityFromScore(score float64) string {
	switch {
	case score >= 9.0:
		return "critical"
	case score >= 7.0:
		return "high"
	case score >= 4.0:
		return "medium"
	case score > 0:
		return "low"
	default:
		return "unknown"
	}
}

// NormalizeSeverity maps database wording onto low, medium, high, critical or unknown.
func NormalizeSeverity(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical":
		return "critical"
	case "high":
		return "high"
	case "moderate", "medium":
		return "medium"
	case "low":
		return "low"
	default:
		return "unknown"
	}
}

// MapGithubAdvisories converts global advisories into records for packageName.
func MapGithubAdvisories(packageName string, advisories []models.GithubAdvisory) []scannermodels.VulnerabilityRecord {
	normalized := extensions.NormalizeName(packageName)

	var records []scannermodels.VulnerabilityRecord
	for _, advisory := range advisories {
		if advisory.WithdrawnAt != nil {
			continue
		}

		record := scannermodels.VulnerabilityRecord{
			Package:    packageName,
			AdvisoryId: advisory.GhsaId,
			Summary:    advisory.Summary,
			Severity:   NormalizeSeverity(advisory.Severity),
			Source:     vulnerabilitydatabases.Github,
			Url:        advisory.HtmlUrl,
		}
		if advisory.CveId != "" {
			record.Aliases = []string{advisory.CveId}
		}

		matched := false
		for _, vulnerability := range advisory.Vulnerabilities {
			if extensions.NormalizeName(vulnerability.Package.Name) != normalized {
				continue
			}
			if vulnerability.Package.Ecosystem != "" && vulnerability.Package.Ecosystem != vulnerabilitydatabases.GithubEcosystem {
				continue
			}

			matched = true
			constraint, err := versioning.ParseConstraint(vulnerability.VulnerableVersionRange)
			if err != nil {
				// unparseable range: treat as affecting every version
				record.Ranges = append(record.Ranges, versioning.Interval{})
			} else {
				record.Ranges = append(record.Ranges, constraint.Intervals()...)
			}

			if record.FixedIn == "" {
				record.FixedIn = vulnerability.FirstPatchedVersion
			}
		}

		if !matched {
			continue
		}

		record.AffectedRange = describeAffected(record)
		records = append(records, record)
	}

	return records
}

func describeAffected(record scannermodels.VulnerabilityRecord) string {
	if len(record.Ranges) > 0 {
		return versioning.DescribeIntervals(record.Ranges)
	}
	if len(record.AffectedVersions) > 0 {
		return "==" + strings.Join(record.AffectedVersions, ", ==")
	}
	return "*"
}
