package mapper_test

import (
	"testing"
	"time"

	"github.com/RobsonDevCode/pyninja/internal/clients/mapper"
	"github.com/RobsonDevCode/pyninja/internal/clients/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOsvVulnerabilities(t *testing.T) {
	vulns := []models.OsvVulnerability{
		{
			Id:               "GHSA-j8r2-6x86-q33q",
			Aliases:          []string{"CVE-2023-32681"},
			Summary:          "Unintended leak of Proxy-Authorization header",
			DatabaseSpecific: map[string]interface{}{"severity": "MODERATE"},
			Affected: []models.OsvAffected{{
				Package: models.OsvPackage{Name: "requests", Ecosystem: "PyPI"},
				Ranges: []models.OsvRange{{
					Type: "ECOSYSTEM",
					Events: []models.OsvEvent{
						{Introduced: "2.3.0"},
						{Fixed: "2.31.0"},
					},
				}},
				Versions: []string{"2.25.0", "2.30.0"},
			}},
		},
		{
			Id: "PYSEC-OTHER",
			Affected: []models.OsvAffected{{
				Package: models.OsvPackage{Name: "urllib3", Ecosystem: "PyPI"},
			}},
		},
	}

	records := mapper.MapOsvVulnerabilities("Requests", vulns)

	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "GHSA-j8r2-6x86-q33q", record.AdvisoryId)
	assert.Equal(t, "medium", record.Severity)
	assert.Equal(t, "2.31.0", record.FixedIn)
	assert.Equal(t, ">=2.3.0, <2.31.0", record.AffectedRange)
	assert.Equal(t, []string{"2.25.0", "2.30.0"}, record.AffectedVersions)
	assert.Equal(t, "osv", record.Source)
}

func TestMapOsvOpenEndedAndLastAffected(t *testing.T) {
	vulns := []models.OsvVulnerability{{
		Id:       "PYSEC-1",
		Details:  "first line\nsecond line",
		Severity: []models.OsvSeverity{{Type: "CVSS_V3", Score: "9.8"}},
		Affected: []models.OsvAffected{{
			Package: models.OsvPackage{Name: "pyyaml", Ecosystem: "PyPI"},
			Ranges: []models.OsvRange{{
				Type: "ECOSYSTEM",
				Events: []models.OsvEvent{
					{Introduced: "0"},
					{LastAffected: "5.3"},
					{Introduced: "6.0"},
				},
			}},
		}},
	}}

	records := mapper.MapOsvVulnerabilities("PyYAML", vulns)

	require.Len(t, records, 1)
	assert.Equal(t, "<=5.3 || >=6.0", records[0].AffectedRange)
	assert.Equal(t, "critical", records[0].Severity)
	assert.Equal(t, "first line", records[0].Summary)
}

func TestMapOsvSeverityFromCvssVector(t *testing.T) {
	tests := []struct {
		name     string
		vuln     models.OsvVulnerability
		severity string
	}{
		{
			name: "critical vector",
			vuln: models.OsvVulnerability{Severity: []models.OsvSeverity{
				{Type: "CVSS_V3", Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"},
			}},
			severity: "critical",
		},
		{
			name: "medium vector",
			vuln: models.OsvVulnerability{Severity: []models.OsvSeverity{
				{Type: "CVSS_V3", Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:R/S:U/C:L/I:L/A:N"},
			}},
			severity: "medium",
		},
		{
			name: "unscorable vector falls back to affected severity",
			vuln: models.OsvVulnerability{
				Severity: []models.OsvSeverity{{Type: "CVSS_V4", Score: "CVSS:4.0/AV:N"}},
				Affected: []models.OsvAffected{{
					Package:          models.OsvPackage{Name: "django", Ecosystem: "PyPI"},
					DatabaseSpecific: map[string]interface{}{"severity": "HIGH"},
				}},
			},
			severity: "high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.vuln.Id = "PYSEC-2024-1"
			if tt.vuln.Affected == nil {
				tt.vuln.Affected = []models.OsvAffected{{Package: models.OsvPackage{Name: "django", Ecosystem: "PyPI"}}}
			}

			records := mapper.MapOsvVulnerabilities("django", []models.OsvVulnerability{tt.vuln})

			require.Len(t, records, 1)
			assert.Equal(t, tt.severity, records[0].Severity)
		})
	}
}

func TestMapGithubAdvisories(t *testing.T) {
	withdrawn := time.Now()
	advisories := []models.GithubAdvisory{
		{
			GhsaId:   "GHSA-x84v-xcm2-53pg",
			CveId:    "CVE-2018-18074",
			Summary:  "Insufficiently Protected Credentials in Requests",
			Severity: "high",
			Vulnerabilities: []models.AdvisoryVulnerability{{
				Package:                models.Package{Ecosystem: "pip", Name: "requests"},
				VulnerableVersionRange: "<= 2.19.1",
				FirstPatchedVersion:    "2.20.0",
			}},
		},
		{
			GhsaId:      "GHSA-withdrawn",
			WithdrawnAt: &withdrawn,
			Vulnerabilities: []models.AdvisoryVulnerability{{
				Package: models.Package{Ecosystem: "pip", Name: "requests"},
			}},
		},
	}

	records := mapper.MapGithubAdvisories("requests", advisories)

	require.Len(t, records, 1)
	assert.Equal(t, "<=2.19.1", records[0].AffectedRange)
	assert.Equal(t, []string{"CVE-2018-18074"}, records[0].Aliases)
	assert.Equal(t, "2.20.0", records[0].FixedIn)
	assert.Equal(t, "github", records[0].Source)
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, "medium", mapper.NormalizeSeverity("Moderate"))
	assert.Equal(t, "critical", mapper.NormalizeSeverity("CRITICAL"))
	assert.Equal(t, "unknown", mapper.NormalizeSeverity(""))
}
