package modernizationadvisorservice_test

import (
	"testing"

	"github.com/RobsonDevCode/pyninja/internal/constants/rationale"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	modernizationadvisorservice "github.com/RobsonDevCode/pyninja/internal/services/modernizationAdvisorService"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requirement(name string) scannermodels.PackageRequirement {
	return scannermodels.PackageRequirement{Name: name, NormalizedName: extensions.NormalizeName(name)}
}

func TestAdviseBuiltinTable(t *testing.T) {
	advisor := modernizationadvisorservice.NewModernizationAdvisor(modernizationadvisorservice.AdvisorOptions{Modernize: true})

	alternative := advisor.Advise(requirement("PyCrypto"))
	require.NotNil(t, alternative)
	assert.Equal(t, "pycryptodome", alternative.Replacement)
	assert.Equal(t, rationale.Security, alternative.Rationale)
	assert.Equal(t, "PyCrypto", alternative.Original)

	removal := advisor.Advise(requirement("enum34"))
	require.NotNil(t, removal)
	assert.True(t, removal.IsRemoval())

	assert.Nil(t, advisor.Advise(requirement("numpy")))
}

func TestPerformanceEntriesNeedPerformanceFocus(t *testing.T) {
	plain := modernizationadvisorservice.NewModernizationAdvisor(modernizationadvisorservice.AdvisorOptions{Modernize: true})
	assert.Nil(t, plain.Advise(requirement("requests")))

	focused := modernizationadvisorservice.NewModernizationAdvisor(modernizationadvisorservice.AdvisorOptions{Modernize: true, PerformanceFocus: true})
	alternative := focused.Advise(requirement("requests"))
	require.NotNil(t, alternative)
	assert.Equal(t, "httpx", alternative.Replacement)
	assert.Equal(t, rationale.Performance, alternative.Rationale)
}

func TestOverridesTakePrecedence(t *testing.T) {
	advisor := modernizationadvisorservice.NewModernizationAdvisor(modernizationadvisorservice.AdvisorOptions{
		Modernize:          true,
		CustomAlternatives: map[string]string{"PyCrypto": "cryptography", "left_pad": ""},
	})

	alternative := advisor.Advise(requirement("pycrypto"))
	require.NotNil(t, alternative)
	assert.Equal(t, "cryptography", alternative.Replacement)
	assert.True(t, alternative.UserOverride)

	removal := advisor.Advise(requirement("left-pad"))
	require.NotNil(t, removal)
	assert.True(t, removal.IsRemoval())
}

func TestExcludedPackagesNeverGetSuggestions(t *testing.T) {
	advisor := modernizationadvisorservice.NewModernizationAdvisor(modernizationadvisorservice.AdvisorOptions{
		Modernize:          true,
		PerformanceFocus:   true,
		ExcludePackages:    []string{"six", "Requests", "pycrypto"},
		CustomAlternatives: map[string]string{"pycrypto": "cryptography"},
	})

	for _, name := range []string{"six", "requests", "PyCrypto"} {
		assert.Nil(t, advisor.Advise(requirement(name)), name)
	}
}

func TestModernizeOffOnlyAppliesOverrides(t *testing.T) {
	advisor := modernizationadvisorservice.NewModernizationAdvisor(modernizationadvisorservice.AdvisorOptions{
		CustomAlternatives: map[string]string{"flask": "quart"},
	})

	assert.Nil(t, advisor.Advise(requirement("pycrypto")))
	require.NotNil(t, advisor.Advise(requirement("flask")))
}
