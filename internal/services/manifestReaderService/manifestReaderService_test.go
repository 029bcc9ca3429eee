package manifestreaderservice_test

import (
	"os"
	"path/filepath"
	"testing"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	manifestformats "github.com/RobsonDevCode/pyninja/internal/constants/manifestFormats"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	manifestreaderservice "github.com/RobsonDevCode/pyninja/internal/services/manifestReaderService"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func names(requirements []scannermodels.PackageRequirement) []string {
	result := make([]string, 0, len(requirements))
	for _, requirement := range requirements {
		result = append(result, requirement.Name)
	}
	return result
}

const requirementsTxt = `# production deps
requests==2.25.0
numpy>=1.20.0,<2.0  # pinned below 2
Django[argon2] ~= 4.2 ; python_version >= "3.8"
-r base.txt
--index-url https://pypi.org/simple
git+https://github.com/psf/black.git#egg=black
./local/package
flask @ https://example.com/flask-2.0.tar.gz
urllib3 \
    >=1.26
pyyaml==6.0 --hash=sha256:abc123
Requests>=2.0
`

func TestReadRequirements(t *testing.T) {
	path := writeManifest(t, "requirements.txt", requirementsTxt)
	reader := manifestreaderservice.NewManifestReader()

	manifest, err := reader.ReadManifest(path, "")

	require.NoError(t, err)
	assert.Equal(t, manifestformats.Requirements, manifest.Format)
	assert.Equal(t, []string{"requests", "numpy", "Django", "flask", "urllib3", "pyyaml"}, names(manifest.Requirements))

	byName := map[string]scannermodels.PackageRequirement{}
	for _, requirement := range manifest.Requirements {
		byName[requirement.NormalizedName] = requirement
	}
	assert.Equal(t, "==2.25.0", byName["requests"].Constraint)
	assert.Equal(t, 2, byName["requests"].Line)
	assert.Equal(t, ">=1.20.0,<2.0", byName["numpy"].Constraint)
	assert.Equal(t, "~= 4.2", byName["django"].Constraint)
	assert.Equal(t, []string{"argon2"}, byName["django"].Extras)
	assert.Equal(t, `python_version >= "3.8"`, byName["django"].Markers)
	assert.Equal(t, "", byName["flask"].Constraint)
	assert.Equal(t, ">=1.26", byName["urllib3"].Constraint)
	assert.Equal(t, 10, byName["urllib3"].Line)
	assert.Equal(t, "==6.0", byName["pyyaml"].Constraint)

	assert.Contains(t, manifest.Warnings, "duplicate requirement Requests on line 13 ignored, keeping line 2")
	assert.Len(t, manifest.Warnings, 5)
}

func TestReadRequirementsRejectsGarbage(t *testing.T) {
	path := writeManifest(t, "requirements.txt", "requests==2.25.0\nthis is not valid!!\n")
	reader := manifestreaderservice.NewManifestReader()

	_, err := reader.ReadManifest(path, manifestformats.Requirements)

	var parseErr *analysiserrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)
	assert.ErrorIs(t, err, analysiserrors.ErrParse)
}

func TestReadPyproject(t *testing.T) {
	path := writeManifest(t, "pyproject.toml", `
[build-system]
requires = ["setuptools>=61"]

[project]
name = "demo"
dependencies = [
  "httpx>=0.24",
  "pydantic[email]>=2,<3",
]

[project.optional-dependencies]
test = ["pytest>=7"]

[tool.poetry.dependencies]
python = "^3.9"
rich = "^13.0"
click = { version = "~8.1", optional = true, extras = ["colorama"], markers = "sys_platform == 'win32'" }
pendulum = "*"

[tool.poetry.group.dev.dependencies]
black = "^23.1"
`)
	reader := manifestreaderservice.NewManifestReader()

	manifest, err := reader.ReadManifest(path, "")

	require.NoError(t, err)
	assert.Equal(t, manifestformats.Pyproject, manifest.Format)
	assert.Equal(t, []string{"httpx", "pydantic", "pytest", "rich", "click", "pendulum", "black"}, names(manifest.Requirements))
	assert.Equal(t, "~8.1", manifest.Requirements[4].Constraint)
	assert.Equal(t, []string{"colorama"}, manifest.Requirements[4].Extras)
	assert.Equal(t, "sys_platform == 'win32'", manifest.Requirements[4].Markers)
	assert.Equal(t, []string{"email"}, manifest.Requirements[1].Extras)
	assert.Equal(t, "", manifest.Requirements[5].Constraint)
}

func TestReadPipfile(t *testing.T) {
	path := writeManifest(t, "Pipfile", `
[[source]]
url = "https://pypi.org/simple"
name = "pypi"

[packages]
requests = "==2.25.0"
flask = "*"
django = { version = ">=4.0" }

[dev-packages]
pytest = ">=7.0"
`)
	reader := manifestreaderservice.NewManifestReader()

	manifest, err := reader.ReadManifest(path, "")

	require.NoError(t, err)
	assert.Equal(t, manifestformats.Pipfile, manifest.Format)
	assert.Equal(t, []string{"requests", "flask", "django", "pytest"}, names(manifest.Requirements))
	assert.Equal(t, ">=4.0", manifest.Requirements[2].Constraint)
}

func TestReadPoetryLock(t *testing.T) {
	path := writeManifest(t, "poetry.lock", `
[[package]]
name = "certifi"
version = "2023.7.22"

[[package]]
name = "idna"
version = "3.4"
`)
	reader := manifestreaderservice.NewManifestReader()

	manifest, err := reader.ReadManifest(path, "")

	require.NoError(t, err)
	assert.Equal(t, manifestformats.Lockfile, manifest.Format)
	require.Len(t, manifest.Requirements, 2)
	assert.Equal(t, "==2023.7.22", manifest.Requirements[0].Constraint)
}

func TestReadPipfileLock(t *testing.T) {
	path := writeManifest(t, "Pipfile.lock", `{
  "_meta": {"hash": {"sha256": "x"}},
  "default": {"requests": {"version": "==2.31.0"}, "idna": {"version": "==3.4"}},
  "develop": {"pytest": {"version": "==7.4.0"}}
}`)
	reader := manifestreaderservice.NewManifestReader()

	manifest, err := reader.ReadManifest(path, "")

	require.NoError(t, err)
	assert.Equal(t, []string{"idna", "requests", "pytest"}, names(manifest.Requirements))
}

func TestAutoDetectFallsBackThroughFormats(t *testing.T) {
	// no file name hint, content is a Pipfile
	path := writeManifest(t, "deps", "[packages]\nrequests = \"*\"\n")
	reader := manifestreaderservice.NewManifestReader()

	manifest, err := reader.ReadManifest(path, "")

	require.NoError(t, err)
	assert.Equal(t, manifestformats.Pipfile, manifest.Format)
}

func TestAutoDetectFailsWhenNothingMatches(t *testing.T) {
	path := writeManifest(t, "deps", "[tool.black]\nline-length = 88\n")
	reader := manifestreaderservice.NewManifestReader()

	_, err := reader.ReadManifest(path, "")

	assert.ErrorIs(t, err, analysiserrors.ErrParse)
}

func TestDeclaredFormatMismatchIsParseError(t *testing.T) {
	path := writeManifest(t, "requirements.txt", "requests==2.25.0\n")
	reader := manifestreaderservice.NewManifestReader()

	_, err := reader.ReadManifest(path, manifestformats.Pyproject)

	assert.ErrorIs(t, err, analysiserrors.ErrParse)
}

func TestUnknownFormatIsConfigError(t *testing.T) {
	path := writeManifest(t, "requirements.txt", "requests==2.25.0\n")
	reader := manifestreaderservice.NewManifestReader()

	_, err := reader.ReadManifest(path, "setup.cfg")

	assert.ErrorIs(t, err, analysiserrors.ErrConfig)
}

func TestResolveDirectoryUsesPriorityOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Pipfile"), []byte("[packages]\nflask = \"*\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[project]\ndependencies = [\"httpx\"]\n"), 0644))
	reader := manifestreaderservice.NewManifestReader()

	manifest, err := reader.ReadManifest(dir, "")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pyproject.toml"), manifest.Path)
	assert.Equal(t, []string{"httpx"}, names(manifest.Requirements))
}

func TestMissingFileIsParseError(t *testing.T) {
	reader := manifestreaderservice.NewManifestReader()

	_, err := reader.ReadManifest(filepath.Join(t.TempDir(), "requirements.txt"), "")

	assert.ErrorIs(t, err, analysiserrors.ErrParse)
}

func TestParsingIsIdempotent(t *testing.T) {
	path := writeManifest(t, "requirements.txt", requirementsTxt)
	reader := manifestreaderservice.NewManifestReader()

	first, err := reader.ReadManifest(path, "")
	require.NoError(t, err)
	second, err := reader.ReadManifest(path, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
