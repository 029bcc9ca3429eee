package manifestreaderservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	manifestformats "github.com/RobsonDevCode/pyninja/internal/constants/manifestFormats"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
)

type tomlDocument struct {
	values   map[string]interface{}
	metadata toml.MetaData
}

func decodeToml(path string, format string, content []byte) (tomlDocument, error) {
	values := map[string]interface{}{}
	metadata, err := toml.Decode(string(content), &values)
	if err != nil {
		line := 0
		var parseErr toml.ParseError
		if errors.As(err, &parseErr) {
			line = parseErr.Position.Line
		}
		return tomlDocument{}, analysiserrors.NewParseError(path, format, line, err)
	}

	return tomlDocument{values: values, metadata: metadata}, nil
}

// table walks nested tables, returning nil when any level is missing.
func (d tomlDocument) table(keys ...string) map[string]interface{} {
	current := d.values
	for _, key := range keys {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// orderedKeys lists the direct children of a table in the order they appear in the file.
func (d tomlDocument) orderedKeys(table map[string]interface{}, prefix ...string) []string {
	var ordered []string
	seen := map[string]bool{}

	for _, key := range d.metadata.Keys() {
		if len(key) != len(prefix)+1 || !hasPrefix(key, prefix) {
			continue
		}
		name := key[len(prefix)]
		if _, ok := table[name]; ok && !seen[name] {
			seen[name] = true
			ordered = append(ordered, name)
		}
	}

	// keys the metadata did not report, e.g. from dotted inline definitions
	var rest []string
	for name := range table {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}

func hasPrefix(key toml.Key, prefix []string) bool {
	for i, part := range prefix {
		if key[i] != part {
			return false
		}
	}
	return true
}

// parsePyproject reads PEP 621 and Poetry dependency declarations.
func parsePyproject(path string, content []byte) (parseResult, error) {
	document, err := decodeToml(path, manifestformats.Pyproject, content)
	if err != nil {
		return parseResult{}, err
	}

	var result parseResult
	found := false

	if project := document.table("project"); project != nil {
		if dependencies, ok := project["dependencies"]; ok {
			found = true
			if err := appendSpecArray(&result, path, "project.dependencies", dependencies); err != nil {
				return parseResult{}, err
			}
		}

		if optional := document.table("project", "optional-dependencies"); optional != nil {
			found = true
			for _, group := range document.orderedKeys(optional, "project", "optional-dependencies") {
				if err := appendSpecArray(&result, path, "project.optional-dependencies."+group, optional[group]); err != nil {
					return parseResult{}, err
				}
			}
		}
	}

	poetryTables := [][]string{
		{"tool", "poetry", "dependencies"},
		{"tool", "poetry", "dev-dependencies"},
	}
	if groups := document.table("tool", "poetry", "group"); groups != nil {
		for _, group := range document.orderedKeys(groups, "tool", "poetry", "group") {
			poetryTables = append(poetryTables, []string{"tool", "poetry", "group", group, "dependencies"})
		}
	}

	for _, keys := range poetryTables {
		table := document.table(keys...)
		if table == nil {
			continue
		}
		found = true

		for _, name := range document.orderedKeys(table, keys...) {
			if strings.EqualFold(name, "python") {
				continue
			}

			constraint, err := poetryConstraint(table[name])
			if err != nil {
				return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Pyproject, 0,
					fmt.Errorf("%s.%s: %w", strings.Join(keys, "."), name, err))
			}
			result.requirements = append(result.requirements, tableRequirement(name, constraint, table[name]))
		}
	}

	if !found {
		return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Pyproject, 0,
			errors.New("no [project] dependencies or [tool.poetry] dependency tables found"))
	}

	return result, nil
}

func appendSpecArray(result *parseResult, path string, key string, value interface{}) error {
	specs, ok := value.([]interface{})
	if !ok {
		return analysiserrors.NewParseError(path, manifestformats.Pyproject, 0, fmt.Errorf("%s must be an array of strings", key))
	}

	for _, raw := range specs {
		spec, ok := raw.(string)
		if !ok {
			return analysiserrors.NewParseError(path, manifestformats.Pyproject, 0, fmt.Errorf("%s must be an array of strings", key))
		}

		requirement, err := ParseRequirementSpec(spec)
		if err != nil {
			return analysiserrors.NewParseError(path, manifestformats.Pyproject, 0, fmt.Errorf("%s: %w", key, err))
		}
		result.requirements = append(result.requirements, *requirement)
	}

	return nil
}

// poetryConstraint accepts "^1.2", {version = "^1.2"} and arrays of such tables.
func poetryConstraint(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return normalizeConstraint(v)
	case map[string]interface{}:
		version, _ := v["version"].(string)
		return normalizeConstraint(version)
	case []map[string]interface{}:
		var alternatives []string
		for _, entry := range v {
			version, _ := entry["version"].(string)
			constraint, err := normalizeConstraint(version)
			if err != nil {
				return "", err
			}
			if constraint == "" {
				return "", nil
			}
			alternatives = append(alternatives, constraint)
		}
		return strings.Join(alternatives, " || "), nil
	case []interface{}:
		var alternatives []string
		for _, entry := range v {
			table, ok := entry.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("unsupported dependency value %v", entry)
			}
			version, _ := table["version"].(string)
			constraint, err := normalizeConstraint(version)
			if err != nil {
				return "", err
			}
			if constraint == "" {
				return "", nil
			}
			alternatives = append(alternatives, constraint)
		}
		return strings.Join(alternatives, " || "), nil
	}
	return "", fmt.Errorf("unsupported dependency value %v", value)
}

// normalizeConstraint maps "*" to unconstrained and validates the rest.
func normalizeConstraint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "*" {
		return "", nil
	}
	if _, err := versioning.ParseConstraint(raw); err != nil {
		return "", err
	}
	return raw, nil
}

func parsePipfile(path string, content []byte) (parseResult, error) {
	document, err := decodeToml(path, manifestformats.Pipfile, content)
	if err != nil {
		return parseResult{}, err
	}

	var result parseResult
	found := false
	for _, section := range []string{"packages", "dev-packages"} {
		table := document.table(section)
		if table == nil {
			continue
		}
		found = true

		for _, name := range document.orderedKeys(table, section) {
			constraint, err := pipfileConstraint(table[name])
			if err != nil {
				return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Pipfile, 0, fmt.Errorf("%s.%s: %w", section, name, err))
			}
			result.requirements = append(result.requirements, tableRequirement(name, constraint, table[name]))
		}
	}

	if !found {
		return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Pipfile, 0, errors.New("no [packages] or [dev-packages] table found"))
	}

	return result, nil
}

// tableRequirement keeps extras and markers from the table form of a Poetry or Pipfile entry.
func tableRequirement(name string, constraint string, value interface{}) scannermodels.PackageRequirement {
	requirement := scannermodels.PackageRequirement{Name: name, Constraint: constraint}

	table, ok := value.(map[string]interface{})
	if !ok {
		return requirement
	}

	if extras, ok := table["extras"].([]interface{}); ok {
		for _, extra := range extras {
			if s, ok := extra.(string); ok && s != "" {
				requirement.Extras = append(requirement.Extras, s)
			}
		}
	}
	requirement.Markers, _ = table["markers"].(string)

	return requirement
}

func pipfileConstraint(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return normalizeConstraint(v)
	case map[string]interface{}:
		version, _ := v["version"].(string)
		return normalizeConstraint(version)
	}
	return "", fmt.Errorf("unsupported dependency value %v", value)
}

// parseLockfile reads poetry.lock, or Pipfile.lock when the content is JSON.
func parseLockfile(path string, content []byte) (parseResult, error) {
	if trimmed := strings.TrimSpace(string(content)); strings.HasPrefix(trimmed, "{") {
		return parsePipfileLock(path, content)
	}

	var lock struct {
		Package []struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"package"`
	}

	if _, err := toml.Decode(string(content), &lock); err != nil {
		line := 0
		var parseErr toml.ParseError
		if errors.As(err, &parseErr) {
			line = parseErr.Position.Line
		}
		return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Lockfile, line, err)
	}

	if len(lock.Package) == 0 {
		return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Lockfile, 0, errors.New("no [[package]] entries found"))
	}

	var result parseResult
	for _, pkg := range lock.Package {
		if pkg.Name == "" || !versioning.IsValid(pkg.Version) {
			return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Lockfile, 0,
				fmt.Errorf("package entry %q has an invalid version %q", pkg.Name, pkg.Version))
		}
		result.requirements = append(result.requirements, scannermodels.PackageRequirement{Name: pkg.Name, Constraint: "==" + pkg.Version})
	}

	return result, nil
}

func parsePipfileLock(path string, content []byte) (parseResult, error) {
	var lock map[string]json.RawMessage
	if err := json.Unmarshal(content, &lock); err != nil {
		return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Lockfile, 0, err)
	}

	var result parseResult
	found := false
	for _, section := range []string{"default", "develop"} {
		raw, ok := lock[section]
		if !ok {
			continue
		}
		found = true

		var packages map[string]struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(raw, &packages); err != nil {
			return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Lockfile, 0, fmt.Errorf("%s: %w", section, err))
		}

		names := make([]string, 0, len(packages))
		for name := range packages {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			constraint, err := normalizeConstraint(packages[name].Version)
			if err != nil {
				return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Lockfile, 0, fmt.Errorf("%s.%s: %w", section, name, err))
			}
			result.requirements = append(result.requirements, scannermodels.PackageRequirement{Name: name, Constraint: constraint})
		}
	}

	if !found {
		return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Lockfile, 0, errors.New("no default or develop sections found"))
	}

	return result, nil
}
