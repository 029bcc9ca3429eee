package manifestreaderservice

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	manifestformats "github.com/RobsonDevCode/pyninja/internal/constants/manifestFormats"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
)

var (
	requirementPattern = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*)$`)
	inlineComment      = regexp.MustCompile(`(^|\s)#.*$`)
	trailingOptions    = regexp.MustCompile(`\s--?[A-Za-z].*$`)
)

func parseRequirements(path string, content []byte) (parseResult, error) {
	var result parseResult

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	startLine := 0
	var pending strings.Builder

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if pending.Len() == 0 {
			startLine = lineNumber
		}

		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			pending.WriteString(" ")
			continue
		}
		pending.WriteString(line)

		logical := pending.String()
		pending.Reset()

		requirement, skipped, err := parseRequirementLine(logical)
		if err != nil {
			return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Requirements, startLine, err)
		}
		if skipped != "" {
			result.warnings = append(result.warnings, fmt.Sprintf("line %d skipped: %s", startLine, skipped))
			continue
		}
		if requirement == nil {
			continue
		}

		requirement.Line = startLine
		result.requirements = append(result.requirements, *requirement)
	}

	if err := scanner.Err(); err != nil {
		return parseResult{}, analysiserrors.NewParseError(path, manifestformats.Requirements, lineNumber, err)
	}

	return result, nil
}

// parseRequirementLine returns nil for blank and comment lines, and a reason for
// lines that are valid pip input but not a named requirement.
func parseRequirementLine(line string) (*scannermodels.PackageRequirement, string, error) {
	line = strings.TrimSpace(inlineComment.ReplaceAllString(line, ""))
	if line == "" {
		return nil, "", nil
	}

	if strings.HasPrefix(line, "-") {
		return nil, "pip option " + strings.Fields(line)[0], nil
	}

	if isUrlOrPath(line) {
		return nil, "unnamed url or path requirement", nil
	}

	line = strings.TrimSpace(trailingOptions.ReplaceAllString(line, ""))
	requirement, err := ParseRequirementSpec(line)
	if err != nil {
		return nil, "", err
	}
	return requirement, "", nil
}

func isUrlOrPath(line string) bool {
	return strings.Contains(strings.SplitN(line, "@", 2)[0], "://") ||
		strings.HasPrefix(line, "git+") ||
		strings.HasPrefix(line, ".") ||
		strings.HasPrefix(line, "/") ||
		strings.HasPrefix(line, "~")
}

// ParseRequirementSpec parses a PEP 508 string such as `requests[socks]>=2.0; python_version>"3.7"`.
// Direct references are unconstrained.
func ParseRequirementSpec(spec string) (*scannermodels.PackageRequirement, error) {
	spec = strings.TrimSpace(spec)
	markers := ""
	if i := strings.Index(spec, ";"); i >= 0 {
		markers = strings.TrimSpace(spec[i+1:])
		spec = strings.TrimSpace(spec[:i])
	}

	m := requirementPattern.FindStringSubmatch(spec)
	if m == nil {
		return nil, fmt.Errorf("invalid requirement %q", spec)
	}

	constraint := strings.TrimSpace(m[3])
	if strings.HasPrefix(constraint, "@") {
		constraint = ""
	}
	if strings.HasPrefix(constraint, "(") && strings.HasSuffix(constraint, ")") {
		constraint = strings.TrimSpace(constraint[1 : len(constraint)-1])
	}

	if _, err := versioning.ParseConstraint(constraint); err != nil {
		return nil, fmt.Errorf("invalid requirement %q: %w", spec, err)
	}

	return &scannermodels.PackageRequirement{
		Name:       m[1],
		Constraint: constraint,
		Extras:     splitExtras(m[2]),
		Markers:    markers,
	}, nil
}

func splitExtras(raw string) []string {
	var extras []string
	for _, extra := range strings.Split(raw, ",") {
		if extra = strings.TrimSpace(extra); extra != "" {
			extras = append(extras, extra)
		}
	}
	return extras
}
