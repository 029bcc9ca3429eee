package versioning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Specifier is one clause of a constraint, e.g. ">=1.2".
type Specifier struct {
	Op       string
	Version  string
	Wildcard bool
}

// Constraint is a union of specifier groups; every specifier in a group must hold.
type Constraint struct {
	Raw    string
	Groups [][]Specifier
}

var specifierPattern = regexp.MustCompile(`^(===|==|!=|~=|<=|>=|<|>|\^|~|=)?\s*([A-Za-z0-9_.!+\-*]+)$`)

// ParseConstraint accepts PEP 440 specifier sets ("==1.0", ">=1,<2", "~=1.4"),
// poetry style ("^1.2", "~1.2", "1.2.3", ">=1 <2", "a || b") and GitHub ranges (">= 2.0, < 2.5").
// An empty string or "*" is unconstrained.
func ParseConstraint(raw string) (Constraint, error) {
	constraint := Constraint{Raw: strings.TrimSpace(raw)}
	if constraint.Raw == "" || constraint.Raw == "*" {
		return constraint, nil
	}

	for _, alternative := range strings.Split(constraint.Raw, "||") {
		group, err := parseGroup(alternative)
		if err != nil {
			return Constraint{}, err
		}
		if len(group) > 0 {
			constraint.Groups = append(constraint.Groups, group)
		}
	}

	return constraint, nil
}

func parseGroup(raw string) ([]Specifier, error) {
	var group []Specifier
	for _, clause := range splitClauses(raw) {
		if clause == "*" {
			continue
		}

		m := specifierPattern.FindStringSubmatch(clause)
		if m == nil {
			return nil, fmt.Errorf("invalid version specifier %q", clause)
		}

		op := m[1]
		switch op {
		case "", "=":
			op = "=="
		}

		spec := Specifier{Op: op, Version: m[2]}
		if strings.HasSuffix(spec.Version, ".*") {
			if op != "==" && op != "!=" {
				return nil, fmt.Errorf("wildcard not allowed with %s in %q", op, clause)
			}
			spec.Wildcard = true
			spec.Version = strings.TrimSuffix(spec.Version, ".*")
		}

		if !IsValid(spec.Version) {
			return nil, fmt.Errorf("invalid version %q in specifier %q", spec.Version, clause)
		}

		group = append(group, spec)
	}

	return group, nil
}

// splitClauses splits on commas and on whitespace that separates two clauses,
// keeping ">= 2.0" together.
func splitClauses(raw string) []string {
	var clauses []string
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Fields(part)
		for i := 0; i < len(fields); i++ {
			field := fields[i]
			if isOperatorOnly(field) && i+1 < len(fields) {
				field += fields[i+1]
				i++
			}
			clauses = append(clauses, field)
		}
	}
	return clauses
}

func isOperatorOnly(s string) bool {
	switch s {
	case "===", "==", "!=", "~=", "<=", ">=", "<", ">", "^", "~", "=":
		return true
	}
	return false
}

func (c Constraint) IsAny() bool {
	return len(c.Groups) == 0
}

// Pinned returns the exact version when the constraint allows a single release.
func (c Constraint) Pinned() (string, bool) {
	if len(c.Groups) != 1 || len(c.Groups[0]) != 1 {
		return "", false
	}

	spec := c.Groups[0][0]
	if (spec.Op == "==" || spec.Op == "===") && !spec.Wildcard {
		return spec.Version, true
	}
	return "", false
}

// ReferenceVersion is the version used to decide whether an update is available:
// the pin, otherwise the lowest version the constraint allows.
func (c Constraint) ReferenceVersion() (string, bool) {
	if pinned, ok := c.Pinned(); ok {
		return pinned, true
	}

	var lowest string
	for _, interval := range c.Intervals() {
		if interval.Lower == "" {
			continue
		}
		lower := strings.TrimSuffix(interval.Lower, devFloor)
		if lowest == "" || Compare(lower, lowest) < 0 {
			lowest = lower
		}
	}

	return lowest, lowest != ""
}

// Satisfies reports whether version is allowed by the constraint.
func (c Constraint) Satisfies(version string) bool {
	if c.IsAny() {
		return true
	}

	v, err := Parse(version)
	if err != nil {
		return false
	}

	for _, group := range c.Groups {
		if groupSatisfies(group, v) {
			return true
		}
	}
	return false
}

func groupSatisfies(group []Specifier, v Version) bool {
	for _, spec := range group {
		if !specSatisfies(spec, v) {
			return false
		}
	}
	return true
}

func specSatisfies(spec Specifier, v Version) bool {
	if spec.Op == "!=" {
		return !specSatisfies(Specifier{Op: "==", Version: spec.Version, Wildcard: spec.Wildcard}, v)
	}

	for _, interval := range specIntervals(spec) {
		if interval.Contains(v.Raw) {
			return true
		}
	}
	return false
}

// Intervals flattens the constraint into the version ranges it allows. "!=" clauses
// are ignored, which widens the result.
func (c Constraint) Intervals() []Interval {
	if c.IsAny() {
		return []Interval{{}}
	}

	var intervals []Interval
	for _, group := range c.Groups {
		current := []Interval{{}}
		for _, spec := range group {
			if spec.Op == "!=" {
				continue
			}

			var next []Interval
			for _, a := range current {
				for _, b := range specIntervals(spec) {
					if joined, ok := a.Intersect(b); ok {
						next = append(next, joined)
					}
				}
			}
			current = next
		}
		intervals = append(intervals, current...)
	}

	return intervals
}

// Overlaps reports whether any version allowed by c falls inside one of the intervals.
func (c Constraint) Overlaps(intervals []Interval) bool {
	for _, mine := range c.Intervals() {
		for _, theirs := range intervals {
			if _, ok := mine.Intersect(theirs); ok {
				return true
			}
		}
	}
	return false
}

// devFloor turns a release into the lowest version that shares it, so an exclusive
// upper bound also excludes that release's pre and dev versions.
const devFloor = ".dev0"

func specIntervals(spec Specifier) []Interval {
	v := spec.Version
	switch spec.Op {
	case "==", "===":
		if spec.Wildcard {
			return []Interval{{Lower: v + devFloor, LowerInclusive: true, Upper: bump(v, segmentCount(v)-1) + devFloor}}
		}
		return []Interval{{Lower: v, LowerInclusive: true, Upper: v, UpperInclusive: true}}
	case ">=":
		return []Interval{{Lower: v, LowerInclusive: true}}
	case ">":
		return []Interval{{Lower: v}}
	case "<=":
		return []Interval{{Upper: v, UpperInclusive: true}}
	case "<":
		return []Interval{{Upper: exclusiveUpper(v)}}
	case "~=", "^", "~":
		upper, ok := upperRelease(spec)
		if !ok {
			return []Interval{{Lower: v, LowerInclusive: true}}
		}
		return []Interval{{Lower: v, LowerInclusive: true, Upper: upper + devFloor}}
	}
	return nil
}

// exclusiveUpper keeps "<V" from admitting pre-releases of V unless V is one itself.
func exclusiveUpper(raw string) string {
	v, err := Parse(raw)
	if err != nil || v.IsPrerelease() || v.HasPost {
		return raw
	}
	return raw + devFloor
}

// upperRelease is the first release excluded by a compatible-release, caret or tilde clause.
func upperRelease(spec Specifier) (string, bool) {
	v := spec.Version
	switch spec.Op {
	case "~=":
		n := segmentCount(v)
		if n < 2 {
			return "", false
		}
		return bump(v, n-2), true
	case "^":
		return bump(v, caretSegment(v)), true
	case "~":
		if segmentCount(v) == 1 {
			return bump(v, 0), true
		}
		return bump(v, 1), true
	}
	return "", false
}

// PipSpecifiers renders the constraint as a PEP 440 specifier set pip accepts.
// Poetry caret and tilde clauses become explicit bounds and bare versions become pins.
// Only the first alternative of an "a || b" union is kept since pip has no union.
func (c Constraint) PipSpecifiers() string {
	if c.IsAny() {
		return ""
	}

	var clauses []string
	for _, spec := range c.Groups[0] {
		version := spec.Version
		if spec.Wildcard {
			version += ".*"
		}

		switch spec.Op {
		case "^", "~":
			clauses = append(clauses, ">="+spec.Version)
			if upper, ok := upperRelease(spec); ok {
				clauses = append(clauses, "<"+upper)
			}
		default:
			clauses = append(clauses, spec.Op+version)
		}
	}

	return strings.Join(clauses, ",")
}

func segmentCount(raw string) int {
	v, err := Parse(raw)
	if err != nil {
		return 0
	}
	return len(v.Release)
}

// caretSegment is the index of the first non-zero release segment.
func caretSegment(raw string) int {
	v, err := Parse(raw)
	if err != nil {
		return 0
	}
	for i, n := range v.Release {
		if n != 0 {
			return i
		}
	}
	return len(v.Release) - 1
}

// bump increments release segment idx and drops everything after it.
func bump(raw string, idx int) string {
	v, err := Parse(raw)
	if err != nil || idx < 0 {
		return raw
	}

	release := make([]string, 0, idx+1)
	for i := 0; i <= idx; i++ {
		n := segment(v.Release, i)
		if i == idx {
			n++
		}
		release = append(release, strconv.Itoa(n))
	}

	bumped := strings.Join(release, ".")
	if v.Epoch != 0 {
		bumped = strconv.Itoa(v.Epoch) + "!" + bumped
	}
	return bumped
}
