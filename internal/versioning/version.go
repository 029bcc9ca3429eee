package versioning

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// pep440Pattern follows the public version grammar of PEP 440, lower cased.
var pep440Pattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)` +
	`(?:[-_.]?(a|alpha|b|beta|c|rc|pre|preview)[-_.]?(\d*))?` +
	`(?:-(\d+)|[-_.]?(post|rev|r)[-_.]?(\d*))?` +
	`(?:[-_.]?(dev)[-_.]?(\d*))?` +
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

// Version is a parsed PEP 440 version.
type Version struct {
	Raw     string
	Epoch   int
	Release []int
	Pre     string
	PreNum  int
	Post    int
	HasPost bool
	Dev     bool
	DevNum  int
}

func Parse(raw string) (Version, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.TrimPrefix(v, "v")

	parsed := Version{Raw: raw}
	if i := strings.Index(v, "!"); i >= 0 {
		epoch, err := strconv.Atoi(v[:i])
		if err != nil {
			return Version{}, fmt.Errorf("invalid epoch in %q: %w", raw, err)
		}
		parsed.Epoch = epoch
		v = v[i+1:]
	}

	m := pep440Pattern.FindStringSubmatch(v)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version %q", raw)
	}

	for _, part := range strings.Split(m[1], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("invalid release segment in %q: %w", raw, err)
		}
		parsed.Release = append(parsed.Release, n)
	}

	if m[2] != "" {
		switch m[2] {
		case "a", "alpha":
			parsed.Pre = "alpha"
		case "b", "beta":
			parsed.Pre = "beta"
		default:
			parsed.Pre = "rc"
		}
		parsed.PreNum = atoiOrZero(m[3])
	}

	if m[4] != "" {
		parsed.HasPost = true
		parsed.Post = atoiOrZero(m[4])
	} else if m[5] != "" {
		parsed.HasPost = true
		parsed.Post = atoiOrZero(m[6])
	}

	if m[7] != "" {
		parsed.Dev = true
		parsed.DevNum = atoiOrZero(m[8])
	}

	return parsed, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// IsValid reports whether raw parses as a PEP 440 version.
func IsValid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// releaseSemver renders the first three release segments as a semver string.
func (v Version) releaseSemver() string {
	return fmt.Sprintf("v%d.%d.%d", segment(v.Release, 0), segment(v.Release, 1), segment(v.Release, 2))
}

func (v Version) IsPrerelease() bool {
	return v.Pre != "" || v.Dev
}

func (v Version) String() string {
	parts := make([]string, len(v.Release))
	for i, n := range v.Release {
		parts[i] = strconv.Itoa(n)
	}

	s := strings.Join(parts, ".")
	if v.Epoch != 0 {
		s = strconv.Itoa(v.Epoch) + "!" + s
	}
	switch v.Pre {
	case "alpha":
		s += fmt.Sprintf("a%d", v.PreNum)
	case "beta":
		s += fmt.Sprintf("b%d", v.PreNum)
	case "rc":
		s += fmt.Sprintf("rc%d", v.PreNum)
	}
	if v.HasPost {
		s += fmt.Sprintf(".post%d", v.Post)
	}
	if v.Dev {
		s += fmt.Sprintf(".dev%d", v.DevNum)
	}

	return s
}

// Compare returns -1, 0 or 1. Unparseable versions sort below parseable ones.
func Compare(a string, b string) int {
	va, errA := Parse(a)
	vb, errB := Parse(b)

	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}

	return CompareVersions(va, vb)
}

// CompareVersions orders by epoch, release, pre, post and dev as PEP 440 does.
// A bare dev release sorts before every pre-release of the same release.
func CompareVersions(a Version, b Version) int {
	if c := cmp.Compare(a.Epoch, b.Epoch); c != 0 {
		return c
	}

	if c := semver.Compare(a.releaseSemver(), b.releaseSemver()); c != 0 {
		return c
	}

	// segments past the third are invisible to semver
	longest := max(len(a.Release), len(b.Release))
	for i := 3; i < longest; i++ {
		if c := cmp.Compare(segment(a.Release, i), segment(b.Release, i)); c != 0 {
			return c
		}
	}

	if c := cmp.Compare(a.preRank(), b.preRank()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.PreNum, b.PreNum); c != 0 {
		return c
	}

	if c := cmp.Compare(a.postKey(), b.postKey()); c != 0 {
		return c
	}

	return cmp.Compare(a.devKey(), b.devKey())
}

func (v Version) preRank() int {
	switch {
	case v.Pre == "" && !v.HasPost && v.Dev:
		return -1
	case v.Pre == "alpha":
		return 0
	case v.Pre == "beta":
		return 1
	case v.Pre == "rc":
		return 2
	}
	return 3
}

func (v Version) postKey() int {
	if !v.HasPost {
		return -1
	}
	return v.Post
}

func (v Version) devKey() int {
	if !v.Dev {
		return math.MaxInt
	}
	return v.DevNum
}

func segment(release []int, i int) int {
	if i < len(release) {
		return release[i]
	}
	return 0
}

// IsPrerelease reports whether raw is a pre or dev release. Unparseable versions are not.
func IsPrerelease(raw string) bool {
	v, err := Parse(raw)
	if err != nil {
		return false
	}
	return v.IsPrerelease()
}

// LatestStable picks the highest non-prerelease version, falling back to the highest version.
func LatestStable(versions []string) string {
	var latest, latestAny string
	for _, v := range versions {
		if !IsValid(v) {
			continue
		}

		if latestAny == "" || Compare(v, latestAny) > 0 {
			latestAny = v
		}

		if IsPrerelease(v) {
			continue
		}

		if latest == "" || Compare(v, latest) > 0 {
			latest = v
		}
	}

	if latest == "" {
		return latestAny
	}
	return latest
}
