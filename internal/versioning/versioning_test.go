package versioning_test

import (
	"testing"

	"github.com/RobsonDevCode/pyninja/internal/versioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.20.0", "1.24.3", -1},
		{"1.24.3", "1.24.3", 0},
		{"1.24", "1.24.0", 0},
		{"2.0.0", "1.99.99", 1},
		{"1.0rc1", "1.0", -1},
		{"1.0a1", "1.0b1", -1},
		{"1.0.dev1", "1.0a1", -1},
		{"1.0.post1", "1.0", 1},
		{"1.2.3.4", "1.2.3.5", -1},
		{"1.2.3.4", "1.2.3", 1},
		{"v2.31.0", "2.31.0", 0},
		{"1.0a1.dev0", "1.0a1", -1},
		{"1.0a1.dev0", "1.0.dev5", 1},
		{"1.0.post1.dev0", "1.0.post1", -1},
		{"1.0.post1.dev0", "1.0", 1},
		{"1!1.0", "2.0", 1},
		{"1!1.0", "1!1.0.0", 0},
		{"0!3.0", "3.0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, versioning.Compare(tt.a, tt.b))
		})
	}
}

func TestLatestStableSkipsPrereleases(t *testing.T) {
	versions := []string{"1.20.0", "1.24.3", "1.25.0rc1", "not-a-version", "1.9.0"}
	require.Equal(t, "1.24.3", versioning.LatestStable(versions))
}

func TestLatestStableFallsBackToPrerelease(t *testing.T) {
	require.Equal(t, "2.0b2", versioning.LatestStable([]string{"2.0b1", "2.0b2"}))
}

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		raw       string
		allowed   []string
		forbidden []string
	}{
		{"==2.25.0", []string{"2.25.0"}, []string{"2.25.1", "2.24.0"}},
		{">=1.0,<2.0", []string{"1.0", "1.9.9"}, []string{"0.9", "2.0"}},
		{">= 2.0, < 2.5", []string{"2.4.9"}, []string{"2.5.0"}},
		{"~=1.4.2", []string{"1.4.2", "1.4.9"}, []string{"1.5.0", "1.4.1"}},
		{"~=2.2", []string{"2.2", "2.9"}, []string{"3.0"}},
		{"==1.4.*", []string{"1.4.0", "1.4.7"}, []string{"1.5.0"}},
		{"!=1.5.0", []string{"1.4.0", "1.6.0"}, []string{"1.5.0"}},
		{"^1.2.3", []string{"1.2.3", "1.9.0"}, []string{"2.0.0", "1.2.2"}},
		{"^0.2.3", []string{"0.2.9"}, []string{"0.3.0"}},
		{"~1.2", []string{"1.2.5"}, []string{"1.3.0"}},
		{"1.2.3", []string{"1.2.3"}, []string{"1.2.4"}},
		{">=1 <2", []string{"1.5"}, []string{"2.1"}},
		{"<1.0 || >=2.0", []string{"0.5", "2.1"}, []string{"1.5"}},
		{"*", []string{"0.0.1", "99"}, nil},
		{"", []string{"1.0"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, err := versioning.ParseConstraint(tt.raw)
			require.NoError(t, err)

			for _, v := range tt.allowed {
				assert.True(t, c.Satisfies(v), "%s should satisfy %s", v, tt.raw)
			}
			for _, v := range tt.forbidden {
				assert.False(t, c.Satisfies(v), "%s should not satisfy %s", v, tt.raw)
			}
		})
	}
}

func TestParseConstraintRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"==", ">=abc", ">=1.*", "[project]"} {
		_, err := versioning.ParseConstraint(raw)
		assert.Error(t, err, raw)
	}
}

func TestPinned(t *testing.T) {
	c, err := versioning.ParseConstraint("==1.20.0")
	require.NoError(t, err)

	pinned, ok := c.Pinned()
	require.True(t, ok)
	require.Equal(t, "1.20.0", pinned)

	c, err = versioning.ParseConstraint(">=1.20.0")
	require.NoError(t, err)
	_, ok = c.Pinned()
	require.False(t, ok)

	ref, ok := c.ReferenceVersion()
	require.True(t, ok)
	require.Equal(t, "1.20.0", ref)
}

func TestOverlaps(t *testing.T) {
	affected := []versioning.Interval{{Lower: "2.0", LowerInclusive: true, Upper: "2.31.0"}}

	vulnerable, err := versioning.ParseConstraint("==2.25.0")
	require.NoError(t, err)
	assert.True(t, vulnerable.Overlaps(affected))

	patched, err := versioning.ParseConstraint(">=2.31.0")
	require.NoError(t, err)
	assert.False(t, patched.Overlaps(affected))

	wide, err := versioning.ParseConstraint(">=1.0")
	require.NoError(t, err)
	assert.True(t, wide.Overlaps(affected))

	unconstrained, err := versioning.ParseConstraint("")
	require.NoError(t, err)
	assert.True(t, unconstrained.Overlaps(affected))
}

func TestIntervalIntersectBoundaries(t *testing.T) {
	a := versioning.Interval{Upper: "2.0"}
	b := versioning.Interval{Lower: "2.0", LowerInclusive: true}

	_, ok := a.Intersect(b)
	assert.False(t, ok)

	a.UpperInclusive = true
	joined, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, "[2.0, 2.0]", joined.String())
}

func TestDescribeIntervals(t *testing.T) {
	intervals := []versioning.Interval{
		{Lower: "2.0", LowerInclusive: true, Upper: "2.31.0"},
		{Lower: "3.0", LowerInclusive: true, Upper: "3.0", UpperInclusive: true},
		{},
	}
	assert.Equal(t, ">=2.0, <2.31.0 || ==3.0 || *", versioning.DescribeIntervals(intervals))
}

func TestConstraintPrereleaseBoundaries(t *testing.T) {
	tests := []struct {
		raw     string
		version string
		want    bool
	}{
		{"==1.4.*", "1.5.dev0", false},
		{"==1.4.*", "1.4.0rc1", true},
		{"==1.4.*", "1.4.dev3", true},
		{"==1.4.*", "1.3.99", false},
		{"!=1.4.*", "1.5.dev0", true},
		{"<2.0", "2.0rc1", false},
		{"<2.0", "2.0.dev1", false},
		{"<2.0", "1.9.9", true},
		{"<2.0rc2", "2.0rc1", true},
		{"~=1.4", "2.0rc1", false},
		{"^1.2", "2.0.0a1", false},
		{">=1!1.0", "5.0", false},
		{">=1!1.0", "1!1.2", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw+"_"+tt.version, func(t *testing.T) {
			c, err := versioning.ParseConstraint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Satisfies(tt.version))
		})
	}
}

func TestReferenceVersionOfWildcard(t *testing.T) {
	c, err := versioning.ParseConstraint("==1.4.*")
	require.NoError(t, err)

	ref, ok := c.ReferenceVersion()
	require.True(t, ok)
	assert.Equal(t, "1.4", ref)
}

func TestPipSpecifiers(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"^2.0", ">=2.0,<3"},
		{"^0.2.3", ">=0.2.3,<0.3"},
		{"~1.2", ">=1.2,<1.3"},
		{"21.4.0", "==21.4.0"},
		{"=1.0", "==1.0"},
		{">=1 <2", ">=1,<2"},
		{"~=1.4.2", "~=1.4.2"},
		{"==1.4.*", "==1.4.*"},
		{"<1.0 || >=2.0", "<1.0"},
		{"*", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, err := versioning.ParseConstraint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.PipSpecifiers())
		})
	}
}

func TestDescribeHidesDevFloor(t *testing.T) {
	c, err := versioning.ParseConstraint(">= 4.0, < 4.2.1")
	require.NoError(t, err)

	assert.Equal(t, ">=4.0, <4.2.1", versioning.DescribeIntervals(c.Intervals()))
	assert.False(t, c.Satisfies("4.2.1rc1"))
}
