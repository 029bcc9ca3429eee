package vulnerabilitycheckerservice_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	cache "github.com/RobsonDevCode/pyninja/internal/caching"
	"github.com/RobsonDevCode/pyninja/internal/clients"
	"github.com/RobsonDevCode/pyninja/internal/logging"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	vulnerabilitycheckerservice "github.com/RobsonDevCode/pyninja/internal/services/vulnerabilityCheckerService"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	calls   atomic.Int32
	delay   time.Duration
	err     error
	records map[string][]scannermodels.VulnerabilityRecord
}

func (f *fakeClient) Name() string { return "osv" }

func (f *fakeClient) GetVulnerabilities(ctx context.Context, packageName string) ([]scannermodels.VulnerabilityRecord, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	records, ok := f.records[packageName]
	if !ok {
		return nil, clients.ErrPackageNotFound
	}
	return records, nil
}

var requestsAdvisory = scannermodels.VulnerabilityRecord{
	Package:       "requests",
	AdvisoryId:    "GHSA-j8r2-6x86-q33q",
	Summary:       "Unintended leak of Proxy-Authorization header",
	Severity:      "medium",
	AffectedRange: ">=2.3.0, <2.31.0",
	Ranges:        []versioning.Interval{{Lower: "2.3.0", LowerInclusive: true, Upper: "2.31.0"}},
	FixedIn:       "2.31.0",
	Source:        "osv",
}

func newChecker(client clients.VulnerabilityClient, strict bool, diskDir string) *vulnerabilitycheckerservice.VulnerabilityChecker {
	return vulnerabilitycheckerservice.NewVulnerabilityChecker(client, cache.NewCache(time.Minute), cache.NewDiskCache(diskDir, time.Hour), strict, logging.Discard())
}

func req(name string, constraint string) scannermodels.PackageRequirement {
	return scannermodels.PackageRequirement{Name: name, NormalizedName: name, Constraint: constraint}
}

func TestPinnedVulnerableVersionIsReported(t *testing.T) {
	client := &fakeClient{records: map[string][]scannermodels.VulnerabilityRecord{"requests": {requestsAdvisory}}}
	checker := newChecker(client, false, "")

	records, warnings, err := checker.CheckPackage(context.Background(), req("requests", "==2.25.0"))

	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 1)
	assert.Equal(t, "GHSA-j8r2-6x86-q33q", records[0].AdvisoryId)
}

func TestPatchedVersionIsNotReported(t *testing.T) {
	client := &fakeClient{records: map[string][]scannermodels.VulnerabilityRecord{"requests": {requestsAdvisory}}}
	checker := newChecker(client, false, "")

	records, _, err := checker.CheckPackage(context.Background(), req("requests", ">=2.31.0"))
	require.NoError(t, err)
	assert.Empty(t, records)

	unconstrained, _, err := checker.CheckPackage(context.Background(), req("requests", ""))
	require.NoError(t, err)
	assert.Len(t, unconstrained, 1)
}

func TestExplicitAffectedVersions(t *testing.T) {
	record := scannermodels.VulnerabilityRecord{AdvisoryId: "PYSEC-1", AffectedVersions: []string{"1.0.0", "1.0.1"}}

	pinned, err := versioning.ParseConstraint("==1.0.1")
	require.NoError(t, err)
	assert.True(t, vulnerabilitycheckerservice.Affects(pinned, record))

	newer, err := versioning.ParseConstraint(">=1.1")
	require.NoError(t, err)
	assert.False(t, vulnerabilitycheckerservice.Affects(newer, record))

	assert.True(t, vulnerabilitycheckerservice.Affects(newer, scannermodels.VulnerabilityRecord{AdvisoryId: "no-ranges"}))
}

func TestConcurrentLookupsShareOneRequest(t *testing.T) {
	client := &fakeClient{
		delay:   50 * time.Millisecond,
		records: map[string][]scannermodels.VulnerabilityRecord{"requests": {requestsAdvisory}},
	}
	checker := newChecker(client, false, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, _, err := checker.CheckPackage(context.Background(), req("requests", "==2.25.0"))
			assert.NoError(t, err)
			assert.Len(t, records, 1)
		}()
	}
	wg.Wait()

	_, _, err := checker.CheckPackage(context.Background(), req("requests", "<2.0"))
	require.NoError(t, err)

	assert.Equal(t, int32(1), client.calls.Load())
}

func TestUnknownPackageHasNoVulnerabilities(t *testing.T) {
	checker := newChecker(&fakeClient{}, true, "")

	records, warnings, err := checker.CheckPackage(context.Background(), req("left-pad", "==1.0"))

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, warnings)
}

func TestUnavailableDatabase(t *testing.T) {
	unreachable := errors.New("dial tcp: connection refused")

	t.Run("warns when not strict", func(t *testing.T) {
		checker := newChecker(&fakeClient{err: unreachable}, false, "")

		records, warnings, err := checker.CheckPackage(context.Background(), req("requests", "==2.25.0"))

		require.NoError(t, err)
		assert.Empty(t, records)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "vulnerability data unavailable for requests")
	})

	t.Run("fails when strict", func(t *testing.T) {
		checker := newChecker(&fakeClient{err: unreachable}, true, "")

		_, _, err := checker.CheckPackage(context.Background(), req("requests", "==2.25.0"))

		require.Error(t, err)
		assert.ErrorIs(t, err, analysiserrors.ErrDataUnavailable)
		var unavailable *analysiserrors.DataUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "requests", unavailable.Package)
	})
}

func TestCancelledLookupIsNeverFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := newChecker(&fakeClient{err: context.Canceled}, true, "")

	records, warnings, err := checker.CheckPackage(ctx, req("requests", "==2.25.0"))

	require.NoError(t, err)
	assert.Empty(t, records)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "cancelled")
}

func TestDiskCacheSurvivesNewRun(t *testing.T) {
	dir := t.TempDir()
	client := &fakeClient{records: map[string][]scannermodels.VulnerabilityRecord{"requests": {requestsAdvisory}}}

	_, _, err := newChecker(client, false, dir).CheckPackage(context.Background(), req("requests", "==2.25.0"))
	require.NoError(t, err)

	records, _, err := newChecker(client, false, dir).CheckPackage(context.Background(), req("requests", "==2.25.0"))
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Equal(t, int32(1), client.calls.Load())
}
