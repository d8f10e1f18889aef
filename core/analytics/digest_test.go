package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rightswatch/config"
	"rightswatch/core/monitoring"
	"rightswatch/core/store"
	"rightswatch/core/utils"
)

type fakeAnalytics struct {
	calls  []int
	failOn string
}

func (f *fakeAnalytics) ViolationCounts(ctx context.Context, limit int) ([]store.ViolationCount, error) {
	f.calls = append(f.calls, limit)
	if f.failOn == "violations" {
		return nil, errors.New("boom")
	}
	return []store.ViolationCount{{Value: "torture", Count: 4}}, nil
}

func (f *fakeAnalytics) MonthlyTimeline(ctx context.Context, limit int) ([]store.TimelineBucket, error) {
	f.calls = append(f.calls, limit)
	return []store.TimelineBucket{{Period: "2024-01", Count: 4}}, nil
}

func (f *fakeAnalytics) CityClusters(ctx context.Context, limit int) ([]store.CityCluster, error) {
	f.calls = append(f.calls, limit)
	return nil, nil
}

func TestRunOnceUsesConfiguredLimits(t *testing.T) {
	st := &fakeAnalytics{}
	cfg := config.AnalyticsConfig{ViolationsLimit: 5, GeodataLimit: 7}
	d := NewDigest(cfg, st, monitoring.NewMetrics(), utils.NewLogger())
	require.NoError(t, d.RunOnce(context.Background(), time.Now()))
	assert.Equal(t, []int{5, 50, 7}, st.calls)
}

func TestRunOnceCountsFailures(t *testing.T) {
	m := monitoring.NewMetrics()
	d := NewDigest(config.AnalyticsConfig{}, &fakeAnalytics{failOn: "violations"}, m, nil)
	require.Error(t, d.RunOnce(context.Background(), time.Now()))
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "rightswatch_analytics_digest_runs_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := config.AnalyticsConfig{Digest: config.DigestConfig{Enabled: true, Schedule: "every now and then"}}
	d := NewDigest(cfg, &fakeAnalytics{}, monitoring.NewMetrics(), nil)
	assert.Error(t, d.StartWithContext(context.Background()))
}

func TestStartStop(t *testing.T) {
	cfg := config.AnalyticsConfig{Digest: config.DigestConfig{Enabled: true, Schedule: "@every 1h"}}
	d := NewDigest(cfg, &fakeAnalytics{}, monitoring.NewMetrics(), nil)
	require.NoError(t, d.StartWithContext(context.Background()))
	require.NoError(t, d.StartWithContext(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.StopWithContext(ctx))
	require.NoError(t, d.StopWithContext(ctx))
}
