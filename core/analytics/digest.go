package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"rightswatch/config"
	"rightswatch/core/monitoring"
	"rightswatch/core/store"
	"rightswatch/core/utils"
)

// Digest periodically recomputes the report aggregates and publishes them as gauges.
type Digest struct {
	cfg     config.AnalyticsConfig
	store   store.AnalyticsStore
	metrics *monitoring.Metrics
	logger  *utils.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

func NewDigest(cfg config.AnalyticsConfig, st store.AnalyticsStore, metrics *monitoring.Metrics, logger *utils.Logger) *Digest {
	return &Digest{cfg: cfg, store: st, metrics: metrics, logger: logger}
}

func (d *Digest) StartWithContext(ctx context.Context) error {
	if d == nil || d.store == nil || !d.cfg.Digest.Enabled {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(d.cfg.Digest.Schedule, func() {
		_ = d.RunOnce(runCtx, time.Now().UTC())
	}); err != nil {
		cancel()
		return fmt.Errorf("digest schedule %q: %w", d.cfg.Digest.Schedule, err)
	}
	c.Start()
	d.cron = c
	d.cancel = cancel
	d.running = true
	return nil
}

func (d *Digest) StopWithContext(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	c, cancel, wasRunning := d.cron, d.cancel, d.running
	d.cron, d.cancel, d.running = nil, nil, false
	d.mu.Unlock()
	if !wasRunning || c == nil {
		return nil
	}
	cancel()
	stopped := c.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce computes all three aggregates. It never writes to the store.
func (d *Digest) RunOnce(ctx context.Context, now time.Time) error {
	violationsLimit, timelineLimit, geodataLimit := d.cfg.Limits()
	violations, err := d.store.ViolationCounts(ctx, violationsLimit)
	if err != nil {
		return d.fail(err)
	}
	timeline, err := d.store.MonthlyTimeline(ctx, timelineLimit)
	if err != nil {
		return d.fail(err)
	}
	cities, err := d.store.CityClusters(ctx, geodataLimit)
	if err != nil {
		return d.fail(err)
	}
	d.metrics.PublishDigest(now, violations, timeline, cities)
	if d.logger != nil {
		top := "-"
		if len(violations) > 0 {
			top = fmt.Sprintf("%s(%d)", violations[0].Value, violations[0].Count)
		}
		d.logger.Printf("analytics digest: violation_types=%d months=%d cities=%d top=%s", len(violations), len(timeline), len(cities), top)
	}
	return nil
}

func (d *Digest) fail(err error) error {
	d.metrics.DigestFailed()
	if d.logger != nil {
		d.logger.Errorf("analytics digest failed: %v", err)
	}
	return err
}
