// Package scheduler runs the portal's periodic background jobs.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidConfig is returned for a non-positive interval
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// Backlog is a point-in-time view of orders waiting in the pipeline
type Backlog struct {
	OrdersByStatus  map[string]int64
	PendingWeightKg map[string]float64 // by location, orders eligible for planning only
}

// BacklogSource computes the current backlog
type BacklogSource interface {
	Backlog(ctx context.Context) (Backlog, error)
}

// BacklogRecorder receives the computed gauges
type BacklogRecorder interface {
	RecordBacklog(ctx context.Context, status string, count int64)
	RecordPendingWeight(ctx context.Context, location string, kg float64)
}

// BacklogMonitorConfig holds the monitor's timing
type BacklogMonitorConfig struct {
	Interval   time.Duration
	JobTimeout time.Duration
}

// BacklogMonitor periodically samples the backlog into gauges
type BacklogMonitor struct {
	config   BacklogMonitorConfig
	source   BacklogSource
	recorder BacklogRecorder
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
}

// NewBacklogMonitor creates a monitor
func NewBacklogMonitor(cfg BacklogMonitorConfig, source BacklogSource, recorder BacklogRecorder, logger *zap.Logger) (*BacklogMonitor, error) {
	if cfg.Interval <= 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	return &BacklogMonitor{
		config:   cfg,
		source:   source,
		recorder: recorder,
		logger:   logger.Named("backlog_monitor"),
	}, nil
}

// Start samples once immediately, then every Interval until Stop
func (m *BacklogMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = true
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.runLoop(ctx)

	m.logger.Info("Backlog monitor started", zap.Duration("interval", m.config.Interval))
	return nil
}

// Stop cancels the loop and waits for an in-flight run, bounded by ctx
func (m *BacklogMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Backlog monitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *BacklogMonitor) runLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	_ = m.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.RunOnce(ctx)
		}
	}
}

// RunOnce samples the backlog and records it
func (m *BacklogMonitor) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.JobTimeout)
	defer cancel()

	backlog, err := m.source.Backlog(ctx)
	if err != nil {
		m.logger.Warn("Backlog sampling failed", zap.Error(err))
		return err
	}

	var pending float64
	for status, n := range backlog.OrdersByStatus {
		m.recorder.RecordBacklog(ctx, status, n)
	}
	for location, kg := range backlog.PendingWeightKg {
		m.recorder.RecordPendingWeight(ctx, location, kg)
		pending += kg
	}

	m.mu.Lock()
	m.lastRun = time.Now()
	m.mu.Unlock()

	m.logger.Debug("Backlog sampled",
		zap.Int("locations", len(backlog.PendingWeightKg)),
		zap.Float64("pending_weight_kg", pending),
	)
	return nil
}

// LastRun returns when the last successful sample finished
func (m *BacklogMonitor) LastRun() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRun
}
