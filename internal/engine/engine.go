// Package engine wires the snapshot reader, conflict detector, leveling
// recommender, and resolution applier into one analyzer with events,
// audit logging, and run counters.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sitework/leveler/internal/apply"
	"github.com/sitework/leveler/internal/conflict"
	"github.com/sitework/leveler/internal/events"
	"github.com/sitework/leveler/internal/leveling"
	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/snapshot"
	"github.com/sitework/leveler/internal/store"
)

// Analyzer runs Detect+Build passes and applies chosen resolutions.
// Analysis is read-only against an immutable snapshot; Apply is the only
// mutation path and always invalidates the cached snapshot on success.
type Analyzer struct {
	reader  *snapshot.Reader
	applier *apply.Applier
	policy  model.LevelingPolicy
	workers int
	timeout time.Duration

	bus      *events.Bus
	audit    *events.AuditLogger
	logger   *log.Logger
	logLevel LogLevel

	countersMu sync.Mutex
	counters   model.MetricsCounters
}

type Option func(*Analyzer)

func WithEventBus(bus *events.Bus) Option {
	return func(a *Analyzer) { a.bus = bus }
}

func WithAuditLogger(audit *events.AuditLogger) Option {
	return func(a *Analyzer) { a.audit = audit }
}

func WithLogger(logger *log.Logger, level LogLevel) Option {
	return func(a *Analyzer) {
		a.logger = logger
		a.logLevel = level
	}
}

func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithAnalysisTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func New(st store.Store, policy model.LevelingPolicy, opts ...Option) *Analyzer {
	policy.ApplyDefaults()
	a := &Analyzer{
		reader:   snapshot.NewReader(st),
		applier:  apply.New(st),
		policy:   policy,
		workers:  4,
		timeout:  30 * time.Second,
		logger:   log.Default(),
		logLevel: LogLevelInfo,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Report is the result of one analysis pass.
type Report struct {
	Strategy        model.Strategy
	Generation      int
	GeneratedAt     time.Time
	Duration        time.Duration
	ResourceFilter  string
	Conflicts       []model.Conflict
	Recommendations []model.Recommendation
}

// AnalyzeOptions select the strategy and optional single-resource filter.
type AnalyzeOptions struct {
	Strategy model.Strategy
	// ResourceID, when set, restricts detection to that resource.
	ResourceID string
}

// Analyze runs one Detect+Build pass against the current snapshot.
func (a *Analyzer) Analyze(ctx context.Context, opts AnalyzeOptions) (*Report, error) {
	start := time.Now()

	if opts.Strategy == "" {
		opts.Strategy = model.StrategyBalanced
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	snap, err := a.reader.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var conflicts []model.Conflict
	if opts.ResourceID != "" {
		conflicts = conflict.DetectForResource(snap, opts.ResourceID)
	} else {
		conflicts, err = conflict.Detect(ctx, snap, a.workers)
		if err != nil {
			return nil, err
		}
	}

	recs := leveling.Build(conflicts, opts.Strategy, snap, a.policy)

	a.countersMu.Lock()
	a.counters.AnalysesRun++
	a.counters.ConflictsDetected += len(conflicts)
	a.counters.RecommendationsBuilt += len(recs)
	a.countersMu.Unlock()

	report := &Report{
		Strategy:        opts.Strategy,
		Generation:      snap.Generation,
		GeneratedAt:     time.Now().UTC(),
		Duration:        time.Since(start),
		ResourceFilter:  opts.ResourceID,
		Conflicts:       conflicts,
		Recommendations: recs,
	}

	a.publishAnalysis(report)
	a.log(LogLevelInfo, "analysis_completed strategy=%s conflicts=%d recommendations=%d duration=%s",
		opts.Strategy, len(conflicts), len(recs), report.Duration)

	return report, nil
}

// ApplyResolution executes a recommendation. On success the cached
// snapshot is invalidated so the next Analyze recomputes against the
// updated schedule; the caller must discard the old recommendation list.
func (a *Analyzer) ApplyResolution(ctx context.Context, rec model.Recommendation) (*model.Task, error) {
	updated, err := a.applier.Apply(ctx, rec)
	if err != nil {
		a.countersMu.Lock()
		a.counters.ApplyFailures++
		a.countersMu.Unlock()
		a.log(LogLevelWarn, "apply_failed kind=%s task=%s error=%v", rec.Kind(), rec.Target().ID, err)
		return nil, err
	}

	a.countersMu.Lock()
	a.counters.ResolutionsApplied++
	a.counters.SnapshotRefreshes++
	a.countersMu.Unlock()

	a.reader.Invalidate()

	if a.bus != nil {
		a.bus.Publish(events.EventResolutionApplied, map[string]interface{}{
			"kind":    string(rec.Kind()),
			"task_id": updated.ID,
			"version": updated.Version,
		})
		a.bus.Publish(events.EventSnapshotInvalidated, map[string]interface{}{
			"reason": "resolution_applied",
		})
	}
	if a.audit != nil {
		if err := a.audit.Append(events.AuditEntry{
			EventType: string(events.EventResolutionApplied),
			TaskID:    updated.ID,
			Kind:      string(rec.Kind()),
			Details: map[string]any{
				"rationale": rec.Rationale(),
				"severity":  string(rec.SeverityLevel()),
				"version":   updated.Version,
			},
		}); err != nil {
			a.log(LogLevelWarn, "audit_append_failed task=%s error=%v", updated.ID, err)
		}
	}

	a.log(LogLevelInfo, "resolution_applied kind=%s task=%s version=%d", rec.Kind(), updated.ID, updated.Version)
	return updated, nil
}

// Invalidate drops the cached snapshot (e.g. after out-of-band edits).
func (a *Analyzer) Invalidate() {
	a.reader.Invalidate()
	a.countersMu.Lock()
	a.counters.SnapshotRefreshes++
	a.countersMu.Unlock()
	if a.bus != nil {
		a.bus.Publish(events.EventSnapshotInvalidated, map[string]interface{}{
			"reason": "explicit",
		})
	}
}

// Metrics snapshots the run counters.
func (a *Analyzer) Metrics() model.Metrics {
	a.countersMu.Lock()
	counters := a.counters
	a.countersMu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	return model.Metrics{
		SchemaVersion: 1,
		FileType:      "metrics",
		Counters:      counters,
		UpdatedAt:     &now,
	}
}

func (a *Analyzer) publishAnalysis(report *Report) {
	if a.bus == nil {
		return
	}
	for _, c := range report.Conflicts {
		a.bus.Publish(events.EventConflictDetected, map[string]interface{}{
			"resource_id":  c.ResourceID,
			"task1":        c.Task1.ID,
			"task2":        c.Task2.ID,
			"overlap_days": c.OverlapDays,
			"type":         string(c.Type),
			"severity":     string(c.Severity),
		})
	}
	a.bus.Publish(events.EventAnalysisCompleted, map[string]interface{}{
		"strategy":        string(report.Strategy),
		"conflicts":       len(report.Conflicts),
		"recommendations": len(report.Recommendations),
		"generation":      report.Generation,
	})
}

func (a *Analyzer) log(level LogLevel, format string, args ...any) {
	if level < a.logLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	a.logger.Printf("%s %s engine: %s", time.Now().Format(time.RFC3339), level, msg)
}
