package pipeline

import (
	"math"
	"testing"
	"time"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRenderStatsSnapshotPercentiles(t *testing.T) {
	stats := NewRenderStats(time.Hour)
	for _, ms := range []int{300, 100, 500, 200, 400} {
		stats.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"min", snap.MinMs, 100},
		{"max", snap.MaxMs, 500},
		{"avg", snap.AvgMs, 300},
		{"p50", snap.P50Ms, 300},
		{"p95", snap.P95Ms, 480},
		{"p99", snap.P99Ms, 496},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("expected %s=%v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestRenderStatsSubMillisecond(t *testing.T) {
	stats := NewRenderStats(time.Hour)
	stats.Record(250 * time.Microsecond)
	snap := stats.Snapshot()
	if !approx(snap.MinMs, 0.25) {
		t.Fatalf("expected min=0.25ms, got %v", snap.MinMs)
	}
}

func TestRenderStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewRenderStats(10 * time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stats.now = func() time.Time { return now }

	stats.Record(100 * time.Millisecond)
	now = now.Add(11 * time.Second)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200 * time.Millisecond)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%v max=%v", snap.MinMs, snap.MaxMs)
	}
}

func TestRenderStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewRenderStats(time.Hour)
	stats.Record(-10 * time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%v max=%v", snap.MinMs, snap.MaxMs)
	}
}

func TestRenderStatsEmpty(t *testing.T) {
	if snap := NewRenderStats(0).Snapshot(); snap != (StatsSnapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}
