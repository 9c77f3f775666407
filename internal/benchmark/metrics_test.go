// internal/benchmark/metrics_test.go
package benchmark

import (
	"math"
	"testing"
)

func TestCalculateSummaryGroupsByCategory(t *testing.T) {
	var metrics []BenchmarkMetrics
	for i := 0; i < 9; i++ {
		metrics = append(metrics, BenchmarkMetrics{Category: CategoryShort, TokensPerSecond: 10})
	}
	for i := 0; i < 9; i++ {
		metrics = append(metrics, BenchmarkMetrics{Category: CategoryMedium, TokensPerSecond: 20})
	}

	summaries := CalculateSummary(metrics)

	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2 (empty categories are skipped)", len(summaries))
	}
	for _, s := range summaries {
		if s.TestCount != 9 {
			t.Fatalf("category %s TestCount = %d, want 9", s.Category, s.TestCount)
		}
	}
	if summaries[0].Category != CategoryShort || summaries[1].Category != CategoryMedium {
		t.Fatalf("summary order = %s, %s; want short, medium", summaries[0].Category, summaries[1].Category)
	}
}

func TestCalculateSummaryAverages(t *testing.T) {
	metrics := []BenchmarkMetrics{
		{Category: CategoryLong, FirstTokenLatencyMs: 100, TotalResponseTimeMs: 1000, TokensPerSecond: 10, PeakMemoryMB: 2000, CPUTotalPercent: 50},
		{Category: CategoryLong, FirstTokenLatencyMs: 200, TotalResponseTimeMs: 3000, TokensPerSecond: 30, PeakMemoryMB: 4000, CPUTotalPercent: 150},
	}

	summaries := CalculateSummary(metrics)
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}

	s := summaries[0]
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"AvgFirstTokenMs", s.AvgFirstTokenMs, 150},
		{"AvgTotalTimeMs", s.AvgTotalTimeMs, 2000},
		{"AvgTokensPerSec", s.AvgTokensPerSec, 20},
		{"AvgPeakMemoryMB", s.AvgPeakMemoryMB, 3000},
		{"AvgCPUTotalPercent", s.AvgCPUTotalPercent, 100},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 0.001 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestCalculateSummaryEmpty(t *testing.T) {
	if summaries := CalculateSummary(nil); len(summaries) != 0 {
		t.Fatalf("got %d summaries for no metrics, want 0", len(summaries))
	}
}

func TestTimingSourceJSON(t *testing.T) {
	data, err := TimingSourceEstimated.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != `"client_estimated"` {
		t.Fatalf("MarshalJSON = %s, want \"client_estimated\"", data)
	}
}
