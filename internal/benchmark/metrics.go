// internal/benchmark/metrics.go
package benchmark

import (
	"encoding/json"
	"time"

	"github.com/smolpc/benchkit/internal/hardware"
)

// BenchmarkMetrics is one record per (test case × iteration), immutable
// after creation.
//
// Every memory field is drawn from the same inference process: before,
// during (median of samples), after, and peak all describe the target's
// resident memory, never system-wide totals. Mixing scales here once made
// "did peak exceed baseline" comparisons always false.
type BenchmarkMetrics struct {
	// Timing
	FirstTokenLatencyMs float64      `json:"first_token_latency_ms"`
	TotalResponseTimeMs float64      `json:"total_response_time_ms"`
	TokensPerSecond     float64      `json:"tokens_per_second"`
	AvgTokenLatencyMs   float64      `json:"avg_token_latency_ms"`
	TimingSource        TimingSource `json:"timing_source"`

	// Memory (MB, target process)
	MemoryBeforeMB float64 `json:"memory_before_mb"`
	MemoryDuringMB float64 `json:"memory_during_mb"`
	MemoryAfterMB  float64 `json:"memory_after_mb"`
	PeakMemoryMB   float64 `json:"peak_memory_mb"`

	// CPU (averages over the sampling window)
	CPUOllamaPercent float64 `json:"cpu_ollama_percent"`
	CPUClientPercent float64 `json:"cpu_client_percent"`
	CPUSystemPercent float64 `json:"cpu_system_percent"`
	CPUTotalPercent  float64 `json:"cpu_total_percent"`

	// Metadata
	ModelName      string   `json:"model_name"`
	Category       Category `json:"category"`
	Prompt         string   `json:"prompt"`
	ResponseTokens int      `json:"response_tokens"`
	Timestamp      string   `json:"timestamp"`
	Iteration      int      `json:"iteration"`

	hardware.Snapshot
}

// MarshalJSON emits the timing source as its CSV literal rather than an
// opaque integer.
func (s TimingSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// BenchmarkSummary averages every timing/memory/CPU field across one
// category. Recomputed from scratch, never updated incrementally.
type BenchmarkSummary struct {
	Category            Category `json:"category"`
	AvgFirstTokenMs     float64  `json:"avg_first_token_ms"`
	AvgTotalTimeMs      float64  `json:"avg_total_time_ms"`
	AvgTokensPerSec     float64  `json:"avg_tokens_per_sec"`
	AvgTokenLatencyMs   float64  `json:"avg_token_latency_ms"`
	AvgMemoryBeforeMB   float64  `json:"avg_memory_before_mb"`
	AvgMemoryDuringMB   float64  `json:"avg_memory_during_mb"`
	AvgMemoryAfterMB    float64  `json:"avg_memory_after_mb"`
	AvgPeakMemoryMB     float64  `json:"avg_peak_memory_mb"`
	AvgCPUOllamaPercent float64  `json:"avg_cpu_ollama_percent"`
	AvgCPUClientPercent float64  `json:"avg_cpu_client_percent"`
	AvgCPUSystemPercent float64  `json:"avg_cpu_system_percent"`
	AvgCPUTotalPercent  float64  `json:"avg_cpu_total_percent"`
	TestCount           int      `json:"test_count"`
}

// BenchmarkResults is the terminal output of one suite run.
type BenchmarkResults struct {
	RunID                string             `json:"run_id"`
	Metrics              []BenchmarkMetrics `json:"metrics"`
	Summary              []BenchmarkSummary `json:"summary"`
	TotalDurationSeconds float64            `json:"total_duration_seconds"`
	Timestamp            string             `json:"timestamp"`
}

// Timestamp returns the current local time in RFC 3339 format.
func Timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// CalculateSummary partitions metrics by category and averages every
// timing/memory/CPU field within each non-empty partition.
func CalculateSummary(metrics []BenchmarkMetrics) []BenchmarkSummary {
	var summaries []BenchmarkSummary

	for _, category := range categories {
		var group []BenchmarkMetrics
		for _, m := range metrics {
			if m.Category == category {
				group = append(group, m)
			}
		}
		if len(group) == 0 {
			continue
		}

		count := float64(len(group))
		sum := BenchmarkSummary{Category: category, TestCount: len(group)}
		for _, m := range group {
			sum.AvgFirstTokenMs += m.FirstTokenLatencyMs
			sum.AvgTotalTimeMs += m.TotalResponseTimeMs
			sum.AvgTokensPerSec += m.TokensPerSecond
			sum.AvgTokenLatencyMs += m.AvgTokenLatencyMs
			sum.AvgMemoryBeforeMB += m.MemoryBeforeMB
			sum.AvgMemoryDuringMB += m.MemoryDuringMB
			sum.AvgMemoryAfterMB += m.MemoryAfterMB
			sum.AvgPeakMemoryMB += m.PeakMemoryMB
			sum.AvgCPUOllamaPercent += m.CPUOllamaPercent
			sum.AvgCPUClientPercent += m.CPUClientPercent
			sum.AvgCPUSystemPercent += m.CPUSystemPercent
			sum.AvgCPUTotalPercent += m.CPUTotalPercent
		}
		sum.AvgFirstTokenMs /= count
		sum.AvgTotalTimeMs /= count
		sum.AvgTokensPerSec /= count
		sum.AvgTokenLatencyMs /= count
		sum.AvgMemoryBeforeMB /= count
		sum.AvgMemoryDuringMB /= count
		sum.AvgMemoryAfterMB /= count
		sum.AvgPeakMemoryMB /= count
		sum.AvgCPUOllamaPercent /= count
		sum.AvgCPUClientPercent /= count
		sum.AvgCPUSystemPercent /= count
		sum.AvgCPUTotalPercent /= count

		summaries = append(summaries, sum)
	}

	return summaries
}
