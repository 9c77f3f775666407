// internal/benchmark/export.go
package benchmark

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/smolpc/benchkit/internal/logging"
	"github.com/smolpc/benchkit/internal/util"
)

// flushEvery is the row cadence of durable flushes: a crash after row N
// still leaves every row through the last flush boundary on disk. Tunable,
// not a semantic requirement.
const flushEvery = 10

// csvColumns is the single source of truth for the export schema. Column
// set and order are the contract; metricsRow builds rows from the same
// list so header and data cannot drift.
var csvColumns = []string{
	"timestamp",
	"iteration",
	"category",
	"model",
	"first_token_ms",
	"total_time_ms",
	"tokens_per_sec",
	"avg_token_ms",
	"timing_source",
	"memory_before_mb",
	"memory_peak_mb",
	"cpu_ollama_percent",
	"cpu_client_percent",
	"cpu_system_percent",
	"cpu_total_percent",
	"response_tokens",
	"cpu_model",
	"gpu_name",
	"avx2_supported",
	"npu_detected",
	"prompt",
}

// csvExporter writes metrics rows with periodic durable flushes.
type csvExporter struct {
	file   *os.File
	writer *csv.Writer
	rows   int
}

// newCSVExporter creates the file and writes (and flushes) the header row.
func newCSVExporter(path string) (*csvExporter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvColumns); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to flush CSV header: %w", err)
	}

	return &csvExporter{file: file, writer: writer}, nil
}

// WriteMetrics appends one record, flushing every flushEvery rows.
func (e *csvExporter) WriteMetrics(m BenchmarkMetrics) error {
	if err := e.writer.Write(metricsRow(m)); err != nil {
		return fmt.Errorf("failed to write metrics row: %w", err)
	}
	e.rows++
	if e.rows%flushEvery == 0 {
		e.writer.Flush()
		if err := e.writer.Error(); err != nil {
			return fmt.Errorf("failed to flush CSV writer: %w", err)
		}
	}
	return nil
}

// Close performs the final flush and closes the file.
func (e *csvExporter) Close() error {
	e.writer.Flush()
	flushErr := e.writer.Error()
	closeErr := e.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", flushErr)
	}
	return closeErr
}

// metricsRow renders one record in csvColumns order. Floats carry exactly
// two decimal places.
func metricsRow(m BenchmarkMetrics) []string {
	fields := map[string]string{
		"timestamp":          m.Timestamp,
		"iteration":          strconv.Itoa(m.Iteration),
		"category":           string(m.Category),
		"model":              m.ModelName,
		"first_token_ms":     formatFloat(m.FirstTokenLatencyMs),
		"total_time_ms":      formatFloat(m.TotalResponseTimeMs),
		"tokens_per_sec":     formatFloat(m.TokensPerSecond),
		"avg_token_ms":       formatFloat(m.AvgTokenLatencyMs),
		"timing_source":      m.TimingSource.String(),
		"memory_before_mb":   formatFloat(m.MemoryBeforeMB),
		"memory_peak_mb":     formatFloat(m.PeakMemoryMB),
		"cpu_ollama_percent": formatFloat(m.CPUOllamaPercent),
		"cpu_client_percent": formatFloat(m.CPUClientPercent),
		"cpu_system_percent": formatFloat(m.CPUSystemPercent),
		"cpu_total_percent":  formatFloat(m.CPUTotalPercent),
		"response_tokens":    strconv.Itoa(m.ResponseTokens),
		"cpu_model":          m.CPUModel,
		"gpu_name":           m.GPUName,
		"avx2_supported":     strconv.FormatBool(m.AVX2Supported),
		"npu_detected":       strconv.FormatBool(m.NPUDetected),
		"prompt":             m.Prompt,
	}

	row := make([]string, len(csvColumns))
	for i, col := range csvColumns {
		row[i] = fields[col]
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// BenchmarksDir resolves the output directory: the override if given,
// otherwise a benchmarks directory under the platform application-data
// location. The working directory is never used; it is unstable across
// launch methods.
func BenchmarksDir(override string) (string, error) {
	dir := override
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve application data directory: %w", err)
		}
		dir = filepath.Join(configDir, "benchkit", "benchmarks")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create benchmarks directory %s: %w", dir, err)
	}
	return dir, nil
}

// generateFilename builds `<prefix>-<YYYY-MM-DD_HH-MM-SS>.csv`; second
// resolution is collision-free at normal run cadence.
func generateFilename(prefix string) string {
	return fmt.Sprintf("%s-%s.csv", prefix, time.Now().Format("2006-01-02_15-04-05"))
}

// ExportCSV writes every metrics record to a timestamped CSV file in dir
// and drops the methodology README alongside it if not already present.
// Returns the path of the written file.
func ExportCSV(results *BenchmarkResults, dir, prefix string) (string, error) {
	if err := writeMethodologyDoc(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, generateFilename(util.Slugify(prefix)))
	exporter, err := newCSVExporter(path)
	if err != nil {
		return "", err
	}

	for _, m := range results.Metrics {
		if err := exporter.WriteMetrics(m); err != nil {
			_ = exporter.Close()
			return "", err
		}
	}

	if err := exporter.Close(); err != nil {
		return "", err
	}

	logging.LogEvent("Benchmark results written to %s", path)
	return path, nil
}

// methodologyDoc documents the CSV format and measurement methodology for
// anyone opening the output directory cold.
const methodologyDoc = `# Benchmark Results

This directory contains benchmark CSV files produced by benchkit.

## File Naming

Files are named ` + "`<prefix>-<YYYY-MM-DD_HH-MM-SS>.csv`" + `. The prefix labels the
run series (for example "baseline" before optimizations, "phase1" after).

## CSV Columns

Timing (milliseconds unless noted):
- first_token_ms: prompt-evaluation time before the first generated token
- total_time_ms: full request duration
- tokens_per_sec: generation throughput
- avg_token_ms: average generation time per token
- timing_source: "ollama_native" when the numbers come from Ollama's own
  nanosecond instrumentation, "client_estimated" when they were derived from
  wall-clock time and a character-based token estimate. Estimated rows exist
  only for degraded telemetry and should be filtered for rigorous analysis.

Resources (sampled every 50 ms during inference, inference process only):
- memory_before_mb, memory_peak_mb: resident memory of the inference process
- cpu_ollama_percent: inference process CPU average
- cpu_client_percent: benchmark client CPU average (HTTP/JSON overhead)
- cpu_system_percent: system-wide CPU average across logical cores
- cpu_total_percent: sum of the three averages

Metadata:
- timestamp, iteration, category (short/medium/long/follow-up), model,
  response_tokens, prompt
- cpu_model, gpu_name, avx2_supported, npu_detected: hardware snapshot taken
  once per run; all "Unknown" values mean hardware detection failed

## Methodology

A warmup request loads the model before any measurement, and the inference
process is identified by resident memory (a loaded model uses gigabytes; the
server and CLI shims that share its name do not). A background sampler
records the process's CPU and memory for the whole request window, started
before the request is sent and stopped after the response is received.
Requests are non-streaming so Ollama's complete timing metadata arrives with
the response. memory-during is summarized with the median to resist outlier
samples.

## Known Limitations

- CPU percentages undercount total inference cost on GPU-accelerated hosts.
- Measurements are unreliable when the host runs other heavy workloads
  alongside the inference process.
`

// writeMethodologyDoc creates README.md in dir once; an existing file is
// never overwritten.
func writeMethodologyDoc(dir string) error {
	path := filepath.Join(dir, "README.md")
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check for methodology doc: %w", err)
	}
	if err := util.WriteFile(path, []byte(methodologyDoc)); err != nil {
		return fmt.Errorf("failed to write methodology doc: %w", err)
	}
	return nil
}
