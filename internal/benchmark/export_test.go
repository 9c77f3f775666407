// internal/benchmark/export_test.go
package benchmark

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func sampleMetrics(iteration int) BenchmarkMetrics {
	return BenchmarkMetrics{
		FirstTokenLatencyMs: 123.456,
		TotalResponseTimeMs: 4567.89,
		TokensPerSecond:     25.5,
		AvgTokenLatencyMs:   40,
		TimingSource:        TimingSourceNative,
		MemoryBeforeMB:      1024.5,
		MemoryDuringMB:      2048,
		MemoryAfterMB:       1100,
		PeakMemoryMB:        2100.25,
		CPUOllamaPercent:    85.123,
		CPUClientPercent:    2.5,
		CPUSystemPercent:    40,
		CPUTotalPercent:     127.623,
		ModelName:           "qwen2.5-coder:3b",
		Category:            CategoryShort,
		Prompt:              "What is a variable in Python?",
		ResponseTokens:      100,
		Timestamp:           "2026-08-23T12:00:00Z",
		Iteration:           iteration,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestExporterHeaderMatchesColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	exporter, err := newCSVExporter(path)
	if err != nil {
		t.Fatalf("newCSVExporter: %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 1 {
		t.Fatalf("got %d records, want header only", len(records))
	}
	if len(records[0]) != len(csvColumns) {
		t.Fatalf("header has %d columns, want %d", len(records[0]), len(csvColumns))
	}
	for i, col := range csvColumns {
		if records[0][i] != col {
			t.Fatalf("header column %d = %q, want %q", i, records[0][i], col)
		}
	}
}

func TestExporterFlushesIncrementally(t *testing.T) {
	// 23 records written and the exporter never closed, simulating a crash
	// mid-run. The header plus the rows through the last flush boundary
	// must already be on disk.
	path := filepath.Join(t.TempDir(), "out.csv")
	exporter, err := newCSVExporter(path)
	if err != nil {
		t.Fatalf("newCSVExporter: %v", err)
	}

	for i := 1; i <= 23; i++ {
		if err := exporter.WriteMetrics(sampleMetrics(i)); err != nil {
			t.Fatalf("WriteMetrics %d: %v", i, err)
		}
	}

	records := readCSV(t, path)
	if len(records) != 21 {
		t.Fatalf("got %d records on disk, want header + 20 flushed rows", len(records))
	}
}

func TestExporterRowFormatting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	exporter, err := newCSVExporter(path)
	if err != nil {
		t.Fatalf("newCSVExporter: %v", err)
	}
	if err := exporter.WriteMetrics(sampleMetrics(1)); err != nil {
		t.Fatalf("WriteMetrics: %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}

	row := records[1]
	byColumn := make(map[string]string, len(csvColumns))
	for i, col := range csvColumns {
		byColumn[col] = row[i]
	}

	if byColumn["first_token_ms"] != "123.46" {
		t.Errorf("first_token_ms = %q, want two decimal places", byColumn["first_token_ms"])
	}
	if byColumn["memory_peak_mb"] != "2100.25" {
		t.Errorf("memory_peak_mb = %q, want 2100.25", byColumn["memory_peak_mb"])
	}
	if byColumn["timing_source"] != "ollama_native" {
		t.Errorf("timing_source = %q, want ollama_native", byColumn["timing_source"])
	}
	if byColumn["response_tokens"] != "100" {
		t.Errorf("response_tokens = %q, want 100", byColumn["response_tokens"])
	}
	if byColumn["iteration"] != "1" {
		t.Errorf("iteration = %q, want 1", byColumn["iteration"])
	}
}

func TestGenerateFilename(t *testing.T) {
	name := generateFilename("baseline")
	pattern := regexp.MustCompile(`^baseline-\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.csv$`)
	if !pattern.MatchString(name) {
		t.Fatalf("filename %q does not match <prefix>-<YYYY-MM-DD_HH-MM-SS>.csv", name)
	}
}

func TestExportCSVWritesMethodologyDocOnce(t *testing.T) {
	dir := t.TempDir()
	results := &BenchmarkResults{
		RunID:   "test-run",
		Metrics: []BenchmarkMetrics{sampleMetrics(1)},
	}

	if _, err := ExportCSV(results, dir, "baseline"); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	readmePath := filepath.Join(dir, "README.md")
	original, err := os.ReadFile(readmePath)
	if err != nil {
		t.Fatalf("methodology doc not written: %v", err)
	}

	// A user-edited doc survives subsequent exports.
	if err := os.WriteFile(readmePath, []byte("edited"), 0o644); err != nil {
		t.Fatalf("edit README: %v", err)
	}
	if _, err := ExportCSV(results, dir, "baseline"); err != nil {
		t.Fatalf("second ExportCSV: %v", err)
	}
	edited, err := os.ReadFile(readmePath)
	if err != nil {
		t.Fatalf("read README: %v", err)
	}
	if string(edited) != "edited" {
		t.Fatal("methodology doc was overwritten on re-export")
	}
	if !strings.Contains(string(original), "timing_source") {
		t.Fatal("methodology doc should document the timing_source column")
	}
}

func TestExportCSVSlugifiesPrefix(t *testing.T) {
	dir := t.TempDir()
	results := &BenchmarkResults{Metrics: []BenchmarkMetrics{sampleMetrics(1)}}

	path, err := ExportCSV(results, dir, "Qwen2.5:3B Baseline")
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "qwen2-5_3b-baseline-") {
		t.Fatalf("exported filename %q not slugified as expected", base)
	}
}

func TestBenchmarksDirOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	got, err := BenchmarksDir(dir)
	if err != nil {
		t.Fatalf("BenchmarksDir: %v", err)
	}
	if got != dir {
		t.Fatalf("BenchmarksDir = %q, want override %q", got, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("override directory not created: %v", err)
	}
}
