// internal/benchmark/runner.go
// Package benchmark implements the benchmark data-collection engine:
// process location, concurrent resource sampling, timing extraction,
// statistical aggregation, and CSV export.
//
// Measurement approach: token and timing numbers come from Ollama's own
// nanosecond instrumentation whenever present (non-streaming requests so the
// metadata arrives complete), resource numbers come from 50 ms sampling of
// the identified inference process, and memory-during uses the median so a
// single outlier sample cannot skew it. CPU is recorded for the inference
// process, this client, and the system separately so HTTP-boundary overhead
// stays attributable.
//
// Known limitation: measurements are not reliable when the target host runs
// other heavy workloads alongside the inference process.
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/smolpc/benchkit/internal/appconfig"
	"github.com/smolpc/benchkit/internal/hardware"
	"github.com/smolpc/benchkit/internal/logging"
	"github.com/smolpc/benchkit/internal/ollama"
)

// testStabilizationDelay separates consecutive tests so one test's tail
// activity does not bleed into the next one's samples.
const testStabilizationDelay = 500 * time.Millisecond

// systemPrompt is the fixed instruction sent ahead of every test prompt.
const systemPrompt = `You are a helpful coding assistant designed for secondary school students (ages 11-18).
Your goal is to explain programming concepts clearly and provide well-commented code examples.

Guidelines:
- Use simple, encouraging language
- Break down complex concepts into steps
- Always include helpful comments in code
- Be patient and supportive
- Adapt explanations to the student's level
- Encourage learning and experimentation`

// Progress is emitted once per test case for UI consumption.
type Progress struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	CurrentTest string `json:"current_test"`
	Iteration   int    `json:"iteration"`
}

// ProgressFunc receives progress updates during a suite run.
type ProgressFunc func(Progress)

// Runner executes the benchmark suite against one model on one host. It is
// driven strictly sequentially; only the sampler goroutine runs concurrently
// with each outbound request.
type Runner struct {
	client *ollama.Client
	cfg    *appconfig.Config
	hw     hardware.Snapshot
	suite  []TestCase

	// contextSource is the test case whose live response feeds follow-up
	// prompts; empty ID if the suite has no short tests.
	contextSource TestCase

	target *process.Process
}

// NewRunner builds a Runner from explicit collaborators. The hardware
// snapshot is taken once by the caller and passed by value; nothing here
// re-queries it.
func NewRunner(cfg *appconfig.Config, client *ollama.Client, hw hardware.Snapshot, suite []TestCase) *Runner {
	r := &Runner{client: client, cfg: cfg, hw: hw, suite: suite}
	for _, tc := range suite {
		if tc.Category == CategoryShort {
			r.contextSource = tc
			break
		}
	}
	return r
}

// RunSuite executes every test case for the configured number of iterations
// and returns the aggregated results. Any single-test failure aborts the
// remaining suite; partially collected metrics are not returned.
func (r *Runner) RunSuite(ctx context.Context, progress ProgressFunc) (*BenchmarkResults, error) {
	target, err := WarmupAndFindProcess(ctx, r.client, r.cfg.Model)
	if err != nil {
		return nil, err
	}
	r.target = target

	iterations := r.cfg.IterationCount()
	total := TotalTestCount(r.suite, iterations)
	suiteStart := time.Now()

	var allMetrics []BenchmarkMetrics
	var lastResponse string
	current := 0

	for iteration := 1; iteration <= iterations; iteration++ {
		for _, tc := range r.suite {
			current++

			var contextMessages []ollama.ChatMessage
			if tc.Category == CategoryFollowUp && lastResponse != "" {
				// Follow-up context is the actual response text of the
				// designated earlier test, never a canned placeholder.
				contextMessages = []ollama.ChatMessage{
					{Role: "user", Content: r.contextSource.Prompt},
					{Role: "assistant", Content: lastResponse},
				}
			}

			if progress != nil {
				progress(Progress{
					Current:     current,
					Total:       total,
					CurrentTest: tc.ID,
					Iteration:   iteration,
				})
			}
			logging.LogEvent("Running test %s (iteration %d, %d/%d)", tc.ID, iteration, current, total)

			metrics, response, err := r.runSingleTest(ctx, tc, iteration, contextMessages)
			if err != nil {
				return nil, fmt.Errorf("test %s (iteration %d): %w", tc.ID, iteration, err)
			}

			if tc.ID == r.contextSource.ID {
				lastResponse = response
			}

			allMetrics = append(allMetrics, metrics)

			time.Sleep(testStabilizationDelay)
		}
	}

	return &BenchmarkResults{
		RunID:                uuid.NewString(),
		Metrics:              allMetrics,
		Summary:              CalculateSummary(allMetrics),
		TotalDurationSeconds: time.Since(suiteStart).Seconds(),
		Timestamp:            Timestamp(),
	}, nil
}

// runSingleTest runs one test case end to end and returns its metrics
// record plus the raw response text for follow-up chaining.
//
// Ordering is load-bearing: sampling starts before the request goes out and
// stops after the response is fully received, so the sampled window is a
// superset of the true inference window. The done channel hand-off
// guarantees the last sample is written before results are read.
func (r *Runner) runSingleTest(ctx context.Context, tc TestCase, iteration int, contextMessages []ollama.ChatMessage) (BenchmarkMetrics, string, error) {
	memoryBefore, err := processMemoryMB(r.target)
	if err != nil {
		return BenchmarkMetrics{}, "", fmt.Errorf("inference process (PID %d) disappeared before test started: %w", r.target.Pid, err)
	}

	messages := make([]ollama.ChatMessage, 0, len(contextMessages)+2)
	messages = append(messages, ollama.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, contextMessages...)
	messages = append(messages, ollama.ChatMessage{Role: "user", Content: tc.Prompt})

	state := NewSamplingState(memoryBefore)
	done := startSampler(r.target, state)

	requestStart := time.Now()
	resp, reqErr := r.client.Chat(ctx, r.cfg.Model, messages)
	elapsed := time.Since(requestStart)

	state.Stop()
	<-done

	if reqErr != nil {
		return BenchmarkMetrics{}, "", reqErr
	}

	results := state.Results()
	if results == nil {
		return BenchmarkMetrics{}, "", fmt.Errorf(
			"resource sampling failed: no samples collected for inference process (PID %d)", r.target.Pid)
	}

	memoryAfter, err := processMemoryMB(r.target)
	if err != nil {
		return BenchmarkMetrics{}, "", fmt.Errorf("inference process (PID %d) disappeared after test completed: %w", r.target.Pid, err)
	}

	timing := extractTiming(resp, elapsed)

	cpuOllama := Average(results.TargetCPU)
	cpuClient := Average(results.ClientCPU)
	cpuSystem := Average(results.SystemCPU)

	metrics := BenchmarkMetrics{
		FirstTokenLatencyMs: timing.FirstTokenMs,
		TotalResponseTimeMs: timing.TotalTimeMs,
		TokensPerSecond:     timing.TokensPerSec,
		AvgTokenLatencyMs:   timing.AvgTokenMs,
		TimingSource:        timing.Source,

		MemoryBeforeMB: memoryBefore,
		MemoryDuringMB: Median(results.MemoryMB),
		MemoryAfterMB:  memoryAfter,
		PeakMemoryMB:   results.PeakMemoryMB,

		CPUOllamaPercent: cpuOllama,
		CPUClientPercent: cpuClient,
		CPUSystemPercent: cpuSystem,
		CPUTotalPercent:  cpuOllama + cpuClient + cpuSystem,

		ModelName:      r.cfg.Model,
		Category:       tc.Category,
		Prompt:         tc.Prompt,
		ResponseTokens: timing.ResponseTokens,
		Timestamp:      Timestamp(),
		Iteration:      iteration,

		Snapshot: r.hw,
	}

	return metrics, resp.Message.Content, nil
}
