// internal/benchmark/process.go
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/smolpc/benchkit/internal/logging"
	"github.com/smolpc/benchkit/internal/ollama"
)

const (
	// inferenceProcessMinMemory separates a process with a loaded model
	// (typically GBs resident) from the server/CLI shims that share its
	// name (~50-100 MB).
	inferenceProcessMinMemory = 500 * 1024 * 1024

	// warmupStabilizationDelay gives Ollama a moment to settle after the
	// warmup response before processes are enumerated.
	warmupStabilizationDelay = 500 * time.Millisecond

	// processNamePattern matches inference server processes, case-insensitive.
	processNamePattern = "ollama"

	// warmupPrompt is deliberately minimal; the warmup exists to load the
	// model, not to generate a long answer.
	warmupPrompt = "Hi"

	// ambiguousMemoryRatio: two qualifying candidates closer than this ratio
	// trigger a warning. Diagnostic noise reduction only; the higher one is
	// always selected.
	ambiguousMemoryRatio = 2.0
)

// processCandidate is one name-matched process considered for monitoring.
type processCandidate struct {
	pid    int32
	name   string
	memory uint64
}

// WarmupAndFindProcess loads the model with a throwaway request, waits for
// the host to stabilize, then identifies the inference process by memory
// footprint. The warmup response is fully consumed before detection so the
// model is guaranteed resident. Failure here is fatal to the whole suite:
// there is no accurate-monitoring path without the right process.
func WarmupAndFindProcess(ctx context.Context, client *ollama.Client, model string) (*process.Process, error) {
	warmup := []ollama.ChatMessage{{Role: "user", Content: warmupPrompt}}
	if _, err := client.Chat(ctx, model, warmup); err != nil {
		return nil, fmt.Errorf("warmup request failed: %w", err)
	}

	time.Sleep(warmupStabilizationDelay)

	return findInferenceProcess(ctx)
}

// findInferenceProcess enumerates name-matched processes and selects the
// one actually holding the model.
func findInferenceProcess(ctx context.Context) (*process.Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate processes: %w", err)
	}

	var candidates []processCandidate
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.Contains(strings.ToLower(name), processNamePattern) {
			continue
		}
		memInfo, err := p.MemoryInfoWithContext(ctx)
		if err != nil || memInfo == nil {
			continue
		}
		candidates = append(candidates, processCandidate{pid: p.Pid, name: name, memory: memInfo.RSS})
	}

	logging.LogEvent("Found %d %s process(es)", len(candidates), processNamePattern)
	for _, c := range candidates {
		logging.LogEvent("  PID %d: %s (%.1f MB)", c.pid, c.name, float64(c.memory)/bytesPerMB)
	}

	selected, warning, err := selectInferenceProcess(candidates)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		logging.LogEvent("%s", warning)
	}
	logging.LogEvent("Selected inference process: %q (PID %d, %.1f MB)",
		selected.name, selected.pid, float64(selected.memory)/bytesPerMB)

	return process.NewProcessWithContext(ctx, selected.pid)
}

// selectInferenceProcess picks the highest-memory candidate and rejects it
// if it falls below the loaded-model threshold. A second qualifying
// candidate within ambiguousMemoryRatio of the winner yields a non-fatal
// warning string.
func selectInferenceProcess(candidates []processCandidate) (processCandidate, string, error) {
	if len(candidates) == 0 {
		return processCandidate{}, "", errors.New("no ollama process found - ensure Ollama is running")
	}

	sorted := make([]processCandidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].memory > sorted[j].memory })

	top := sorted[0]
	if top.memory < inferenceProcessMinMemory {
		return processCandidate{}, "", fmt.Errorf(
			"no inference process found with a loaded model: highest-memory process %q has %.1f MB, need more than %.0f MB",
			top.name, float64(top.memory)/bytesPerMB, float64(inferenceProcessMinMemory)/bytesPerMB)
	}

	var warning string
	if len(sorted) > 1 {
		second := sorted[1]
		secondMemory := second.memory
		if secondMemory == 0 {
			secondMemory = 1
		}
		ratio := float64(top.memory) / float64(secondMemory)
		if second.memory >= inferenceProcessMinMemory && ratio < ambiguousMemoryRatio {
			warning = fmt.Sprintf(
				"Multiple high-memory %s processes detected: %q (%.1f MB) vs %q (%.1f MB); monitoring the larger one",
				processNamePattern, top.name, float64(top.memory)/bytesPerMB, second.name, float64(second.memory)/bytesPerMB)
		}
	}

	return top, warning, nil
}

// processMemoryMB reads the target's current resident memory in megabytes.
func processMemoryMB(p *process.Process) (float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	if memInfo == nil {
		return 0, errors.New("no memory info available")
	}
	return float64(memInfo.RSS) / bytesPerMB, nil
}
