// internal/benchmark/sampling.go
package benchmark

import (
	"math"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/smolpc/benchkit/internal/logging"
)

const (
	// bytesPerMB converts resident-set bytes to megabytes.
	bytesPerMB = 1024.0 * 1024.0

	// samplingInterval is the cadence of CPU/memory samples during inference.
	samplingInterval = 50 * time.Millisecond

	// cpuBaselineDelay is the wait between the throwaway CPU reading and the
	// first recorded one. Per-process and system CPU percentages are deltas
	// since the previous call, so the first reading after this delay is the
	// first meaningful one.
	cpuBaselineDelay = 200 * time.Millisecond

	// initialSampleCapacity pre-sizes the sample buffers; a typical response
	// window at 50 ms cadence lands near 100 samples.
	initialSampleCapacity = 100
)

// SamplingResults is the immutable snapshot extracted from a SamplingState
// after sampling has stopped. Produced at most once per state.
type SamplingResults struct {
	TargetCPU    []float64
	ClientCPU    []float64
	SystemCPU    []float64
	MemoryMB     []float64
	PeakMemoryMB float64
}

// SamplingState is shared by exactly two parties: the sampler goroutine
// (writer) and the test executor (reader/stopper). It lives for one test
// case and is discarded afterwards.
//
// The guard is a plain sync.Mutex on purpose: every critical section pushes
// four floats and compares one, sub-microsecond work that never blocks.
// Do not replace it with channel-based hand-off or anything scheduler-aware;
// that only adds overhead to a lock that is never contended for long.
type SamplingState struct {
	mu         sync.Mutex
	targetCPU  []float64
	clientCPU  []float64
	systemCPU  []float64
	memoryMB   []float64
	peakMemory float64
	active     bool
}

// NewSamplingState creates a state whose peak-memory floor is the target
// process's memory reading taken just before sampling starts.
func NewSamplingState(initialMemoryMB float64) *SamplingState {
	return &SamplingState{
		targetCPU:  make([]float64, 0, initialSampleCapacity),
		clientCPU:  make([]float64, 0, initialSampleCapacity),
		systemCPU:  make([]float64, 0, initialSampleCapacity),
		memoryMB:   make([]float64, 0, initialSampleCapacity),
		peakMemory: initialMemoryMB,
		active:     true,
	}
}

// Record appends one four-tuple sample under a single lock acquisition and
// raises the peak if this memory reading exceeds it.
func (s *SamplingState) Record(targetCPU, clientCPU, systemCPU, memoryMB float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetCPU = append(s.targetCPU, targetCPU)
	s.clientCPU = append(s.clientCPU, clientCPU)
	s.systemCPU = append(s.systemCPU, systemCPU)
	s.memoryMB = append(s.memoryMB, memoryMB)
	if memoryMB > s.peakMemory {
		s.peakMemory = memoryMB
	}
}

// Active reports whether the sampler should keep looping.
func (s *SamplingState) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stop signals the sampler to exit its loop.
func (s *SamplingState) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// Results extracts the collected samples, or nil if none were recorded.
// The state gives up its buffers; call it once, after the sampler's done
// channel has closed.
func (s *SamplingState) Results() *SamplingResults {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.targetCPU) == 0 || len(s.memoryMB) == 0 {
		return nil
	}

	results := &SamplingResults{
		TargetCPU:    s.targetCPU,
		ClientCPU:    s.clientCPU,
		SystemCPU:    s.systemCPU,
		MemoryMB:     s.memoryMB,
		PeakMemoryMB: s.peakMemory,
	}
	s.targetCPU, s.clientCPU, s.systemCPU, s.memoryMB = nil, nil, nil, nil
	return results
}

// startSampler launches the background sampling loop against the target
// process and returns a one-shot channel that closes when the loop has
// fully exited. The stopper must wait on it before reading results,
// otherwise the last sample may still be in flight.
//
// Three CPU scopes are recorded per tick: the inference process itself, this
// benchmark client (HTTP and JSON overhead), and the system-wide average.
// Keeping them separate is what lets later comparisons attribute overhead to
// the right side of the HTTP boundary.
func startSampler(target *process.Process, state *SamplingState) <-chan struct{} {
	done := make(chan struct{})
	self, selfErr := process.NewProcess(int32(os.Getpid()))
	if selfErr != nil {
		logging.LogEvent("Could not open own process for CPU sampling: %v", selfErr)
		self = nil
	}

	go func() {
		defer close(done)

		// Throwaway readings to establish the CPU delta baseline.
		_, _ = target.CPUPercent()
		if self != nil {
			_, _ = self.CPUPercent()
		}
		_, _ = cpu.Percent(0, false)
		time.Sleep(cpuBaselineDelay)

		for state.Active() {
			targetCPU, cpuErr := target.CPUPercent()
			memInfo, memErr := target.MemoryInfo()
			if cpuErr != nil || memErr != nil || memInfo == nil {
				// The process vanishing mid-test (e.g. a crash) is a
				// graceful-stop condition; the executor detects the short
				// sample set and reports it.
				logging.LogEvent("Inference process (PID %d) disappeared during sampling", target.Pid)
				return
			}

			clientCPU := 0.0
			if self != nil {
				if v, err := self.CPUPercent(); err == nil {
					clientCPU = v
				}
			}

			systemCPU := 0.0
			if vals, err := cpu.Percent(0, false); err == nil && len(vals) > 0 {
				systemCPU = vals[0]
			}

			state.Record(targetCPU, clientCPU, systemCPU, float64(memInfo.RSS)/bytesPerMB)
			time.Sleep(samplingInterval)
		}
	}()

	return done
}

// Median returns the middle sample, or the mean of the two middle samples
// for an even count, and 0 for no samples. Sorting uses a total order so a
// NaN artifact from a low-level process query sorts first instead of
// corrupting the sort.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.SortFunc(sorted, compareTotal)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Average returns the arithmetic mean, or 0 for no samples.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// compareTotal is a total ordering over float64 that places NaN before every
// other value.
func compareTotal(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
