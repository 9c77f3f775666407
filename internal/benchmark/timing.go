// internal/benchmark/timing.go
package benchmark

import (
	"time"

	"github.com/smolpc/benchkit/internal/logging"
	"github.com/smolpc/benchkit/internal/ollama"
)

// TimingSource tags where a record's timing numbers came from. Exactly two
// cases exist; adding a third requires updating every switch over this type.
type TimingSource int

const (
	// TimingSourceNative means the numbers came from Ollama's own
	// nanosecond instrumentation. Preferred.
	TimingSourceNative TimingSource = iota
	// TimingSourceEstimated means wall-clock timing plus a character-based
	// token estimate. Degraded telemetry, never equally trustworthy.
	TimingSourceEstimated
)

// String returns the literal used in exported CSV rows.
func (s TimingSource) String() string {
	switch s {
	case TimingSourceNative:
		return "ollama_native"
	case TimingSourceEstimated:
		return "client_estimated"
	default:
		return "unknown"
	}
}

// estimatedCharsPerToken is the crude characters-per-token divisor for the
// fallback path.
const estimatedCharsPerToken = 4

// TimingMetrics are the timing fields of one benchmark record.
type TimingMetrics struct {
	FirstTokenMs   float64
	TotalTimeMs    float64
	TokensPerSec   float64
	AvgTokenMs     float64
	ResponseTokens int
	Source         TimingSource
}

// extractTiming computes timing metrics from one completed response.
//
// When the response carries a token count plus eval and total durations, the
// native path converts Ollama's nanosecond figures directly. Otherwise the
// fallback estimates tokens from response length and throughput from the
// caller-measured elapsed time; first-token latency cannot be estimated from
// end-to-end timing and is reported as 0.
func extractTiming(resp *ollama.ChatResponse, elapsed time.Duration) TimingMetrics {
	if resp.EvalCount > 0 && resp.EvalDuration > 0 && resp.TotalDuration > 0 {
		evalMs := float64(resp.EvalDuration) / 1e6
		// prompt_eval_duration can legitimately be 0 when the prompt cache
		// is warm; that does not demote the record to the fallback path.
		promptEvalMs := float64(resp.PromptEvalDuration) / 1e6
		tokens := float64(resp.EvalCount)

		return TimingMetrics{
			FirstTokenMs:   promptEvalMs,
			TotalTimeMs:    float64(resp.TotalDuration) / 1e6,
			TokensPerSec:   tokens / (evalMs / 1000),
			AvgTokenMs:     evalMs / tokens,
			ResponseTokens: resp.EvalCount,
			Source:         TimingSourceNative,
		}
	}

	logging.LogEvent("Response lacks native timing metadata; falling back to client-side estimates")

	tokens := len(resp.Message.Content) / estimatedCharsPerToken
	if tokens < 1 {
		tokens = 1
	}
	elapsedMs := float64(elapsed.Milliseconds())

	tokensPerSec := 0.0
	avgTokenMs := 0.0
	if elapsed > 0 {
		tokensPerSec = float64(tokens) / elapsed.Seconds()
		avgTokenMs = elapsedMs / float64(tokens)
	}

	return TimingMetrics{
		FirstTokenMs:   0,
		TotalTimeMs:    elapsedMs,
		TokensPerSec:   tokensPerSec,
		AvgTokenMs:     avgTokenMs,
		ResponseTokens: tokens,
		Source:         TimingSourceEstimated,
	}
}
