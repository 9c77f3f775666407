// internal/benchmark/timing_test.go
package benchmark

import (
	"math"
	"testing"
	"time"

	"github.com/smolpc/benchkit/internal/ollama"
)

func TestExtractTimingNative(t *testing.T) {
	resp := &ollama.ChatResponse{
		TotalDuration:      5_000_000_000, // 5s
		PromptEvalDuration: 200_000_000,   // 200ms
		EvalCount:          100,
		EvalDuration:       4_000_000_000, // 4s
	}

	timing := extractTiming(resp, 6*time.Second)

	if timing.Source != TimingSourceNative {
		t.Fatalf("Source = %v, want native", timing.Source)
	}
	if timing.FirstTokenMs != 200 {
		t.Fatalf("FirstTokenMs = %v, want 200", timing.FirstTokenMs)
	}
	if timing.TotalTimeMs != 5000 {
		t.Fatalf("TotalTimeMs = %v, want 5000", timing.TotalTimeMs)
	}
	if math.Abs(timing.TokensPerSec-25) > 0.001 {
		t.Fatalf("TokensPerSec = %v, want 25", timing.TokensPerSec)
	}
	if math.Abs(timing.AvgTokenMs-40) > 0.001 {
		t.Fatalf("AvgTokenMs = %v, want 40", timing.AvgTokenMs)
	}
	if timing.ResponseTokens != 100 {
		t.Fatalf("ResponseTokens = %d, want 100", timing.ResponseTokens)
	}
}

func TestExtractTimingNativeWithWarmPromptCache(t *testing.T) {
	// A warm prompt cache legitimately reports prompt_eval_duration of 0;
	// that must not demote the record to the estimated path.
	resp := &ollama.ChatResponse{
		TotalDuration: 2_000_000_000,
		EvalCount:     50,
		EvalDuration:  1_000_000_000,
	}

	timing := extractTiming(resp, 3*time.Second)

	if timing.Source != TimingSourceNative {
		t.Fatalf("Source = %v, want native despite zero prompt eval duration", timing.Source)
	}
	if timing.FirstTokenMs != 0 {
		t.Fatalf("FirstTokenMs = %v, want 0", timing.FirstTokenMs)
	}
}

func TestExtractTimingFallback(t *testing.T) {
	resp := &ollama.ChatResponse{
		Message: ollama.ChatMessage{Content: "This response is exactly forty characters"},
	}

	timing := extractTiming(resp, 2*time.Second)

	if timing.Source != TimingSourceEstimated {
		t.Fatalf("Source = %v, want estimated", timing.Source)
	}
	// 41 chars / 4 chars per token = 10 tokens.
	if timing.ResponseTokens != 10 {
		t.Fatalf("ResponseTokens = %d, want 10", timing.ResponseTokens)
	}
	if timing.FirstTokenMs != 0 {
		t.Fatalf("FirstTokenMs = %v, want 0 on the estimated path", timing.FirstTokenMs)
	}
	if timing.TotalTimeMs != 2000 {
		t.Fatalf("TotalTimeMs = %v, want 2000", timing.TotalTimeMs)
	}
	if math.Abs(timing.TokensPerSec-5) > 0.001 {
		t.Fatalf("TokensPerSec = %v, want 5", timing.TokensPerSec)
	}
}

func TestExtractTimingFallbackEmptyResponse(t *testing.T) {
	resp := &ollama.ChatResponse{}

	timing := extractTiming(resp, time.Second)

	if timing.ResponseTokens != 1 {
		t.Fatalf("ResponseTokens = %d, want floor of 1", timing.ResponseTokens)
	}
}

func TestTimingSourceString(t *testing.T) {
	if got := TimingSourceNative.String(); got != "ollama_native" {
		t.Fatalf("native String() = %q", got)
	}
	if got := TimingSourceEstimated.String(); got != "client_estimated" {
		t.Fatalf("estimated String() = %q", got)
	}
}
