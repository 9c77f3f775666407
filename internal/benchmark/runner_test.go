// internal/benchmark/runner_test.go
package benchmark

import (
	"testing"

	"github.com/smolpc/benchkit/internal/appconfig"
	"github.com/smolpc/benchkit/internal/hardware"
)

func TestNewRunnerPicksContextSource(t *testing.T) {
	cfg := &appconfig.Config{Model: "qwen2.5-coder:3b"}
	suite := DefaultSuite()

	r := NewRunner(cfg, nil, hardware.Unknown(), suite)

	if r.contextSource.ID != "short_1" {
		t.Fatalf("contextSource = %q, want the first short test case", r.contextSource.ID)
	}
}

func TestNewRunnerNoShortTests(t *testing.T) {
	cfg := &appconfig.Config{Model: "m"}
	suite := []TestCase{
		{ID: "long_1", Category: CategoryLong, Prompt: "p"},
		{ID: "followup_1", Category: CategoryFollowUp, Prompt: "p"},
	}

	r := NewRunner(cfg, nil, hardware.Unknown(), suite)

	if r.contextSource.ID != "" {
		t.Fatalf("contextSource = %q, want empty when the suite has no short tests", r.contextSource.ID)
	}
}
