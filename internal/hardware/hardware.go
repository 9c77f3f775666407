// internal/hardware/hardware.go
// Package hardware captures a one-time snapshot of the host for benchmark metadata.
package hardware

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/smolpc/benchkit/internal/logging"
)

// detectTimeout bounds external detection commands such as nvidia-smi.
const detectTimeout = 10 * time.Second

// Sentinel values used when detection fails, so downstream consumers never
// branch on absence.
const (
	UnknownCPU = "Unknown CPU"
	UnknownGPU = "Unknown GPU"
	NoGPU      = "No GPU"
)

// Snapshot is an immutable record of the host hardware, captured once per
// suite run and copied into every metrics record.
type Snapshot struct {
	CPUModel        string `json:"cpu_model"`
	GPUName         string `json:"gpu_name"`
	AVX2Supported   bool   `json:"avx2_supported"`
	NPUDetected     bool   `json:"npu_detected"`
	DetectionFailed bool   `json:"detection_failed"`
}

// Unknown returns the sentinel snapshot used when detection errors.
func Unknown() Snapshot {
	return Snapshot{
		CPUModel:        UnknownCPU,
		GPUName:         UnknownGPU,
		DetectionFailed: true,
	}
}

// Detect gathers CPU, GPU, and NPU information. Detection failure is
// non-fatal: the snapshot falls back to sentinel values with
// DetectionFailed set so unreliable metadata can be filtered later.
func Detect(ctx context.Context) Snapshot {
	info, err := cpu.InfoWithContext(ctx)
	if err != nil || len(info) == 0 {
		logging.LogEvent("Hardware detection failed: %v, using defaults", err)
		return Unknown()
	}

	snap := Snapshot{
		CPUModel:      strings.TrimSpace(info[0].ModelName),
		GPUName:       detectGPU(ctx),
		AVX2Supported: hasFlag(info[0].Flags, "avx2"),
		NPUDetected:   detectNPU(),
	}
	if snap.CPUModel == "" {
		snap.CPUModel = UnknownCPU
	}
	return snap
}

// detectGPU asks nvidia-smi for the first GPU name. A missing tool or empty
// answer means no discrete GPU, which is a valid result rather than an error.
func detectGPU(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader").Output()
	if err != nil {
		return NoGPU
	}
	name := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if name == "" {
		return NoGPU
	}
	return name
}

// detectNPU probes for an accelerator device node. Only the Linux accel
// subsystem is recognized; elsewhere the answer is simply false.
func detectNPU() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	entries, err := os.ReadDir("/dev/accel")
	return err == nil && len(entries) > 0
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}
