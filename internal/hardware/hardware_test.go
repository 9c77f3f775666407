// internal/hardware/hardware_test.go
package hardware

import "testing"

func TestUnknownSnapshot(t *testing.T) {
	snap := Unknown()
	if snap.CPUModel != UnknownCPU {
		t.Fatalf("CPUModel = %q, want %q", snap.CPUModel, UnknownCPU)
	}
	if snap.GPUName != UnknownGPU {
		t.Fatalf("GPUName = %q, want %q", snap.GPUName, UnknownGPU)
	}
	if !snap.DetectionFailed {
		t.Fatal("DetectionFailed should be set on the sentinel snapshot")
	}
	if snap.AVX2Supported || snap.NPUDetected {
		t.Fatal("capability flags should be false on the sentinel snapshot")
	}
}

func TestHasFlag(t *testing.T) {
	flags := []string{"fpu", "sse2", "AVX2", "aes"}
	if !hasFlag(flags, "avx2") {
		t.Fatal("hasFlag should match case-insensitively")
	}
	if hasFlag(flags, "avx512f") {
		t.Fatal("hasFlag matched a missing flag")
	}
	if hasFlag(nil, "avx2") {
		t.Fatal("hasFlag on nil slice should be false")
	}
}
