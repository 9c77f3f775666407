// internal/appconfig/appconfig_test.go
package appconfig

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config

	if got := cfg.BaseURL(); got != "http://localhost:11434" {
		t.Errorf("BaseURL = %q", got)
	}
	if got := cfg.RequestTimeout(); got != 600*time.Second {
		t.Errorf("RequestTimeout = %v", got)
	}
	if got := cfg.IterationCount(); got != 3 {
		t.Errorf("IterationCount = %d", got)
	}
	if got := cfg.ExportPrefix(); got != "baseline" {
		t.Errorf("ExportPrefix = %q", got)
	}
	if got := cfg.LogFilePath(); got != "benchkit.log" {
		t.Errorf("LogFilePath = %q", got)
	}
}

func TestConfigOverrides(t *testing.T) {
	cfg := Config{
		OllamaURL:  "http://10.0.0.5:11434/",
		Iterations: 5,
		Timeout:    30,
		Prefix:     "phase1",
	}

	if got := cfg.BaseURL(); got != "http://10.0.0.5:11434" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", got)
	}
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout = %v", got)
	}
	if got := cfg.IterationCount(); got != 5 {
		t.Errorf("IterationCount = %d", got)
	}
	if got := cfg.ExportPrefix(); got != "phase1" {
		t.Errorf("ExportPrefix = %q", got)
	}
}

func TestValidateRequiresModel(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatal("expected error for missing model")
	}
	if err := (Config{Model: "qwen2.5-coder:3b"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
