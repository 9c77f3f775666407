// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultOllamaURL is the Ollama endpoint used when the config omits one.
	defaultOllamaURL = "http://localhost:11434"
	// defaultRequestTimeout is the default timeout for benchmark HTTP requests.
	// Larger models can take minutes to answer a long prompt, so this is
	// deliberately generous.
	defaultRequestTimeout = 600 * time.Second
	// defaultIterations is how many times the suite repeats each test case.
	defaultIterations = 3
	// defaultPrefix names exported CSV files when no prefix is configured.
	defaultPrefix = "baseline"
)

// Config represents the top-level application configuration.
type Config struct {
	OllamaURL  string `json:"ollamaUrl,omitempty"`
	Model      string `json:"model"`
	Iterations int    `json:"iterations,omitempty"`
	Timeout    int    `json:"timeout,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
	OutputDir  string `json:"outputDir,omitempty"`
	Prompts    string `json:"prompts,omitempty"`
	LogFile    string `json:"logFile,omitempty"`
	Debug      bool   `json:"debug"`
	NoTUI      bool   `json:"noTui"`
	ConfigPath string `json:"-"`
}

// BaseURL returns the Ollama endpoint, falling back to the local default.
func (c Config) BaseURL() string {
	if url := strings.TrimSpace(c.OllamaURL); url != "" {
		return strings.TrimRight(url, "/")
	}
	return defaultOllamaURL
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

// IterationCount returns how many times each test case runs.
func (c Config) IterationCount() int {
	if c.Iterations <= 0 {
		return defaultIterations
	}
	return c.Iterations
}

// ExportPrefix returns the CSV filename prefix, applying the default if not set.
func (c Config) ExportPrefix() string {
	if p := strings.TrimSpace(c.Prefix); p != "" {
		return p
	}
	return defaultPrefix
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := strings.TrimSpace(c.LogFile); path != "" {
		return path
	}
	return "benchkit.log"
}

// Validate checks that the configuration names a model to benchmark.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("config must name a model to benchmark")
	}
	return nil
}
