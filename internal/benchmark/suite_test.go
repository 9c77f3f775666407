// internal/benchmark/suite_test.go
package benchmark

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSuite(t *testing.T) {
	suite := DefaultSuite()

	if len(suite) != 12 {
		t.Fatalf("suite has %d test cases, want 12", len(suite))
	}

	counts := map[Category]int{}
	for _, tc := range suite {
		counts[tc.Category]++
		if tc.ID == "" || tc.Prompt == "" {
			t.Fatalf("test case %+v has empty fields", tc)
		}
	}
	for _, category := range categories {
		if counts[category] != 3 {
			t.Fatalf("category %s has %d cases, want 3", category, counts[category])
		}
	}

	if suite[0].ID != "short_1" {
		t.Fatalf("first test case ID = %q, want short_1", suite[0].ID)
	}
	if suite[11].ID != "followup_3" {
		t.Fatalf("last test case ID = %q, want followup_3", suite[11].ID)
	}
}

func TestLoadSuiteValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	content := `[
		{"id": "custom_1", "category": "short", "prompt": "Say hello"},
		{"id": "custom_2", "category": "long", "prompt": "Write an essay"}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write prompts: %v", err)
	}

	suite, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	if len(suite) != 2 {
		t.Fatalf("got %d test cases, want 2", len(suite))
	}
	if suite[1].Category != CategoryLong {
		t.Fatalf("category = %q, want long", suite[1].Category)
	}
}

func TestLoadSuiteInvalidCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	content := `[{"id": "x", "category": "gigantic", "prompt": "hi"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write prompts: %v", err)
	}

	if _, err := LoadSuite(path); err == nil {
		t.Fatal("expected schema validation failure for unknown category")
	}
}

func TestLoadSuiteMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	if err := os.WriteFile(path, []byte(`[{"id": "x"}]`), 0o644); err != nil {
		t.Fatalf("write prompts: %v", err)
	}

	_, err := LoadSuite(path)
	if err == nil {
		t.Fatal("expected schema validation failure for missing fields")
	}
	if !strings.Contains(err.Error(), "failed validation") {
		t.Fatalf("error %q should mention validation", err)
	}
}

func TestLoadSuiteMissingFile(t *testing.T) {
	if _, err := LoadSuite(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing prompts file")
	}
}

func TestTotalTestCount(t *testing.T) {
	if got := TotalTestCount(DefaultSuite(), 3); got != 36 {
		t.Fatalf("TotalTestCount = %d, want 36", got)
	}
}
