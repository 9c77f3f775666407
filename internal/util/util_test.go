// internal/util/util_test.go
package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"baseline", "baseline"},
		{"qwen2.5-coder:3b", "qwen2-5-coder_3b"},
		{"Phase 1 Results", "phase-1-results"},
		{"--weird--", "weird"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("short", 10); got != "short" {
		t.Errorf("TruncateRunes(short) = %q", got)
	}
	if got := TruncateRunes("abcdefghij", 4); got != "abcd…" {
		t.Errorf("TruncateRunes = %q, want abcd…", got)
	}
}
