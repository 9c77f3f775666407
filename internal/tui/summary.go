// internal/tui/summary.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smolpc/benchkit/internal/benchmark"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	rowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// RenderSummary formats per-category averages as a fixed-width table.
func RenderSummary(summaries []benchmark.BenchmarkSummary) string {
	if len(summaries) == 0 {
		return dimStyle.Render("No summary data collected.") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s %6s %14s %14s %12s %12s %10s",
		"CATEGORY", "TESTS", "FIRST TOKEN", "TOTAL TIME", "TOKENS/S", "PEAK MEM", "CPU")))
	b.WriteString("\n")

	for _, s := range summaries {
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-12s %6d %12.2fms %12.2fms %12.2f %10.2fMB %9.2f%%",
			s.Category,
			s.TestCount,
			s.AvgFirstTokenMs,
			s.AvgTotalTimeMs,
			s.AvgTokensPerSec,
			s.AvgPeakMemoryMB,
			s.AvgCPUTotalPercent)))
		b.WriteString("\n")
	}

	return b.String()
}
