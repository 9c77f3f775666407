// internal/commands/benchmark.go
package benchkit

import (
	"github.com/spf13/cobra"
)

// benchmarkCmd groups the benchmark subcommands.
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run and inspect inference benchmarks",
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
}
