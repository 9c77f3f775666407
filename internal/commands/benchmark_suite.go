// internal/commands/benchmark_suite.go
package benchkit

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/smolpc/benchkit/internal/benchmark"
	"github.com/smolpc/benchkit/internal/util"
)

// benchmarkSuiteCmd lists the test cases a run would execute.
var benchmarkSuiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "List the test cases in the active benchmark suite",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		suite, err := loadSuite(cfg.Prompts)
		if err != nil {
			return err
		}

		category := color.New(color.FgCyan).SprintFunc()
		for _, tc := range suite {
			fmt.Printf("%-14s %-10s %s\n", tc.ID, category(tc.Category), util.TruncateRunes(tc.Prompt, 80))
		}
		fmt.Printf("\n%d test cases, %d runs at %d iterations\n",
			len(suite), benchmark.TotalTestCount(suite, cfg.IterationCount()), cfg.IterationCount())
		return nil
	},
}

// loadSuite returns the JSON-defined suite when a prompts file is
// configured, the built-in suite otherwise.
func loadSuite(path string) ([]benchmark.TestCase, error) {
	if path == "" {
		return benchmark.DefaultSuite(), nil
	}
	return benchmark.LoadSuite(path)
}

func init() {
	benchmarkCmd.AddCommand(benchmarkSuiteCmd)
}
