// internal/commands/benchmark_run.go
package benchkit

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/smolpc/benchkit/internal/benchmark"
	"github.com/smolpc/benchkit/internal/hardware"
	"github.com/smolpc/benchkit/internal/logging"
	"github.com/smolpc/benchkit/internal/ollama"
	"github.com/smolpc/benchkit/internal/tui"
)

// benchmarkRunCmd executes the full suite and exports results to CSV.
var benchmarkRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark suite against the configured model and export CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		suite, err := loadSuite(cfg.Prompts)
		if err != nil {
			return err
		}

		hw := hardware.Detect(cmd.Context())
		client := ollama.New(cfg.BaseURL(), cfg.RequestTimeout())
		runner := benchmark.NewRunner(cfg, client, hw, suite)

		dir, err := benchmark.BenchmarksDir(cfg.OutputDir)
		if err != nil {
			return err
		}

		logging.LogEvent("Starting benchmark run: model=%s iterations=%d output=%s",
			cfg.Model, cfg.IterationCount(), dir)

		if cfg.NoTUI {
			return runPlain(cmd, runner, dir)
		}
		return runWithTUI(cmd, runner, dir)
	},
}

// runPlain drives the runner with line-based progress output. Used for
// non-interactive terminals and log capture.
func runPlain(cmd *cobra.Command, runner *benchmark.Runner, dir string) error {
	cfg := GetConfig()

	results, err := runner.RunSuite(cmd.Context(), func(p benchmark.Progress) {
		color.Cyan("[%d/%d] %s (iteration %d)", p.Current, p.Total, p.CurrentTest, p.Iteration)
	})
	if err != nil {
		return err
	}

	path, err := benchmark.ExportCSV(results, dir, cfg.ExportPrefix())
	if err != nil {
		return err
	}

	color.Green("Benchmark run %s complete in %.1fs", results.RunID, results.TotalDurationSeconds)
	fmt.Printf("Results written to %s\n\n", path)
	fmt.Print(tui.RenderSummary(results.Summary))
	return nil
}

type suiteFunc func(context.Context, benchmark.ProgressFunc) (*benchmark.BenchmarkResults, error)
type exportFunc func(*benchmark.BenchmarkResults) (string, error)

// runOutcome is the runner goroutine's single hand-off to the command
// goroutine. The two goroutines share no other state.
type runOutcome struct {
	results *benchmark.BenchmarkResults
	path    string
	err     error
}

// driveSuite runs the suite and export on its own goroutine, feeding UI
// messages through send. The returned channel delivers exactly one outcome,
// and it is buffered and written before the terminal UI message goes out,
// so the receive never blocks once the UI has quit.
func driveSuite(ctx context.Context, run suiteFunc, export exportFunc, send func(tea.Msg)) <-chan runOutcome {
	outcome := make(chan runOutcome, 1)

	go func() {
		results, err := run(ctx, func(p benchmark.Progress) {
			send(tui.ProgressMsg(p))
		})
		if err != nil {
			outcome <- runOutcome{err: err}
			send(tui.FailedMsg{Err: err})
			return
		}

		path, err := export(results)
		if err != nil {
			outcome <- runOutcome{err: err}
			send(tui.FailedMsg{Err: err})
			return
		}

		outcome <- runOutcome{results: results, path: path}
		send(tui.CompletedMsg{Path: path, RunID: results.RunID})
	}()

	return outcome
}

// runWithTUI drives the runner behind the interactive progress view. The
// export happens on the runner goroutine too, so a crash mid-run still
// leaves flushed rows. Quitting the view before completion cancels the
// in-flight suite; the outcome channel is the only way results cross
// between the goroutines.
func runWithTUI(cmd *cobra.Command, runner *benchmark.Runner, dir string) error {
	cfg := GetConfig()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := tea.NewProgram(tui.NewModel(cfg.Model))
	outcome := driveSuite(ctx,
		runner.RunSuite,
		func(results *benchmark.BenchmarkResults) (string, error) {
			return benchmark.ExportCSV(results, dir, cfg.ExportPrefix())
		},
		func(msg tea.Msg) { p.Send(msg) })

	_, uiErr := p.Run()
	cancel()
	out := <-outcome

	if uiErr != nil {
		return fmt.Errorf("failed to run progress view: %w", uiErr)
	}
	if out.err != nil {
		if errors.Is(out.err, context.Canceled) {
			return errors.New("benchmark aborted before completion")
		}
		return out.err
	}

	fmt.Print(tui.RenderSummary(out.results.Summary))
	return nil
}

func init() {
	benchmarkCmd.AddCommand(benchmarkRunCmd)
}
