// internal/commands/hardware.go
package benchkit

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/smolpc/benchkit/internal/hardware"
)

// hardwareCmd prints the hardware snapshot recorded with each benchmark run.
var hardwareCmd = &cobra.Command{
	Use:   "hardware",
	Short: "Show the hardware snapshot recorded with benchmark results",
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot := hardware.Detect(cmd.Context())

		label := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%s %s\n", label("CPU:"), snapshot.CPUModel)
		fmt.Printf("%s %s\n", label("GPU:"), snapshot.GPUName)
		fmt.Printf("%s %t\n", label("AVX2:"), snapshot.AVX2Supported)
		fmt.Printf("%s %t\n", label("NPU:"), snapshot.NPUDetected)
		if snapshot.DetectionFailed {
			color.Yellow("Hardware detection failed; values above are placeholders.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hardwareCmd)
}
