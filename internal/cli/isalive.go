package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/proc"
	"github.com/spf13/cobra"
)

var isaliveCmd = &cobra.Command{
	Use:   "isalive <pid>",
	Short: "Check if a process exists (exit code based)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pid, err := strconv.Atoi(args[0])
		if err != nil {
			exitError(fmt.Sprintf("invalid PID: %q", args[0]))
		}

		p, err := proc.FromPid(pid)
		alive := err == nil && p.IsAlive()

		if jsonOutput {
			outputJSON(map[string]any{"pid": pid, "alive": alive})
		} else if alive {
			fmt.Printf("%s: %s\n", display.Bold(p.String()), display.Green("alive"))
		} else {
			fmt.Printf("%s: %s\n", display.Bold(strconv.Itoa(pid)), display.Dim("not found"))
		}
		if !alive {
			os.Exit(1)
		}
	},
}
