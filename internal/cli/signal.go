package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/proc"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop <pid>...",
	Short: "Suspend processes with SIGSTOP",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSignal(args, "SIGSTOP", (*proc.Process).Stop, display.Yellow("suspended"))
	},
}

var contCmd = &cobra.Command{
	Use:   "cont <pid>...",
	Short: "Resume suspended processes with SIGCONT",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSignal(args, "SIGCONT", (*proc.Process).Cont, display.Green("resumed"))
	},
}

var terminateCmd = &cobra.Command{
	Use:     "terminate <pid>...",
	Aliases: []string{"term"},
	Short:   "Ask processes to exit with SIGTERM",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSignal(args, "SIGTERM", (*proc.Process).Terminate, display.Yellow("terminated"))
	},
}

var killCmd = &cobra.Command{
	Use:   "kill <pid>...",
	Short: "Forcibly end processes with SIGKILL",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSignal(args, "SIGKILL", (*proc.Process).Kill, display.Red("killed"))
	},
}

// signalResult is the JSON shape of one delivery.
type signalResult struct {
	PID    int    `json:"pid"`
	Signal string `json:"signal"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// runSignal delivers one signal to every pid argument and reports each
// delivery. A pid that exited before or during delivery counts as
// success; any real failure makes the command exit nonzero after all
// pids were tried.
func runSignal(args []string, name string, send func(*proc.Process) error, verb string) {
	results := make([]signalResult, 0, len(args))
	failed := false

	for _, arg := range args {
		pid, err := strconv.Atoi(arg)
		if err != nil {
			exitError(fmt.Sprintf("invalid PID: %q", arg))
		}
		res := signalResult{PID: pid, Signal: name}

		p, err := proc.FromPid(pid)
		switch {
		case err == nil:
			if err := send(p); err != nil {
				res.Error = err.Error()
			}
		case proc.IsNotFound(err):
			// Already gone. The caller wanted it signaled on its way
			// out, and out it is.
		default:
			res.Error = err.Error()
		}
		res.OK = res.Error == ""
		if !res.OK {
			failed = true
		}
		results = append(results, res)

		if jsonOutput {
			continue
		}
		if !res.OK {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", display.Red("Error:"), arg, res.Error)
			continue
		}
		label := strconv.Itoa(pid)
		if p != nil {
			label = p.String()
		}
		fmt.Printf("%s %s\n", display.Bold(label), verb)
	}

	if jsonOutput {
		outputJSON(results)
	}
	if failed {
		os.Exit(1)
	}
}
