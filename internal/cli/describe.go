package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/proc"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <pid|self>",
	Short: "Show detailed info about one process",
	Example: `  # Everything we can read about pid 1234
  goproc describe 1234

  # Our own entry, through the self pseudo-directory
  goproc describe self

  # Full snapshot including the environment
  goproc describe 1234 --json`,
	Args: cobra.ExactArgs(1),
	Run:  runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) {
	p := resolveProcessArg(args[0])

	if jsonOutput {
		info := struct {
			processInfo
			UnixSockets []string `json:"unix_sockets,omitempty"`
		}{processInfo: newProcessInfo(p, true)}
		if sockets, err := p.UnixSockets(); err == nil {
			info.UnixSockets = sockets
		}
		outputJSON(info)
		return
	}

	display.RenderDescribe(os.Stdout, p)
	if sockets, err := p.UnixSockets(); err == nil && len(sockets) > 0 {
		fmt.Println()
		display.RenderUnixSockets(os.Stdout, sockets)
	}
}

// resolveProcessArg turns a pid argument into a handle. The literal
// "self" resolves through the procfs self entry.
func resolveProcessArg(arg string) *proc.Process {
	if arg == "self" {
		p, err := proc.FromPath(filepath.Join(proc.DefaultRoot(), "self"))
		if err != nil {
			exitError(err.Error())
		}
		return p
	}

	pid, err := strconv.Atoi(arg)
	if err != nil {
		exitError(fmt.Sprintf("invalid PID: %q", arg))
	}
	p, err := proc.FromPid(pid)
	if err != nil {
		if proc.IsNotFound(err) {
			exitError(fmt.Sprintf("no process with PID %d", pid))
		}
		exitError(err.Error())
	}
	return p
}
