package cli

import (
	"fmt"
	"os"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/proc"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env <name>...",
	Short: "Find environment variable values across all processes",
	Long: `Search the environments of every visible process for the named
variables. Useful from cron jobs and system daemons that need a value
owned by another session, like the desktop's DBUS address.`,
	Example: `  # Where is the session bus?
  goproc env DBUS_SESSION_BUS_ADDRESS

  # Several at once, as JSON
  goproc env DISPLAY XAUTHORITY --json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		matches, err := proc.FindEnvironmentVariables(newEnumerator(), args...)
		if err != nil {
			exitError(err.Error())
		}

		if jsonOutput {
			outputJSON(matches)
			return
		}

		found := 0
		for _, name := range args {
			v, ok := matches[name]
			if !ok {
				fmt.Fprintln(os.Stderr, display.Dim(name+": not found"))
				continue
			}
			fmt.Printf("%s=%s\n", name, v)
			found++
		}
		if found == 0 {
			os.Exit(1)
		}
	},
}
