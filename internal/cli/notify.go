package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/7c/goproc/proc"
	"github.com/spf13/cobra"
)

// notifyVariables are the desktop session variables notify-send needs
// to reach the user's session bus.
var notifyVariables = []string{"DBUS_SESSION_BUS_ADDRESS", "DISPLAY", "XAUTHORITY"}

var notifyCmd = &cobra.Command{
	Use:   "notify <summary> [body] [-- notify-send flags...]",
	Short: "Send a desktop notification from a headless context",
	Long: `Run notify-send with the desktop session environment variables
scraped from the running processes. This lets cron jobs and system
daemons deliver notifications to the user's desktop without access to
the session that owns them. A single desktop session is assumed.`,
	Example: `  # From a cron job
  goproc notify "Backup finished" "The nightly backup completed without errors"

  # Anything after -- goes to notify-send untouched
  goproc notify "Disk almost full" -- --urgency=critical`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env, err := proc.FindEnvironmentVariables(newEnumerator(), notifyVariables...)
		if err != nil {
			exitError(err.Error())
		}
		for _, name := range notifyVariables {
			if _, ok := env[name]; !ok {
				slog.Debug("session variable not found in any process", "name", name)
			}
		}
		runCommandWithEnv("notify-send", args, env)
	},
}

// runCommandWithEnv runs a command with extra environment variables
// layered over our own environment, stdio passed through and the
// child's exit code propagated. It does not return.
func runCommandWithEnv(name string, args []string, extra map[string]string) {
	path, err := exec.LookPath(name)
	if err != nil {
		exitError(fmt.Sprintf("%s not found in PATH", name))
	}

	c := exec.Command(path, args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = os.Environ()
	for k, v := range extra {
		c.Env = append(c.Env, k+"="+v)
	}

	slog.Debug("running command", "path", path, "args", args)
	err = c.Run()
	if err == nil {
		os.Exit(0)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	exitError(err.Error())
}
