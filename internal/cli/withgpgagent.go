package cli

import (
	"github.com/7c/goproc/internal/gpgagent"
	"github.com/spf13/cobra"
)

var withGpgAgentCmd = &cobra.Command{
	Use:   "with-gpg-agent [--] <command>...",
	Short: "Run a command with the GPG agent environment",
	Long: `Run the given command with the environment variable(s) required by
gpg to connect to a gpg-agent daemon. The agent is located by scanning
the process table for a gpg-agent owned by our uid and probing its unix
sockets; if none is running yet a new one is spawned in the background.`,
	Example: `  # Sign without retyping the passphrase every time
  goproc with-gpg-agent -- gpg --use-agent --sign release.tar.gz

  # Works for anything that shells out to gpg
  goproc with-gpg-agent -- git tag -s v1.2.0`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vars := gpgagent.Variables(newEnumerator())
		runCommandWithEnv(args[0], args[1:], vars)
	},
}
