package cli

import (
	"time"

	"github.com/7c/goproc/internal/gui"
	"github.com/spf13/cobra"
)

var topInterval time.Duration

var topCmd = &cobra.Command{
	Use:     "top",
	Aliases: []string{"gui"},
	Short:   "Launch the interactive process viewer",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := gui.Run(newEnumerator(), topInterval); err != nil {
			exitError(err.Error())
		}
	},
}

func init() {
	topCmd.Flags().DurationVarP(&topInterval, "interval", "i", time.Second, "refresh interval")
}
