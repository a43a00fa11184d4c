package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/proc"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

// jsonOutput is the global flag for JSON output mode.
var jsonOutput bool

// verboseFlag enables debug logging on stderr.
var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "goproc",
	Short: display.CBold + "goproc" + display.CReset + " — Linux process table toolkit",
}

// coloredHelpTemplate is the Cobra help template with ANSI colors.
var coloredHelpTemplate = `{{with .Long}}{{. | trimTrailingWhitespaces}}

{{end}}` +
	`{{if or .Runnable .HasSubCommands}}` + display.CYellow + `Usage:` + display.CReset + `{{end}}
{{if .Runnable}}  {{.UseLine}}{{end}}` +
	`{{if .HasAvailableSubCommands}}  {{.CommandPath}} [command]{{end}}

` +
	`{{if gt (len .Aliases) 0}}` + display.CYellow + `Aliases:` + display.CReset + `
  {{.NameAndAliases}}

{{end}}` +
	`{{if .HasExample}}` + display.CYellow + `Examples:` + display.CReset + `
{{.Example}}

{{end}}` +
	`{{if .HasAvailableSubCommands}}` + display.CYellow + `Available Commands:` + display.CReset + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  ` + display.CCyan + `{{rpad .Name .NamePadding}}` + display.CReset + `  {{.Short}}{{end}}{{end}}

{{end}}` +
	`{{if .HasAvailableLocalFlags}}` + display.CYellow + `Flags:` + display.CReset + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}` +
	`{{if .HasAvailableInheritedFlags}}` + display.CYellow + `Global Flags:` + display.CReset + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}` +
	`{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

// Execute sets up the root command, registers all subcommands, and runs cobra.
func Execute() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(setupLogging)

	// Apply colored help template globally.
	rootCmd.SetHelpTemplate(coloredHelpTemplate)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(isaliveCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(contCmd)
	rootCmd.AddCommand(terminateCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(withGpgAgentCmd)
	rootCmd.AddCommand(gracefulCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging routes slog to stderr. Warnings always show; --verbose
// lowers the threshold to debug.
func setupLogging() {
	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// newEnumerator builds the enumerator all commands share.
func newEnumerator() *proc.Enumerator {
	return proc.NewEnumerator(proc.WithLogger(slog.Default()))
}

// exitError prints an error message and exits. When jsonOutput is set, it
// writes a JSON object to stdout; otherwise it prints to stderr.
func exitError(msg string) {
	if jsonOutput {
		fmt.Fprintf(os.Stdout, "{\"error\":%q}\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", display.Red("Error:"), msg)
	}
	os.Exit(1)
}

func outputJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitError(err.Error())
	}
	fmt.Println(string(data))
}
