package cli

import (
	"os"
	"testing"

	"github.com/spf13/cobra"
)

func TestSignalCmds_Args(t *testing.T) {
	for _, cmd := range []*cobra.Command{stopCmd, contCmd, terminateCmd, killCmd} {
		if err := cmd.Args(cmd, []string{}); err == nil {
			t.Errorf("%s: 0 args should be invalid", cmd.Name())
		}
		if err := cmd.Args(cmd, []string{"100"}); err != nil {
			t.Errorf("%s: 1 arg should be valid: %v", cmd.Name(), err)
		}
		if err := cmd.Args(cmd, []string{"100", "200", "300"}); err != nil {
			t.Errorf("%s: several args should be valid: %v", cmd.Name(), err)
		}
	}
}

func TestTerminateAlias(t *testing.T) {
	if len(terminateCmd.Aliases) != 1 || terminateCmd.Aliases[0] != "term" {
		t.Errorf("aliases = %v, want [term]", terminateCmd.Aliases)
	}
}

func TestResolveProcessArg_Self(t *testing.T) {
	p := resolveProcessArg("self")
	if p.PID() != os.Getpid() {
		t.Errorf("PID = %d, want our own %d", p.PID(), os.Getpid())
	}
	if !p.IsAlive() {
		t.Error("our own handle should be alive")
	}
}
