package cli

import (
	"testing"
)

func TestWatchCmd_Flags(t *testing.T) {
	f := watchCmd.Flags()

	intervalFlag := f.Lookup("interval")
	if intervalFlag == nil {
		t.Fatal("expected --interval flag to be registered")
	}
	if intervalFlag.Shorthand != "i" {
		t.Errorf("expected shorthand 'i', got %q", intervalFlag.Shorthand)
	}
	if intervalFlag.DefValue != "2s" {
		t.Errorf("expected default '2s', got %q", intervalFlag.DefValue)
	}

	telegrafFlag := f.Lookup("telegraf")
	if telegrafFlag == nil {
		t.Fatal("expected --telegraf flag to be registered")
	}
	if telegrafFlag.DefValue != "" {
		t.Errorf("expected empty default, got %q", telegrafFlag.DefValue)
	}

	logFlag := f.Lookup("log")
	if logFlag == nil {
		t.Fatal("expected --log flag to be registered")
	}
	if logFlag.DefValue != "" {
		t.Errorf("expected empty default, got %q", logFlag.DefValue)
	}
}

func TestWatchCmd_Args(t *testing.T) {
	if err := watchCmd.Args(watchCmd, []string{}); err == nil {
		t.Error("expected 0 args to be invalid")
	}
	if err := watchCmd.Args(watchCmd, []string{"1234"}); err != nil {
		t.Errorf("expected 1 arg to be valid: %v", err)
	}
	if err := watchCmd.Args(watchCmd, []string{"1234", "5678"}); err == nil {
		t.Error("expected 2 args to be invalid")
	}
}

func TestWatchCmd_Use(t *testing.T) {
	if watchCmd.Use != "watch <pid>" {
		t.Errorf("unexpected Use: %q", watchCmd.Use)
	}
}
