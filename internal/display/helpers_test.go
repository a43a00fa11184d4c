package display

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/7c/goproc/proc"
)

// fakeProcess fabricates a /proc entry under a temp root and returns a
// handle on it. cmdline tokens are NUL-joined the way the kernel does.
func fakeProcess(t *testing.T, pid, ppid int, comm, state string, cmdline ...string) *proc.Process {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "stat"), []byte("btime 1700000000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(root, strconv.Itoa(pid))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	stat := strconv.Itoa(pid) + " (" + comm + ") " + state + " " + strconv.Itoa(ppid) +
		" 1 1 0 -1 4194304 0 0 0 0 150 50 0 0 20 0 1 0 5000 2097152 100 0 0 0"
	if err := os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0644); err != nil {
		t.Fatal(err)
	}
	if len(cmdline) > 0 {
		data := strings.Join(cmdline, "\x00") + "\x00"
		if err := os.WriteFile(filepath.Join(dir, "cmdline"), []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	} else {
		if err := os.WriteFile(filepath.Join(dir, "cmdline"), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "environ"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	status := "Uid:\t1000\t1000\t1000\t1000\nGid:\t1000\t1000\t1000\t1000\n"
	if err := os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := proc.FromPath(dir)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	return p
}
