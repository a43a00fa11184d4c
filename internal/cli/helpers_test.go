package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/7c/goproc/proc"
)

// fakeProc writes a minimal procfs entry under root and returns a
// handle on it.
func fakeProc(t *testing.T, root string, pid, ppid int, comm string, uid int) *proc.Process {
	t.Helper()
	return fakeProcState(t, root, pid, ppid, comm, uid, "S")
}

// fakeProcState is fakeProc with an explicit state letter, for zombies
// and stopped processes.
func fakeProcState(t *testing.T, root string, pid, ppid int, comm string, uid int, state string) *proc.Process {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	stat := fmt.Sprintf("%d (%s) %s %d %d %d 0 -1 4194304 0 0 0 0 10 5 0 0 20 0 1 0 100 1048576 25 0 0 0",
		pid, comm, state, ppid, pid, pid)
	if err := os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0644); err != nil {
		t.Fatal(err)
	}
	u := strconv.Itoa(uid)
	status := "Name:\t" + comm + "\nUid:\t" + u + "\t" + u + "\t" + u + "\t" + u + "\nGid:\t" + u + "\t" + u + "\t" + u + "\t" + u + "\n"
	if err := os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cmdline"), []byte(comm+"\x00"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "environ"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	p, err := proc.FromPath(dir)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	return p
}
