package proc

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func getsid() (int, error) { return unix.Getsid(0) }

// fakeRoot creates a procfs-shaped tree in a temp dir, with a btime line
// so start times resolve.
func fakeRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "stat", "cpu  1 2 3 4\nbtime 1700000000\nprocesses 99\n")
	return root
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// fakeEntry describes one fabricated process entry. Zero-valued fields
// are simply not written, which reads back like a vanished record.
type fakeEntry struct {
	stat    string
	cmdline string
	environ string
	status  string
	exe     string // symlink target; dangling is fine
}

func makeEntry(t *testing.T, root, name string, fe fakeEntry) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if fe.stat != "" {
		writeFile(t, dir, "stat", fe.stat)
	}
	if fe.cmdline != "" {
		writeFile(t, dir, "cmdline", fe.cmdline)
	}
	if fe.environ != "" {
		writeFile(t, dir, "environ", fe.environ)
	}
	if fe.status != "" {
		writeFile(t, dir, "status", fe.status)
	}
	if fe.exe != "" {
		if err := os.Symlink(fe.exe, filepath.Join(dir, "exe")); err != nil {
			t.Fatalf("symlink exe: %v", err)
		}
	}
	return dir
}

// spawnChild starts a real child process, reaps it in the background and
// returns a handle plus a channel closed once the child is reaped.
func spawnChild(t *testing.T, name string, args ...string) (*Process, chan struct{}) {
	t.Helper()
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start %s: %v", name, err)
	}
	reaped := make(chan struct{})
	go func() {
		cmd.Wait()
		close(reaped)
	}()
	t.Cleanup(func() {
		cmd.Process.Kill()
		<-reaped
	})
	p, err := FromPid(cmd.Process.Pid)
	if err != nil {
		t.Fatalf("FromPid(%d): %v", cmd.Process.Pid, err)
	}
	return p, reaped
}

// waitNotAlive polls IsAlive until it goes false or the timeout passes.
func waitNotAlive(p *Process, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !p.IsAlive() {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return !p.IsAlive()
}

// waitForState polls a fresh handle for the pid until its state code
// matches, so the check never trusts a stale cached snapshot.
func waitForState(pid int, state string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p, err := FromPid(pid); err == nil && p.Attributes().State == state {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}
