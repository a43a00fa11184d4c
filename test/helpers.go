package test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

// TestEnv wraps the built goproc and testapp binaries for one test.
type TestEnv struct {
	T          *testing.T
	GoprocBin  string
	TestappBin string
}

// NewTestEnv locates the prebuilt binaries and fails fast with a build
// hint when they are missing.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	goprocBin := filepath.Join(BinDir(), "goproc")
	testappBin := filepath.Join(BinDir(), "testapp")
	requireFile(t, goprocBin, "run: go build -o test/bin/goproc ./cmd/goproc/")
	requireFile(t, testappBin, "run: go build -o test/bin/testapp ./test/testapp/")

	return &TestEnv{
		T:          t,
		GoprocBin:  goprocBin,
		TestappBin: testappBin,
	}
}

// BinDir returns the path to the test binary directory.
func BinDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "bin")
}

// Goproc runs a goproc CLI command and returns stdout, stderr, exit code.
func (e *TestEnv) Goproc(args ...string) (stdout, stderr string, exitCode int) {
	cmd := exec.Command(e.GoprocBin, args...)
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	exitCode = 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}
	return outBuf.String(), errBuf.String(), exitCode
}

// MustGoproc runs goproc and fails the test if exit code != 0.
func (e *TestEnv) MustGoproc(args ...string) string {
	e.T.Helper()
	stdout, stderr, code := e.Goproc(args...)
	if code != 0 {
		e.T.Fatalf("goproc %v failed (exit %d):\nstdout: %s\nstderr: %s",
			args, code, stdout, stderr)
	}
	return stdout
}

// StartTestapp starts a testapp in its own process group and returns
// its pid. The whole group is killed when the test finishes, so spawned
// children do not outlive it.
func (e *TestEnv) StartTestapp(args ...string) int {
	e.T.Helper()
	return e.StartTestappEnv(nil, args...)
}

// StartTestappEnv is StartTestapp with extra KEY=VAL environment
// entries for the child.
func (e *TestEnv) StartTestappEnv(env []string, args ...string) int {
	e.T.Helper()
	cmd := exec.Command(e.TestappBin, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	if err := cmd.Start(); err != nil {
		e.T.Fatalf("start testapp: %v", err)
	}
	pid := cmd.Process.Pid
	// Reap as soon as the testapp exits so its /proc entry does not
	// linger as a zombie for the rest of the test.
	go cmd.Wait()
	e.T.Cleanup(func() {
		syscall.Kill(-pid, syscall.SIGKILL)
	})
	return pid
}

// DescribeJSON fetches `goproc describe <pid> --json` as a map, nil if
// the command failed.
func (e *TestEnv) DescribeJSON(pid int) map[string]interface{} {
	out, _, code := e.Goproc("describe", strconv.Itoa(pid), "--json")
	if code != 0 {
		return nil
	}
	var info map[string]interface{}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil
	}
	return info
}

// ListJSON fetches `goproc list --json` with extra args as a slice of maps.
func (e *TestEnv) ListJSON(extra ...string) []map[string]interface{} {
	args := append([]string{"list", "--json"}, extra...)
	out := e.MustGoproc(args...)
	var procs []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &procs); err != nil {
		e.T.Fatalf("parse list output: %v\noutput: %q", err, out)
	}
	return procs
}

// WaitForState polls describe until the process reports the wanted
// state name.
func (e *TestEnv) WaitForState(pid int, state string, timeout time.Duration) {
	e.T.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if info := e.DescribeJSON(pid); info != nil && info["state_name"] == state {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	e.T.Fatalf("timeout: pid %d did not reach state %q within %s", pid, state, timeout)
}

// WaitForExit polls `goproc isalive` until it reports the pid gone.
func (e *TestEnv) WaitForExit(pid int, timeout time.Duration) {
	e.T.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, _, code := e.Goproc("isalive", strconv.Itoa(pid)); code == 1 {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	e.T.Fatalf("timeout: pid %d still alive after %s", pid, timeout)
}

// WaitForChildren polls the subtree until pid has at least n direct
// children.
func (e *TestEnv) WaitForChildren(pid, n int, timeout time.Duration) {
	e.T.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(e.subtreeChildren(pid)) >= n {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	e.T.Fatalf("timeout: pid %d did not get %d children within %s", pid, n, timeout)
}

func (e *TestEnv) subtreeChildren(pid int) []interface{} {
	out, _, code := e.Goproc("tree", strconv.Itoa(pid), "--json")
	if code != 0 {
		return nil
	}
	var node map[string]interface{}
	if err := json.Unmarshal([]byte(out), &node); err != nil {
		return nil
	}
	children, _ := node["children"].([]interface{})
	return children
}

func requireFile(t *testing.T, path, hint string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("required file not found: %s\nHint: %s", path, hint)
	}
}
