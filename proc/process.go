package proc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"
)

// Attributes is a point-in-time snapshot of one process. It is decoded
// once per handle and cached; a handle never refreshes it.
type Attributes struct {
	Comm      string            `json:"comm"`
	State     string            `json:"state"`      // single-letter code as read
	StateName string            `json:"state_name"` // mapped name, "unknown" for codes not in the table
	Cmdline   []string          `json:"cmdline"`
	Exe       string            `json:"exe"` // exe link target, empty when only the fallback tier is available
	RSS       int64             `json:"rss_bytes"`
	VSize     int64             `json:"vsize_bytes"`
	Nice      int               `json:"nice"`
	StartTime time.Time         `json:"started_at"`
	CPUTime   time.Duration     `json:"cpu_time_ns"`
	UserIDs   IDs               `json:"uids"`
	GroupIDs  IDs               `json:"gids"`
	Environ   map[string]string `json:"environ,omitempty"`

	// Partial is set when one or more secondary records (cmdline,
	// environ, status) could not be read, because the process exited
	// mid-decode or access was denied.
	Partial bool `json:"partial,omitempty"`
}

// ExePath returns the executable path from the strongest available tier:
// the exe link when it resolved, otherwise the first cmdline token if it
// looks like an absolute path. Empty when neither tier has anything.
func (a *Attributes) ExePath() string {
	if a.Exe != "" {
		return a.Exe
	}
	if len(a.Cmdline) > 0 && filepath.IsAbs(a.Cmdline[0]) {
		return a.Cmdline[0]
	}
	return ""
}

// ExeName returns the base name of ExePath, falling back to the comm
// field when no path is known. The comm tier is the weakest: the kernel
// truncates it to 15 bytes.
func (a *Attributes) ExeName() string {
	if p := a.ExePath(); p != "" {
		return filepath.Base(p)
	}
	return a.Comm
}

// Process is a handle on one process: immutable identity read at
// construction plus a lazily resolved attribute snapshot. Handles are
// transient; construct a fresh one per scan or lookup.
type Process struct {
	root string // procfs mount the handle came from
	dir  string // entry directory, e.g. /proc/1234 or /proc/self
	stat *statRecord

	resolved bool
	attrs    *Attributes

	// onSecondaryRace is fired at most once, when secondary records
	// vanished between the primary read and attribute resolution. The
	// enumerator injects it to keep its Secondary counter.
	onSecondaryRace func()
}

// FromPid constructs a handle for pid. The stat record is read
// immediately: a pid that vanished before it could be read yields a
// NotFoundError, a readable but malformed record a DecodeError.
func FromPid(pid int) (*Process, error) {
	root := DefaultRoot()
	return fromDir(root, filepath.Join(root, strconv.Itoa(pid)))
}

// FromPath constructs a handle from a /proc entry directory directly.
// Useful for the self pseudo-entry: FromPath("/proc/self").
func FromPath(dir string) (*Process, error) {
	dir = filepath.Clean(dir)
	return fromDir(filepath.Dir(dir), dir)
}

func fromDir(root, dir string) (*Process, error) {
	data, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return nil, &NotFoundError{PID: pidFromDir(dir), Dir: dir, Err: err}
	}
	rec, err := parseStat(dir, data)
	if err != nil {
		return nil, err
	}
	return &Process{root: root, dir: dir, stat: rec}, nil
}

// pidFromDir extracts the numeric pid from an entry path, 0 for
// pseudo-entries like /proc/self.
func pidFromDir(dir string) int {
	pid, _ := strconv.Atoi(filepath.Base(dir))
	return pid
}

// PID returns the process id. For handles built from /proc/self this is
// the caller's real pid, taken from the stat record.
func (p *Process) PID() int { return p.stat.PID }

// PPID returns the parent process id at the time the handle was built.
func (p *Process) PPID() int { return p.stat.PPID }

// PGRP returns the process group id.
func (p *Process) PGRP() int { return p.stat.PGRP }

// Session returns the session id.
func (p *Process) Session() int { return p.stat.Session }

// Dir returns the /proc entry directory backing this handle.
func (p *Process) Dir() string { return p.dir }

func (p *Process) String() string {
	return fmt.Sprintf("%d (%s)", p.stat.PID, p.stat.Comm)
}

// Attributes resolves and caches the attribute snapshot on first call.
// It cannot fail: the primary record was already read at construction,
// and secondary records that vanished or were unreadable leave their
// fields empty with Partial set instead of aborting.
func (p *Process) Attributes() *Attributes {
	if p.resolved {
		return p.attrs
	}
	p.attrs = p.resolveAttributes()
	p.resolved = true
	return p.attrs
}

func (p *Process) resolveAttributes() *Attributes {
	attrs := &Attributes{
		Comm:      p.stat.Comm,
		State:     p.stat.State,
		StateName: stateName(p.stat.State),
		Nice:      p.stat.Nice,
		VSize:     p.stat.VSize,
		RSS:       p.stat.RSSPages * int64(os.Getpagesize()),
		CPUTime:   time.Duration(p.stat.UTime+p.stat.STime) * time.Second / clockTicksPerSec,
		StartTime: startTimeOf(p.stat.StartTime, readBtime(p.root)),
	}

	raced := false

	data, err := os.ReadFile(filepath.Join(p.dir, "cmdline"))
	switch classifyReadError(err) {
	case readOK:
		attrs.Cmdline = splitCmdline(data)
	case readVanished:
		raced = true
		attrs.Partial = true
	case readDenied:
		attrs.Partial = true
	}

	data, err = os.ReadFile(filepath.Join(p.dir, "environ"))
	switch classifyReadError(err) {
	case readOK:
		attrs.Environ = parseEnviron(data)
	case readVanished:
		raced = true
		attrs.Partial = true
	case readDenied:
		attrs.Partial = true
	}

	data, err = os.ReadFile(filepath.Join(p.dir, "status"))
	switch classifyReadError(err) {
	case readOK:
		attrs.UserIDs, attrs.GroupIDs = parseStatusIDs(data)
	case readVanished:
		raced = true
		attrs.Partial = true
	case readDenied:
		attrs.Partial = true
	}

	// The exe link is expected to be unreadable for other users' processes
	// and absent for kernel threads, so a failure here is the fallback
	// tier, never a race.
	if exe, err := readExe(p.dir); err == nil {
		attrs.Exe = exe
	}

	if raced && p.onSecondaryRace != nil {
		p.onSecondaryRace()
	}
	return attrs
}

// Runtime returns the elapsed wall-clock time since the process started,
// computed at call time from the cached start time. Zero when the start
// time could not be determined.
func (p *Process) Runtime() time.Duration {
	start := p.Attributes().StartTime
	if start.IsZero() {
		return 0
	}
	return time.Since(start)
}

// IsAlive re-probes the existence of the process's /proc entry. It never
// consults the attribute cache: a handle outlives its process and this
// is how callers notice.
func (p *Process) IsAlive() bool {
	_, err := os.Stat(p.dir)
	return err == nil
}

// Signal sends sig to the process. A target that already exited is a
// benign no-op: the caller wanted it gone and it is. Any other delivery
// failure surfaces as a SignalError.
func (p *Process) Signal(sig syscall.Signal) error {
	err := syscall.Kill(p.stat.PID, sig)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return &SignalError{PID: p.stat.PID, Sig: sig, Err: err}
}

// Stop suspends the process with SIGSTOP.
func (p *Process) Stop() error { return p.Signal(syscall.SIGSTOP) }

// Cont resumes a stopped process with SIGCONT.
func (p *Process) Cont() error { return p.Signal(syscall.SIGCONT) }

// Terminate asks the process to exit with SIGTERM.
func (p *Process) Terminate() error { return p.Signal(syscall.SIGTERM) }

// Kill forcibly ends the process with SIGKILL.
func (p *Process) Kill() error { return p.Signal(syscall.SIGKILL) }
