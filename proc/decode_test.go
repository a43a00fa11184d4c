package proc

import (
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

// fakeStatLine builds a plausible stat line around the given comm,
// state and the three memory/time fields the decoder cares about.
func fakeStatLine(pid int, comm, state string) string {
	return fakeStatLineFull(pid, comm, state, 42, 42, 42, 100, 50, 7, 12345, 4096000, 250)
}

func fakeStatLineFull(pid int, comm, state string, ppid, pgrp, session int, utime, stime int64, nice int, start, vsize, rss int64) string {
	fields := []string{
		state,
		itoa(ppid), itoa(pgrp), itoa(session),
		"0", "-1", "4194304", // tty_nr tpgid flags
		"151", "120", "0", "0", // minflt cminflt majflt cmajflt
		itoa64(utime), itoa64(stime), "0", "0", // utime stime cutime cstime
		"20", itoa(nice), "1", "0", // priority nice num_threads itrealvalue
		itoa64(start), itoa64(vsize), itoa64(rss),
		"18446744073709551615", "94000000000000", "94000000000001", // limits tail
	}
	line := itoa(pid) + " (" + comm + ")"
	for _, f := range fields {
		line += " " + f
	}
	return line + "\n"
}

func itoa(i int) string     { return strconv.Itoa(i) }
func itoa64(i int64) string { return strconv.FormatInt(i, 10) }

func TestParseStatBasic(t *testing.T) {
	rec, err := parseStat("/proc/42", []byte(fakeStatLineFull(42, "nginx", "S", 1, 42, 42, 200, 100, 0, 5000, 8388608, 512)))
	if err != nil {
		t.Fatalf("parseStat: %v", err)
	}
	if rec.PID != 42 {
		t.Errorf("PID = %d, want 42", rec.PID)
	}
	if rec.Comm != "nginx" {
		t.Errorf("Comm = %q, want nginx", rec.Comm)
	}
	if rec.State != "S" {
		t.Errorf("State = %q, want S", rec.State)
	}
	if rec.PPID != 1 {
		t.Errorf("PPID = %d, want 1", rec.PPID)
	}
	if rec.UTime != 200 || rec.STime != 100 {
		t.Errorf("UTime/STime = %d/%d, want 200/100", rec.UTime, rec.STime)
	}
	if rec.StartTime != 5000 {
		t.Errorf("StartTime = %d, want 5000", rec.StartTime)
	}
	if rec.VSize != 8388608 {
		t.Errorf("VSize = %d, want 8388608", rec.VSize)
	}
	if rec.RSSPages != 512 {
		t.Errorf("RSSPages = %d, want 512", rec.RSSPages)
	}
}

func TestParseStatCommRoundTrip(t *testing.T) {
	// comm can contain spaces, parens, even an unbalanced ')'. Only the
	// outermost pair delimits it.
	comms := []string{
		"simple",
		"with space",
		"(sd-pam)",
		"a(b)c",
		"weird ) name",
		"((nested))",
		"tmux: server",
	}
	for _, comm := range comms {
		rec, err := parseStat("/proc/7", []byte(fakeStatLine(7, comm, "R")))
		if err != nil {
			t.Errorf("parseStat(comm=%q): %v", comm, err)
			continue
		}
		if rec.Comm != comm {
			t.Errorf("Comm = %q, want %q", rec.Comm, comm)
		}
		if rec.State != "R" {
			t.Errorf("State after comm %q = %q, want R", comm, rec.State)
		}
	}
}

func TestParseStatMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"no parens", "1234 comm R 1 1 1"},
		{"no close paren", "1234 (comm R 1 1 1"},
		{"paren order", "1234 )comm( R 1 1 1"},
		{"too few fields", "1234 (comm) R 1 1"},
		{"pid not numeric", "abc " + strings.TrimPrefix(fakeStatLine(1, "comm", "R"), "1 ")},
	}
	for _, tt := range tests {
		_, err := parseStat("/proc/1234", []byte(tt.data))
		if err == nil {
			t.Errorf("%s: parseStat succeeded, want DecodeError", tt.name)
			continue
		}
		if !IsDecode(err) {
			t.Errorf("%s: error is %T, want DecodeError", tt.name, err)
		}
	}
}

func TestStateName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"R", "running"},
		{"S", "sleeping"},
		{"D", "disk sleep"},
		{"Z", "zombie"},
		{"T", "stopped"},
		{"t", "tracing stop"},
		{"I", "idle"},
		{"X", "dead"},
		{"?", "unknown"},
		{"Q", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := stateName(tt.code); got != tt.want {
			t.Errorf("stateName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSplitCmdline(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"empty file", "", nil},
		{"simple", "ls\x00-la\x00", []string{"ls", "-la"}},
		{"no trailing nul", "ls\x00-la", []string{"ls", "-la"}},
		{"empty middle arg kept", "prog\x00\x00after\x00", []string{"prog", "", "after"}},
		{"single empty arg", "\x00", []string{""}},
		{"arg with space", "/usr/bin/some prog\x00", []string{"/usr/bin/some prog"}},
	}
	for _, tt := range tests {
		got := splitCmdline([]byte(tt.data))
		if len(got) != len(tt.want) {
			t.Errorf("%s: len = %d (%q), want %d", tt.name, len(got), got, len(tt.want))
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: arg[%d] = %q, want %q", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseEnviron(t *testing.T) {
	data := "HOME=/root\x00PATH=/usr/bin:/bin\x00EQ=a=b=c\x00EMPTY=\x00JUNK\x00"
	env := parseEnviron([]byte(data))
	if env["HOME"] != "/root" {
		t.Errorf("HOME = %q", env["HOME"])
	}
	if env["PATH"] != "/usr/bin:/bin" {
		t.Errorf("PATH = %q", env["PATH"])
	}
	// Split on the first '=' only: the value keeps its own '='s.
	if env["EQ"] != "a=b=c" {
		t.Errorf("EQ = %q, want a=b=c", env["EQ"])
	}
	if v, ok := env["EMPTY"]; !ok || v != "" {
		t.Errorf("EMPTY = %q ok=%v, want empty string present", v, ok)
	}
	if _, ok := env["JUNK"]; ok {
		t.Error("token without '=' should be dropped")
	}
	if env := parseEnviron(nil); env != nil {
		t.Errorf("empty block = %v, want nil", env)
	}
}

func TestParseStatusIDs(t *testing.T) {
	status := "Name:\tbash\nState:\tS (sleeping)\nUid:\t1000\t1001\t1002\t1003\nGid:\t100\t100\t100\t100\nThreads:\t1\n"
	uids, gids := parseStatusIDs([]byte(status))
	if uids.Real != 1000 || uids.Effective != 1001 || uids.Saved != 1002 || uids.FS != 1003 {
		t.Errorf("uids = %+v", uids)
	}
	if gids.Real != 100 || gids.FS != 100 {
		t.Errorf("gids = %+v", gids)
	}
}

func TestClassifyReadError(t *testing.T) {
	tests := []struct {
		err  error
		want readOutcome
	}{
		{nil, readOK},
		{syscall.ENOENT, readVanished},
		{syscall.ESRCH, readVanished},
		{syscall.EACCES, readDenied},
		{syscall.EPERM, readDenied},
		{syscall.EIO, readVanished}, // exotic errnos must not crash a scan
	}
	for _, tt := range tests {
		if got := classifyReadError(tt.err); got != tt.want {
			t.Errorf("classifyReadError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestStartTimeOf(t *testing.T) {
	if got := startTimeOf(0, 1700000000); !got.IsZero() {
		t.Errorf("zero ticks = %v, want zero time", got)
	}
	if got := startTimeOf(500, 0); !got.IsZero() {
		t.Errorf("unknown btime = %v, want zero time", got)
	}
	got := startTimeOf(500, 1700000000)
	want := time.Unix(1700000005, 0)
	if !got.Equal(want) {
		t.Errorf("startTimeOf = %v, want %v", got, want)
	}
}
