package proc

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const clockTicksPerSec = 100 // standard on virtually all Linux systems

// DefaultRoot returns the procfs mount point, respecting the GOPROC_PROC
// environment variable. Tests point it at a fabricated tree.
func DefaultRoot() string {
	if r := os.Getenv("GOPROC_PROC"); r != "" {
		return r
	}
	return "/proc"
}

// statRecord is the decoded form of /proc/<pid>/stat, the primary record.
// Identity fields come from here and are fixed for the handle's lifetime.
type statRecord struct {
	PID       int
	Comm      string
	State     string // single-letter code as read
	PPID      int
	PGRP      int
	Session   int
	Nice      int
	UTime     int64 // clock ticks
	STime     int64
	StartTime int64 // clock ticks since boot
	VSize     int64 // bytes
	RSSPages  int64
}

// Offsets into the whitespace-split fields that follow the comm field.
// Field numbering matches proc(5) with pid=1 and comm=2 already consumed.
const (
	statState     = 0  // (3) state
	statPPID      = 1  // (4) ppid
	statPGRP      = 2  // (5) pgrp
	statSession   = 3  // (6) session
	statUTime     = 11 // (14) utime
	statSTime     = 12 // (15) stime
	statNice      = 16 // (19) nice
	statStartTime = 19 // (22) starttime
	statVSize     = 20 // (23) vsize
	statRSS       = 21 // (24) rss
)

// minStatFields is the number of post-comm fields required before any
// indexing happens. A shorter record means the layout assumption is wrong
// and indexing it would silently read the wrong columns.
const minStatFields = statRSS + 1

// parseStat decodes the contents of a stat file. The comm field can
// contain spaces and parentheses, so it is isolated by the outermost
// '(' and ')' pair rather than split like the rest of the line.
func parseStat(dir string, data []byte) (*statRecord, error) {
	s := string(data)
	start := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if start < 1 || end <= start {
		return nil, &DecodeError{Dir: dir, Reason: "comm field delimiters not found"}
	}

	pid, err := strconv.Atoi(strings.TrimSpace(s[:start-1]))
	if err != nil {
		return nil, &DecodeError{Dir: dir, Reason: "pid field is not numeric"}
	}

	rest := strings.Fields(s[end+1:])
	if len(rest) < minStatFields {
		return nil, &DecodeError{
			Dir:    dir,
			Reason: "expected at least " + strconv.Itoa(minStatFields) + " fields after comm, got " + strconv.Itoa(len(rest)),
		}
	}

	rec := &statRecord{
		PID:   pid,
		Comm:  s[start+1 : end],
		State: rest[statState],
	}
	rec.PPID, _ = strconv.Atoi(rest[statPPID])
	rec.PGRP, _ = strconv.Atoi(rest[statPGRP])
	rec.Session, _ = strconv.Atoi(rest[statSession])
	rec.Nice, _ = strconv.Atoi(rest[statNice])
	rec.UTime, _ = strconv.ParseInt(rest[statUTime], 10, 64)
	rec.STime, _ = strconv.ParseInt(rest[statSTime], 10, 64)
	rec.StartTime, _ = strconv.ParseInt(rest[statStartTime], 10, 64)
	rec.VSize, _ = strconv.ParseInt(rest[statVSize], 10, 64)
	rec.RSSPages, _ = strconv.ParseInt(rest[statRSS], 10, 64)
	return rec, nil
}

// stateName maps the single-letter state code to a human name. Codes not
// in the table decode to "unknown" rather than failing: kernels grow new
// states and a scan must survive them.
func stateName(code string) string {
	switch code {
	case "R":
		return "running"
	case "S":
		return "sleeping"
	case "D":
		return "disk sleep"
	case "Z":
		return "zombie"
	case "T":
		return "stopped"
	case "t":
		return "tracing stop"
	case "W":
		return "waking"
	case "X", "x":
		return "dead"
	case "K":
		return "wakekill"
	case "P":
		return "parked"
	case "I":
		return "idle"
	default:
		return "unknown"
	}
}

// splitCmdline splits the NUL-separated argument vector. The terminating
// NUL produces one trailing empty token, which is dropped; empty tokens
// in the middle are legitimate arguments and are preserved.
func splitCmdline(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(data), "\x00"), "\x00")
}

// parseEnviron splits the NUL-separated KEY=VALUE block. Each token is
// split on the first '=' only, since values may contain '='.
func parseEnviron(data []byte) map[string]string {
	if len(data) == 0 {
		return nil
	}
	env := make(map[string]string)
	for _, entry := range strings.Split(strings.TrimRight(string(data), "\x00"), "\x00") {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) == 2 && parts[0] != "" {
			env[parts[0]] = parts[1]
		}
	}
	return env
}

// IDs holds the four-column id set from a Uid: or Gid: status row.
type IDs struct {
	Real      int `json:"real"`
	Effective int `json:"effective"`
	Saved     int `json:"saved"`
	FS        int `json:"fs"`
}

/// parseStatusIDs extracts the Uid: and Gid: rows from a status file.
func parseStatusIDs(data []byte) (uids, gids IDs) {
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.SplitN(line, ":\t", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "Uid":
			uids = parseIDRow(parts[1])
		case "Gid":
			gids = parseIDRow(parts[1])
		}
	}
	return uids, gids
}

func parseIDRow(s string) IDs {
	fields := strings.Fields(s)
	var ids IDs
	if len(fields) > 0 {
		ids.Real, _ = strconv.Atoi(fields[0])
	}
	if len(fields) > 1 {
		ids.Effective, _ = strconv.Atoi(fields[1])
	}
	if len(fields) > 2 {
		ids.Saved, _ = strconv.Atoi(fields[2])
	}
	if len(fields) > 3 {
		ids.FS, _ = strconv.Atoi(fields[3])
	}
	return ids
}

// readBtime reads the boot time (seconds since the epoch) from the btime
// line of <root>/stat. Returns 0 when unavailable; start times are then
// left at their zero value.
func readBtime(root string) int64 {
	data, err := os.ReadFile(filepath.Join(root, "stat"))
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "btime ") {
			v, _ := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "btime ")), 10, 64)
			return v
		}
	}
	return 0
}

// readExe resolves the exe symlink. A " (deleted)" suffix is stripped so
// the path of a replaced binary still points at something meaningful.
func readExe(dir string) (string, error) {
	target, err := os.Readlink(filepath.Join(dir, "exe"))
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(target, " (deleted)"), nil
}

// startTimeOf converts a starttime tick count plus boot time to a
// wall-clock time. Zero when boot time is unknown.
func startTimeOf(startTicks, btime int64) time.Time {
	if btime <= 0 || startTicks <= 0 {
		return time.Time{}
	}
	return time.Unix(btime+startTicks/clockTicksPerSec, 0)
}
