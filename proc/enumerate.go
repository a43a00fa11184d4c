package proc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// RaceCounters holds the enumerator's diagnostic tallies of scan races.
// Listing counts pids that vanished between the directory listing and
// the stat read; Secondary counts handles whose cmdline/environ/status
// records vanished after a successful stat read. Neither affects scan
// results, they only make the churn visible.
type RaceCounters struct {
	Listing   int `json:"listing"`
	Secondary int `json:"secondary"`
}

// Enumerator produces process handles for every currently visible pid.
// Each instance owns its race counters; concurrent callers should use
// separate instances. Counters are updated by the goroutine running the
// scan and the later attribute resolutions of the handles it built.
type Enumerator struct {
	root   string
	logger *slog.Logger
	races  RaceCounters
}

// Option configures an Enumerator.
type Option func(*Enumerator)

// WithRoot overrides the procfs mount point, mainly for tests running
// against a fabricated tree.
func WithRoot(root string) Option {
	return func(e *Enumerator) { e.root = root }
}

// WithLogger enables debug logging of race events during scans.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enumerator) { e.logger = logger }
}

// NewEnumerator returns an enumerator rooted at DefaultRoot unless
// overridden.
func NewEnumerator(opts ...Option) *Enumerator {
	e := &Enumerator{root: DefaultRoot()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the procfs mount point this enumerator scans.
func (e *Enumerator) Root() string { return e.root }

// NewProcess builds a handle for one entry directory with its
// secondary-race observer wired to this enumerator. Custom EnumerateWith
// builders that carry a Process should construct it through this method
// so the Secondary counter stays accurate.
func (e *Enumerator) NewProcess(dir string) (*Process, error) {
	p, err := fromDir(e.root, dir)
	if err != nil {
		return nil, err
	}
	p.onSecondaryRace = e.noteSecondaryRace
	return p, nil
}

func (e *Enumerator) noteSecondaryRace() {
	e.races.Secondary++
	if e.logger != nil {
		e.logger.Debug("secondary records vanished mid-decode")
	}
}

// Enumerate scans the listing once and returns a handle per pid that was
// still present when its stat record was read. Pids that vanished in
// between are skipped silently; that is expected churn, not an error.
// Consuming the result twice does not re-scan; call Enumerate again.
func (e *Enumerator) Enumerate() ([]*Process, error) {
	return EnumerateWith(e, e.NewProcess)
}

// Find runs one enumeration pass and keeps the handles pred accepts.
// A nil pred keeps everything.
func (e *Enumerator) Find(pred func(*Process) bool) ([]*Process, error) {
	procs, err := e.Enumerate()
	if err != nil || pred == nil {
		return procs, err
	}
	matched := make([]*Process, 0, len(procs))
	for _, p := range procs {
		if pred(p) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Races returns a copy of the current counters.
func (e *Enumerator) Races() RaceCounters { return e.races }

// EnumerateWith is the construction-strategy variant of Enumerate: build
// is called with each visible entry directory and may return any record
// type. A NotFoundError from build is counted and skipped exactly like
// the default path; any other error aborts the scan, since a malformed
// record means the decoder's layout assumptions are wrong here.
func EnumerateWith[T any](e *Enumerator, build func(dir string) (T, error)) ([]T, error) {
	if build == nil {
		return nil, fmt.Errorf("enumerate: nil builder")
	}
	entries, err := os.ReadDir(e.root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", e.root, err)
	}

	var out []T
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 {
			continue // not a process entry
		}
		v, err := build(filepath.Join(e.root, entry.Name()))
		if err != nil {
			if IsNotFound(err) {
				e.races.Listing++
				if e.logger != nil {
					e.logger.Debug("process vanished during listing", "pid", pid)
				}
				continue
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
