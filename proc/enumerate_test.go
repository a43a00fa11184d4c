package proc

import (
	"os"
	"os/exec"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestEnumerateFakeRoot(t *testing.T) {
	root := fakeRoot(t)
	makeEntry(t, root, "1", fakeEntry{stat: fakeStatLine(1, "init", "S")})
	makeEntry(t, root, "2", fakeEntry{stat: fakeStatLine(2, "kthreadd", "I")})
	makeEntry(t, root, "50", fakeEntry{stat: fakeStatLine(50, "worker", "R")})
	// Non-process entries a real /proc also carries.
	if err := os.MkdirAll(root+"/irq", 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "uptime", "100 200\n")

	e := NewEnumerator(WithRoot(root))
	procs, err := e.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	var pids []int
	for _, p := range procs {
		pids = append(pids, p.PID())
	}
	sort.Ints(pids)
	if len(pids) != 3 || pids[0] != 1 || pids[1] != 2 || pids[2] != 50 {
		t.Errorf("pids = %v, want [1 2 50]", pids)
	}
	if r := e.Races(); r.Listing != 0 || r.Secondary != 0 {
		t.Errorf("races = %+v, want zero", r)
	}
}

func TestEnumerateSkipsVanishedPid(t *testing.T) {
	root := fakeRoot(t)
	makeEntry(t, root, "1", fakeEntry{stat: fakeStatLine(1, "init", "S")})
	// A listed entry with no readable stat record is exactly what a pid
	// that died between ReadDir and the stat read looks like.
	makeEntry(t, root, "99", fakeEntry{})

	e := NewEnumerator(WithRoot(root))
	procs, err := e.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(procs) != 1 || procs[0].PID() != 1 {
		t.Errorf("procs = %v, want just pid 1", procs)
	}
	if r := e.Races(); r.Listing != 1 {
		t.Errorf("Listing = %d, want 1", r.Listing)
	}
}

func TestEnumerateSurfacesMalformedStat(t *testing.T) {
	root := fakeRoot(t)
	makeEntry(t, root, "1", fakeEntry{stat: fakeStatLine(1, "init", "S")})
	makeEntry(t, root, "7", fakeEntry{stat: "not a stat record at all\n"})

	e := NewEnumerator(WithRoot(root))
	_, err := e.Enumerate()
	if err == nil {
		t.Fatal("Enumerate swallowed a malformed record")
	}
	if !IsDecode(err) {
		t.Errorf("error is %T (%v), want DecodeError", err, err)
	}
}

func TestEnumerateMissingRoot(t *testing.T) {
	e := NewEnumerator(WithRoot("/no/such/procfs"))
	if _, err := e.Enumerate(); err == nil {
		t.Fatal("Enumerate on a missing root succeeded")
	}
}

func TestFindPredicate(t *testing.T) {
	root := fakeRoot(t)
	makeEntry(t, root, "1", fakeEntry{stat: fakeStatLine(1, "init", "S")})
	makeEntry(t, root, "2", fakeEntry{stat: fakeStatLine(2, "worker", "R")})
	makeEntry(t, root, "3", fakeEntry{stat: fakeStatLine(3, "worker", "S")})

	e := NewEnumerator(WithRoot(root))
	procs, err := e.Find(func(p *Process) bool {
		return p.Attributes().Comm == "worker"
	})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(procs) != 2 {
		t.Fatalf("len = %d, want 2", len(procs))
	}
	for _, p := range procs {
		if p.Attributes().Comm != "worker" {
			t.Errorf("pid %d comm = %q", p.PID(), p.Attributes().Comm)
		}
	}

	all, err := e.Find(nil)
	if err != nil || len(all) != 3 {
		t.Errorf("Find(nil) = %d procs, err %v, want 3", len(all), err)
	}
}

// annotated is a caller-defined record type for EnumerateWith.
type annotated struct {
	proc *Process
	note string
}

func TestEnumerateWithCustomBuilder(t *testing.T) {
	root := fakeRoot(t)
	makeEntry(t, root, "5", fakeEntry{stat: fakeStatLine(5, "a", "S")})
	makeEntry(t, root, "6", fakeEntry{stat: fakeStatLine(6, "b", "R")})

	e := NewEnumerator(WithRoot(root))
	records, err := EnumerateWith(e, func(dir string) (annotated, error) {
		p, err := e.NewProcess(dir)
		if err != nil {
			return annotated{}, err
		}
		return annotated{proc: p, note: "seen"}, nil
	})
	if err != nil {
		t.Fatalf("EnumerateWith: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.note != "seen" || r.proc == nil {
			t.Errorf("record = %+v", r)
		}
	}
}

func TestEnumerateWithNilBuilder(t *testing.T) {
	e := NewEnumerator(WithRoot(fakeRoot(t)))
	if _, err := EnumerateWith[*Process](e, nil); err == nil {
		t.Fatal("nil builder accepted")
	}
}

func TestEnumerateWithCountsVanished(t *testing.T) {
	root := fakeRoot(t)
	makeEntry(t, root, "5", fakeEntry{stat: fakeStatLine(5, "a", "S")})
	makeEntry(t, root, "99", fakeEntry{})

	e := NewEnumerator(WithRoot(root))
	records, err := EnumerateWith(e, e.NewProcess)
	if err != nil {
		t.Fatalf("EnumerateWith: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len = %d, want 1", len(records))
	}
	if r := e.Races(); r.Listing != 1 {
		t.Errorf("Listing = %d, want 1", r.Listing)
	}
}

func TestRacesReturnsCopy(t *testing.T) {
	e := NewEnumerator(WithRoot(fakeRoot(t)))
	r := e.Races()
	r.Listing = 1000
	if e.Races().Listing != 0 {
		t.Error("Races() exposed internal state")
	}
}

func TestEnumerateRealSystem(t *testing.T) {
	e := NewEnumerator()
	procs, err := e.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(procs) == 0 {
		t.Fatal("no processes on a live system")
	}

	// One pass must be internally consistent: a pid appears once, and
	// our own entry carries our real identity.
	seen := make(map[int]int) // pid -> ppid
	self := false
	for _, p := range procs {
		if prev, dup := seen[p.PID()]; dup && prev != p.PPID() {
			t.Errorf("pid %d appears twice with ppids %d and %d", p.PID(), prev, p.PPID())
		}
		seen[p.PID()] = p.PPID()
		if p.PID() == os.Getpid() {
			self = true
			if p.PPID() != os.Getppid() {
				t.Errorf("self ppid = %d, want %d", p.PPID(), os.Getppid())
			}
		}
	}
	if !self {
		t.Error("our own pid missing from the pass")
	}
}

// TestChurnRaceCounters reproduces scan races on purpose: a pool of
// goroutines keeps spawning and reaping short-lived children while the
// main goroutine scans with a deliberately slowed builder, until both
// counters have moved.
func TestChurnRaceCounters(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes in a tight loop")
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				cmd := exec.Command("sleep", "0.05")
				if err := cmd.Start(); err != nil {
					return
				}
				cmd.Wait()
			}
		}()
	}
	defer func() {
		close(stop)
		wg.Wait()
	}()

	e := NewEnumerator()
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		procs, err := EnumerateWith(e, func(dir string) (*Process, error) {
			// Widen the listing-to-stat window; the children above die
			// every few milliseconds.
			time.Sleep(time.Millisecond)
			return e.NewProcess(dir)
		})
		if err != nil {
			t.Fatalf("scan during churn: %v", err)
		}
		for _, p := range procs {
			p.Attributes()
		}
		r := e.Races()
		if r.Listing > 0 && r.Secondary > 0 {
			return
		}
	}
	t.Fatalf("race counters did not both move within 60s: %+v", e.Races())
}
