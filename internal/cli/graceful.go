package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/proc"
	"github.com/7c/goproc/proctree"
	"github.com/spf13/cobra"
)

var (
	gracefulTimeout  time.Duration
	gracefulInterval time.Duration
	gracefulForce    bool
)

var gracefulCmd = &cobra.Command{
	Use:   "graceful <pid|name>",
	Short: "Drain a daemon's workers, then terminate it",
	Long: `Gracefully shut down a daemon that spawns worker processes, such as
cron: suspend it so it cannot spawn new workers, wait for the workers
it already spawned to finish, then resume and terminate it.`,
	Example: `  # Let running cron jobs finish before stopping cron
  goproc graceful cron

  # Poll faster, give up waiting after five minutes
  goproc graceful 1234 --interval 250ms --timeout 5m

  # SIGKILL the daemon if it survives SIGTERM
  goproc graceful cron --force`,
	Args: cobra.ExactArgs(1),
	Run:  runGraceful,
}

func init() {
	f := gracefulCmd.Flags()
	f.DurationVar(&gracefulTimeout, "timeout", time.Minute, "how long to wait for workers to finish")
	f.DurationVar(&gracefulInterval, "interval", time.Second, "polling interval")
	f.BoolVar(&gracefulForce, "force", false, "SIGKILL the daemon if it survives SIGTERM")
}

func runGraceful(cmd *cobra.Command, args []string) {
	e := newEnumerator()
	p := resolveTarget(e, args[0])

	if err := p.Stop(); err != nil {
		exitError(err.Error())
	}
	fmt.Printf("Suspended %s so no new workers are spawned\n", display.Bold(p.String()))

	if drainWorkers(e, p.PID(), gracefulTimeout, gracefulInterval) {
		fmt.Println(display.Green("All workers finished"))
	} else {
		fmt.Println(display.Yellow("Timed out waiting for workers, terminating anyway"))
	}

	if err := p.Cont(); err != nil {
		exitError(err.Error())
	}
	if err := p.Terminate(); err != nil {
		exitError(err.Error())
	}
	fmt.Printf("Resumed and terminated %s\n", display.Bold(p.String()))

	if !gracefulForce {
		return
	}
	if awaitExit([]*proc.Process{p}, gracefulTimeout, gracefulInterval) {
		return
	}
	if err := p.Kill(); err != nil {
		exitError(err.Error())
	}
	fmt.Printf("%s %s\n", display.Bold(p.String()), display.Red("killed"))
}

// resolveTarget accepts a numeric pid or an executable name. A name
// that matches several processes picks the lowest pid, which for a
// forking daemon is the daemon itself.
func resolveTarget(e *proc.Enumerator, target string) *proc.Process {
	if pid, err := strconv.Atoi(target); err == nil {
		p, err := proc.FromPid(pid)
		if err != nil {
			exitError(fmt.Sprintf("no process with PID %d", pid))
		}
		return p
	}

	matches, err := e.Find(func(p *proc.Process) bool {
		return p.Attributes().ExeName() == target
	})
	if err != nil {
		exitError(err.Error())
	}
	if len(matches) == 0 {
		exitError(fmt.Sprintf("no process named %q", target))
	}
	best := matches[0]
	for _, p := range matches[1:] {
		if p.PID() < best.PID() {
			best = p
		}
	}
	return best
}

// drainWorkers polls a fresh tree snapshot until pid has no descendants
// left or the deadline passes. Reports whether the tree drained.
func drainWorkers(e *proc.Enumerator, pid int, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	last := -1
	for {
		t, err := proctree.BuildFrom(e)
		if err != nil {
			slog.Warn("tree snapshot failed", "err", err)
		} else {
			node := t.Find(pid, true)
			if node == nil {
				return true // the daemon itself is gone
			}
			workers := liveWorkers(node)
			if workers == 0 {
				return true
			}
			if workers != last {
				fmt.Println(display.Dim(fmt.Sprintf("  waiting for %d worker(s) to finish", workers)))
				last = workers
			}
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// liveWorkers counts the descendants of n that are still doing work.
// Zombies are finished: the suspended daemon cannot reap them until it
// is resumed, so they must not hold up the drain.
func liveWorkers(n *proctree.Node) int {
	live := 0
	for _, d := range n.Descendants() {
		switch d.Process.Attributes().StateName {
		case "zombie", "dead":
		default:
			live++
		}
	}
	return live
}

// awaitExit polls the liveness of a batch of processes until all have
// exited or the deadline passes. Reports whether all exited.
func awaitExit(procs []*proc.Process, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		alive := 0
		for _, p := range procs {
			if p.IsAlive() {
				alive++
			}
		}
		if alive == 0 {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
