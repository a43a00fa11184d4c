package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// --- Lifecycle behavior ---
	_ = flag.Bool("run-forever", false, "Run until signaled (default behavior)")
	exitAfter := flag.Duration("exit-after", 0, "Exit cleanly after duration (0=never)")
	exitCode := flag.Int("exit-code", 0, "Exit code used by --exit-after")

	// --- Process tree behavior ---
	spawn := flag.Int("spawn", 0, "Spawn this many children of ourselves")
	childLifetime := flag.Duration("child-lifetime", 0, "Children exit cleanly after this long (0=run forever)")

	// --- Signal behavior ---
	trapSigterm := flag.Bool("trap-sigterm", false, "Catch SIGTERM and ignore it (test kill escalation)")

	// --- Resource behavior ---
	allocMB := flag.Int("alloc-mb", 0, "Allocate this many MB of memory and hold it")

	// --- Startup behavior ---
	startDelay := flag.Duration("start-delay", 0, "Sleep this long before doing anything")
	printPID := flag.Bool("print-pid", false, "Print PID to stdout on startup")
	printEnv := flag.String("print-env", "", "Print this env var's value to stdout on startup")

	flag.Parse()

	// --- Startup ---
	if *startDelay > 0 {
		time.Sleep(*startDelay)
	}
	if *printPID {
		fmt.Fprintf(os.Stdout, "PID=%d\n", os.Getpid())
	}
	if *printEnv != "" {
		fmt.Fprintf(os.Stdout, "%s=%s\n", *printEnv, os.Getenv(*printEnv))
	}

	// --- Memory allocation ---
	var memhold []byte
	if *allocMB > 0 {
		memhold = make([]byte, *allocMB*1024*1024)
		for i := range memhold {
			memhold[i] = byte(i)
		}
		_ = memhold
	}

	// --- Children ---
	for i := 0; i < *spawn; i++ {
		args := []string{"--run-forever"}
		if *childLifetime > 0 {
			args = []string{"--exit-after", childLifetime.String()}
		}
		c := exec.Command(os.Args[0], args...)
		if err := c.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "spawn child: %v\n", err)
			os.Exit(1)
		}
		// Reap on exit so finished children don't linger as zombies.
		go c.Wait()
	}

	// --- Signal handling ---
	if *trapSigterm {
		trapCh := make(chan os.Signal, 1)
		signal.Notify(trapCh, syscall.SIGTERM)
		go func() {
			for range trapCh {
				fmt.Fprintln(os.Stderr, "SIGTERM received, ignoring")
			}
		}()
	}

	// --- Exit timer ---
	if *exitAfter > 0 {
		go func() {
			time.Sleep(*exitAfter)
			fmt.Fprintln(os.Stdout, "clean exit")
			os.Exit(*exitCode)
		}()
	}

	// --- Block until signaled ---
	waitCh := make(chan os.Signal, 1)
	if *trapSigterm {
		signal.Notify(waitCh, syscall.SIGINT)
	} else {
		signal.Notify(waitCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-waitCh
	os.Exit(0)
}
