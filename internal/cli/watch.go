package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/internal/logwriter"
	"github.com/7c/goproc/internal/telemetry"
	"github.com/7c/goproc/proc"
	"github.com/spf13/cobra"
)

var (
	watchInterval time.Duration
	watchTelegraf string
	watchLog      string
)

var watchCmd = &cobra.Command{
	Use:   "watch <pid>",
	Short: "Poll one process and print a sample per tick",
	Long: `Print a sample line for one process at a fixed interval until it
exits. With --telegraf each sample is also sent as an InfluxDB line
over UDP for Telegraf ingestion; with --log the same lines go to a
size-rotated file that telegraf can tail.

Use Ctrl+C to exit early.`,
	Example: `  # Two-second samples
  goproc watch 1234

  # Faster samples, mirrored to a local telegraf socket listener
  goproc watch 1234 --interval 500ms --telegraf 127.0.0.1:8094

  # Keep a rotated on-disk record of the samples
  goproc watch 1234 --log /var/log/goproc/1234.samples

  # Stream JSON, one object per line
  goproc watch 1234 --json`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.DurationVarP(&watchInterval, "interval", "i", 2*time.Second, "sampling interval")
	f.StringVar(&watchTelegraf, "telegraf", "", "UDP address to emit samples to (InfluxDB line protocol)")
	f.StringVar(&watchLog, "log", "", "append samples to this file, size-rotated")
}

func runWatch(cmd *cobra.Command, args []string) {
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		exitError(fmt.Sprintf("invalid PID: %q", args[0]))
	}
	if watchInterval < 100*time.Millisecond {
		watchInterval = 100 * time.Millisecond
	}

	var emitter *telemetry.TelegrafEmitter
	if watchTelegraf != "" {
		emitter, err = newEmitter(watchTelegraf)
		if err != nil {
			exitError(err.Error())
		}
		defer emitter.Close()
	}

	var logw *logwriter.RotatingWriter
	if watchLog != "" {
		logw, err = logwriter.New(watchLog, 0, 0)
		if err != nil {
			exitError(err.Error())
		}
		defer logw.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		// A handle never refreshes its attributes, so every sample
		// gets a fresh one. A zombie has an entry but nothing left
		// to measure, so it counts as exited too.
		p, err := proc.FromPid(pid)
		if err != nil || p.Attributes().StateName == "zombie" {
			if !jsonOutput {
				fmt.Println(display.Dim(fmt.Sprintf("process %d exited", pid)))
			}
			return
		}
		sample(p, emitter, logw)

		select {
		case <-sigCh:
			return
		case <-ticker.C:
		}
	}
}

func sample(p *proc.Process, emitter *telemetry.TelegrafEmitter, logw *logwriter.RotatingWriter) {
	if jsonOutput {
		data, err := json.Marshal(newProcessInfo(p, false))
		if err == nil {
			fmt.Println(string(data))
		}
	} else {
		a := p.Attributes()
		fmt.Printf("%s  %s  state=%s  rss=%s  vsize=%s  cpu=%s\n",
			display.Dim(time.Now().Format("15:04:05")),
			display.Bold(p.String()),
			display.StateColor(a.StateName),
			display.FormatBytes(a.RSS),
			display.FormatBytes(a.VSize),
			display.FormatCPUTime(a.CPUTime))
	}
	emitter.EmitProcess(p)
	if logw != nil {
		line := telemetry.ProcessLine("goproc", p, time.Now().UnixNano())
		if _, err := logw.Write([]byte(line + "\n")); err != nil {
			slog.Warn("sample log write failed", "err", err)
		}
	}
}

func newEmitter(addr string) (*telemetry.TelegrafEmitter, error) {
	udp, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	return telemetry.NewTelegrafEmitter(udp, "goproc")
}
