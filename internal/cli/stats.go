package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/internal/telemetry"
	"github.com/7c/goproc/proc"
	"github.com/7c/goproc/stats"
	"github.com/spf13/cobra"
)

var statsTelegraf string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate memory and CPU statistics over one scan",
	Long: `Scan the process table once and aggregate memory and CPU figures
across everything visible: per-state counts plus min, max, average and
median of resident size, virtual size and consumed CPU time.`,
	Example: `  # One-shot system overview
  goproc stats

  # Also push the scan to a local telegraf UDP listener
  goproc stats --telegraf 127.0.0.1:8094

  # Machine readable
  goproc stats --json`,
	Args: cobra.NoArgs,
	Run:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsTelegraf, "telegraf", "", "UDP address to emit the scan to (InfluxDB line protocol)")
}

// aggregates is min/max/average/median of one sampled metric.
type aggregates struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}

func aggregate(l stats.List) aggregates {
	lo, _ := l.Min()
	hi, _ := l.Max()
	avg, _ := l.Average()
	med, _ := l.Median()
	return aggregates{Min: lo, Max: hi, Average: avg, Median: med}
}

func runStats(cmd *cobra.Command, args []string) {
	e := newEnumerator()
	started := time.Now()
	procs, err := e.Enumerate()
	if err != nil {
		exitError(err.Error())
	}
	if len(procs) == 0 {
		exitError("no processes visible")
	}
	sum := telemetry.Summarize(procs, e.Races(), time.Since(started))

	var rss, vsize, cpu stats.List
	for _, p := range procs {
		a := p.Attributes()
		rss = append(rss, float64(a.RSS))
		vsize = append(vsize, float64(a.VSize))
		cpu = append(cpu, a.CPUTime.Seconds())
	}

	if statsTelegraf != "" {
		emitScan(statsTelegraf, sum, procs)
	}

	if jsonOutput {
		outputJSON(struct {
			telemetry.ScanSummary
			RSS     aggregates `json:"rss_bytes"`
			VSize   aggregates `json:"vsize_bytes"`
			CPUTime aggregates `json:"cpu_time_seconds"`
		}{
			ScanSummary: sum,
			RSS:         aggregate(rss),
			VSize:       aggregate(vsize),
			CPUTime:     aggregate(cpu),
		})
		return
	}

	fmt.Printf("%s processes: %d running, %d sleeping, %d stopped, %d zombie\n",
		display.Bold(fmt.Sprintf("%d", sum.Total)),
		sum.Running, sum.Sleeping, sum.Stopped, sum.Zombie)
	fmt.Printf("Total RSS %s, scanned in %dms\n\n",
		display.Bold(display.FormatBytes(sum.RSSTotal)), sum.ScanDuration.Milliseconds())

	t := display.NewTable("Metric", "Min", "Max", "Average", "Median")
	addByteRow(t, "Memory (RSS)", aggregate(rss))
	addByteRow(t, "Virtual size", aggregate(vsize))
	cpuAgg := aggregate(cpu)
	t.AddRow("CPU time",
		formatSeconds(cpuAgg.Min), formatSeconds(cpuAgg.Max),
		formatSeconds(cpuAgg.Average), formatSeconds(cpuAgg.Median))
	t.Render(os.Stdout)
}

func addByteRow(t *display.Table, label string, a aggregates) {
	t.AddRow(label,
		display.FormatBytes(int64(a.Min)), display.FormatBytes(int64(a.Max)),
		display.FormatBytes(int64(a.Average)), display.FormatBytes(int64(a.Median)))
}

func formatSeconds(sec float64) string {
	return display.FormatCPUTime(time.Duration(sec * float64(time.Second)))
}

// emitScan sends one scan to a telegraf UDP listener. A bad address is
// fatal; the sends themselves are fire and forget.
func emitScan(addr string, sum telemetry.ScanSummary, procs []*proc.Process) {
	em, err := newEmitter(addr)
	if err != nil {
		exitError(err.Error())
	}
	defer em.Close()
	em.Emit(sum, procs)
}
