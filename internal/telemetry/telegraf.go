package telemetry

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/7c/goproc/proc"
)

// ScanSummary aggregates one enumeration pass for emission.
type ScanSummary struct {
	Total          int           `json:"processes"`
	Running        int           `json:"running"`
	Sleeping       int           `json:"sleeping"`
	Zombie         int           `json:"zombie"`
	Stopped        int           `json:"stopped"`
	RSSTotal       int64         `json:"rss_total_bytes"`
	ListingRaces   int           `json:"listing_races"`
	SecondaryRaces int           `json:"secondary_races"`
	ScanDuration   time.Duration `json:"scan_duration_ns"`
}

// Summarize folds a scan result into per-state counts and totals.
func Summarize(procs []*proc.Process, races proc.RaceCounters, scanTime time.Duration) ScanSummary {
	s := ScanSummary{
		Total:          len(procs),
		ListingRaces:   races.Listing,
		SecondaryRaces: races.Secondary,
		ScanDuration:   scanTime,
	}
	for _, p := range procs {
		a := p.Attributes()
		s.RSSTotal += a.RSS
		switch a.StateName {
		case "running":
			s.Running++
		case "sleeping", "idle", "disk sleep":
			s.Sleeping++
		case "zombie":
			s.Zombie++
		case "stopped", "tracing stop":
			s.Stopped++
		}
	}
	return s
}

// TelegrafEmitter sends scan metrics to Telegraf via UDP in InfluxDB line protocol.
type TelegrafEmitter struct {
	conn        *net.UDPConn
	measurement string
	hostname    string
}

// NewTelegrafEmitter creates a new emitter. addr is the resolved UDP address.
func NewTelegrafEmitter(addr *net.UDPAddr, measurement string) (*TelegrafEmitter, error) {
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("telegraf dial: %w", err)
	}
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	return &TelegrafEmitter{
		conn:        conn,
		measurement: measurement,
		hostname:    hostname,
	}, nil
}

// Emit sends one summary line for the scan plus one line per tracked process.
func (e *TelegrafEmitter) Emit(sum ScanSummary, tracked []*proc.Process) {
	if e == nil || e.conn == nil {
		return
	}

	now := time.Now().UnixNano()
	var lines []string

	for _, p := range tracked {
		lines = append(lines, ProcessLine(e.measurement, p, now))
	}

	lines = append(lines, fmt.Sprintf(
		"%s_scan,host=%s processes=%di,running=%di,sleeping=%di,zombie=%di,stopped=%di,rss_total=%di,listing_races=%di,secondary_races=%di,scan_ms=%di %d",
		e.measurement,
		escapeTag(e.hostname),
		sum.Total, sum.Running, sum.Sleeping, sum.Zombie, sum.Stopped,
		sum.RSSTotal,
		sum.ListingRaces, sum.SecondaryRaces,
		sum.ScanDuration.Milliseconds(),
		now,
	))

	payload := strings.Join(lines, "\n") + "\n"
	e.conn.Write([]byte(payload)) // fire-and-forget
}

// EmitProcess sends a single process sample line, for pollers tracking
// one pid between full scans.
func (e *TelegrafEmitter) EmitProcess(p *proc.Process) {
	if e == nil || e.conn == nil {
		return
	}
	e.conn.Write([]byte(ProcessLine(e.measurement, p, time.Now().UnixNano()) + "\n"))
}

// ProcessLine renders one process sample in InfluxDB line protocol with
// a nanosecond timestamp. The same line goes over UDP and into sample
// log files, so telegraf can ingest either.
func ProcessLine(measurement string, p *proc.Process, now int64) string {
	a := p.Attributes()
	tags := fmt.Sprintf("%s,name=%s,pid=%d,state=%s",
		measurement,
		escapeTag(a.ExeName()),
		p.PID(),
		escapeTag(a.StateName),
	)
	return fmt.Sprintf("%s rss=%di,vsize=%di,cpu_time=%f,uptime=%di,nice=%di %d",
		tags, a.RSS, a.VSize, a.CPUTime.Seconds(), int64(p.Runtime().Seconds()), a.Nice, now)
}

// Close closes the UDP connection.
func (e *TelegrafEmitter) Close() {
	if e != nil && e.conn != nil {
		e.conn.Close()
	}
}

// escapeTag escapes special characters in InfluxDB line protocol tag values.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}
