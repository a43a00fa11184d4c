package gui

import (
	"fmt"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/internal/telemetry"
	"github.com/7c/goproc/proc"
	"github.com/7c/goproc/stats"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// historySize is how many scan samples the history rings retain.
const historySize = 240

// chartMode selects which history series the chart pane plots.
type chartMode int

const (
	chartRSS chartMode = iota
	chartProcs
)

// sortMode selects the process table ordering.
type sortMode int

const (
	sortCPU sortMode = iota
	sortRSS
	sortPID
)

func sortName(m sortMode) string {
	switch m {
	case sortCPU:
		return "cpu"
	case sortRSS:
		return "rss"
	default:
		return "pid"
	}
}

// row is one process with its CPU share since the previous tick.
type row struct {
	proc *proc.Process
	cpu  float64
}

// model is the Bubble Tea model for the live process view.
type model struct {
	enum        *proc.Enumerator
	rows        []row
	selected    int
	refreshRate time.Duration
	sort        sortMode
	chart       chartMode
	scanErr     error

	// CPU time per pid from the previous scan, for percentage deltas.
	prevCPU  map[int]time.Duration
	prevTick time.Time

	sum         telemetry.ScanSummary
	timeHistory *stats.Ring
	rssHistory  *stats.Ring
	procHistory *stats.Ring

	width  int
	height int

	showDetail bool
	detailRow  row

	statusMsg    string
	statusExpiry time.Time
}

// tickMsg fires on every refresh interval.
type tickMsg time.Time

// statusClearMsg clears the status message.
type statusClearMsg struct{}

// Run starts the Bubble Tea live view.
func Run(e *proc.Enumerator, refreshRate time.Duration) error {
	m := model{
		enum:        e,
		refreshRate: refreshRate,
		prevCPU:     make(map[int]time.Duration),
		timeHistory: stats.NewRing(historySize),
		rssHistory:  stats.NewRing(historySize),
		procHistory: stats.NewRing(historySize),
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(time.Millisecond), tea.EnterAltScreen)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m.handleTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusClearMsg:
		m.statusMsg = ""
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys.
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	// Detail overlay keys.
	if m.showDetail {
		switch key {
		case "esc", "enter":
			m.showDetail = false
		}
		return m, nil
	}

	switch key {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}

	case "tab":
		if m.chart == chartRSS {
			m.chart = chartProcs
		} else {
			m.chart = chartRSS
		}

	case "enter":
		if len(m.rows) > 0 {
			m.showDetail = true
			m.detailRow = m.rows[m.selected]
		}

	case "s":
		m.sort = (m.sort + 1) % 3
		m.statusMsg = "sorting by " + sortName(m.sort)
		m.statusExpiry = time.Now().Add(2 * time.Second)
		return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg {
			return statusClearMsg{}
		})

	case "t":
		return m.sendSignal("SIGTERM", syscall.SIGTERM)
	case "x":
		return m.sendSignal("SIGKILL", syscall.SIGKILL)
	case "z":
		return m.sendSignal("SIGSTOP", syscall.SIGSTOP)
	case "c":
		return m.sendSignal("SIGCONT", syscall.SIGCONT)
	}

	return m, nil
}

func (m model) sendSignal(name string, sig syscall.Signal) (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	target := m.rows[m.selected].proc
	if err := target.Signal(sig); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %s", err)
	} else {
		m.statusMsg = fmt.Sprintf("%s sent to %s", name, target)
	}
	m.statusExpiry = time.Now().Add(3 * time.Second)
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

func (m model) handleTick() (tea.Model, tea.Cmd) {
	started := time.Now()
	procs, err := m.enum.Enumerate()
	if err != nil {
		// Keep showing the previous snapshot.
		m.scanErr = err
		return m, tickCmd(m.refreshRate)
	}
	m.scanErr = nil
	scanTime := time.Since(started)

	elapsed := started.Sub(m.prevTick).Seconds()
	prev := m.prevCPU
	m.prevCPU = make(map[int]time.Duration, len(procs))
	rows := make([]row, 0, len(procs))
	for _, p := range procs {
		a := p.Attributes()
		m.prevCPU[p.PID()] = a.CPUTime
		var cpu float64
		if last, ok := prev[p.PID()]; ok && elapsed > 0 && a.CPUTime > last {
			cpu = (a.CPUTime - last).Seconds() / elapsed * 100
		}
		rows = append(rows, row{proc: p, cpu: cpu})
	}
	m.prevTick = started
	m.rows = sortRows(rows, m.sort)

	m.sum = telemetry.Summarize(procs, m.enum.Races(), scanTime)
	m.timeHistory.Push(float64(started.Unix()))
	m.rssHistory.Push(float64(m.sum.RSSTotal))
	m.procHistory.Push(float64(m.sum.Total))

	// Clamp selection.
	if m.selected >= len(m.rows) {
		m.selected = max(0, len(m.rows)-1)
	}

	// Clear expired status message.
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
	}

	return m, tickCmd(m.refreshRate)
}

func sortRows(rows []row, mode sortMode) []row {
	switch mode {
	case sortCPU:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].cpu > rows[j].cpu })
	case sortRSS:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].proc.Attributes().RSS > rows[j].proc.Attributes().RSS
		})
	case sortPID:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].proc.PID() < rows[j].proc.PID()
		})
	}
	return rows
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

const chartHeight = 7

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Header.
	header := titleStyle.Render(fmt.Sprintf(
		"goproc — %d processes — rss %s — scan %dms — races %d/%d",
		m.sum.Total,
		display.FormatBytes(m.sum.RSSTotal),
		m.sum.ScanDuration.Milliseconds(),
		m.sum.ListingRaces, m.sum.SecondaryRaces,
	))
	b.WriteString(header)
	b.WriteString("\n\n")

	// Process table.
	b.WriteString(m.renderTable())
	b.WriteString("\n")

	// Status message.
	if m.scanErr != nil {
		b.WriteString(stateZombie.Render(fmt.Sprintf("scan error: %s", m.scanErr)))
		b.WriteString("\n")
	} else if m.statusMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(m.statusMsg))
		b.WriteString("\n")
	}

	// History chart pane.
	chartTitle := " History (total rss) "
	if m.chart == chartProcs {
		chartTitle = " History (process count) "
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Render(chartTitle) + "\n")
	chartWidth := max(m.width-4, 20)
	b.WriteString(chartStyle.Width(chartWidth).Render(m.renderChart()))
	b.WriteString("\n")

	// Help bar.
	help := helpStyle.Render(
		"[t]erm  [x] kill  [z] stop  [c]ont  [s]ort  [tab] chart  [↑↓] nav  [enter] detail  [q] quit",
	)
	b.WriteString(help)

	// Detail overlay.
	if m.showDetail {
		overlay := m.renderDetail()
		return m.overlayCenter(b.String(), overlay)
	}

	return b.String()
}

// tableCapacity computes how many process rows fit above the chart pane.
func (m model) tableCapacity() int {
	// header(2) + table title(1) + table header(2) + blank(1) +
	// chart title(1) + chart border(2) + chart rows + help(1)
	overhead := 10 + chartHeight
	if m.statusMsg != "" || m.scanErr != nil {
		overhead++
	}
	c := m.height - overhead
	if c < 3 {
		c = 3
	}
	return c
}

// renderTable renders the scrollable process table.
func (m model) renderTable() string {
	headers := []string{"PID", "State", "Name", "CPU", "RSS", "Uptime", "Command"}

	capacity := m.tableCapacity()
	start := 0
	if m.selected >= capacity {
		start = m.selected - capacity + 1
	}
	end := min(start+capacity, len(m.rows))

	type tableRow struct {
		cols  []string
		state string
		index int
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	var rows []tableRow
	for i := start; i < end; i++ {
		r := m.rows[i]
		a := r.proc.Attributes()

		cmd := display.Truncate(strings.Join(a.Cmdline, " "), 40)
		if cmd == "" {
			cmd = "[" + a.Comm + "]"
		}
		uptime := "-"
		if rt := r.proc.Runtime(); rt > 0 {
			uptime = display.FormatDuration(rt)
		}
		cols := []string{
			fmt.Sprintf("%d", r.proc.PID()),
			a.StateName,
			display.Truncate(a.ExeName(), 20),
			fmt.Sprintf("%.1f%%", r.cpu),
			display.FormatBytes(a.RSS),
			uptime,
			cmd,
		}
		for ci, c := range cols {
			if len(c) > widths[ci] {
				widths[ci] = len(c)
			}
		}
		rows = append(rows, tableRow{cols: cols, state: a.StateName, index: i})
	}

	var sb strings.Builder
	title := fmt.Sprintf(" Processes (by %s)", sortName(m.sort))
	if start > 0 || end < len(m.rows) {
		title += fmt.Sprintf("  %d-%d of %d", start+1, end, len(m.rows))
	}
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Render(title) + "\n")

	// Header row.
	var headerParts []string
	for i, h := range headers {
		headerParts = append(headerParts, fmt.Sprintf("%-*s", widths[i], h))
	}
	sb.WriteString(" " + lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Render(strings.Join(headerParts, "  ")) + "\n")

	// Separator.
	totalWidth := 0
	for _, w := range widths {
		totalWidth += w
	}
	totalWidth += (len(widths) - 1) * 2 // account for column gaps
	sb.WriteString(" " + lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render(strings.Repeat("─", totalWidth)) + "\n")

	// Data rows.
	for _, r := range rows {
		// Build row manually so the state color is preserved.
		var parts []string
		for ci, c := range r.cols {
			if ci == 1 {
				// State column: pad the visible width, not the ANSI-laden string.
				padding := widths[ci] - len(c)
				if padding < 0 {
					padding = 0
				}
				parts = append(parts, colorState(r.state, c)+strings.Repeat(" ", padding))
			} else {
				parts = append(parts, fmt.Sprintf("%-*s", widths[ci], c))
			}
		}
		line := strings.Join(parts, "  ")
		if r.index == m.selected {
			line = selectedStyle.Render(line)
		}
		sb.WriteString(" " + line + "\n")
	}

	if len(rows) == 0 {
		sb.WriteString(lipgloss.NewStyle().Faint(true).Render("  Scanning...") + "\n")
	}

	return sb.String()
}

// colorState applies the appropriate color to a state name.
func colorState(state, text string) string {
	switch state {
	case "running":
		return stateRunning.Render(text)
	case "stopped", "tracing stop":
		return stateStopped.Render(text)
	case "zombie", "dead":
		return stateZombie.Render(text)
	default:
		return text
	}
}

// renderChart plots the selected history ring as a braille chart.
func (m model) renderChart() string {
	times := m.timeHistory.Values()
	if len(times) < 2 {
		return helpStyle.Render("collecting samples...")
	}

	var vals stats.List
	var name string
	var yfmt func(float64) string
	if m.chart == chartRSS {
		vals = m.rssHistory.Values()
		name = "rss"
		yfmt = display.FormatMemoryAxis
	} else {
		vals = m.procHistory.Values()
		name = "processes"
		yfmt = display.FormatCountAxis
	}

	points := make([]display.ChartPoint, len(vals))
	for i := range vals {
		points[i] = display.ChartPoint{Time: int64(times[i]), Value: vals[i]}
	}

	var sb strings.Builder
	display.RenderChart(&sb, display.ChartConfig{
		Label:      name,
		Width:      max(m.width-22, 20),
		Height:     chartHeight - 3,
		Color:      display.CGreen,
		YFormatter: yfmt,
	}, points)
	return strings.TrimRight(sb.String(), "\n")
}

// renderDetail renders the attribute overlay for the selected process.
func (m model) renderDetail() string {
	p := m.detailRow.proc
	a := p.Attributes()
	var sb strings.Builder

	kvLine := func(key, val string) {
		sb.WriteString(fmt.Sprintf("  %-14s %s\n", key+":", val))
	}

	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Render("  Process Detail") + "\n")
	sb.WriteString(strings.Repeat("─", 48) + "\n")
	kvLine("Name", a.ExeName())
	kvLine("PID", fmt.Sprintf("%d", p.PID()))
	kvLine("PPID", fmt.Sprintf("%d", p.PPID()))
	kvLine("PGRP", fmt.Sprintf("%d", p.PGRP()))
	kvLine("Session", fmt.Sprintf("%d", p.Session()))
	kvLine("State", fmt.Sprintf("%s (%s)", a.State, a.StateName))
	if len(a.Cmdline) > 0 {
		kvLine("Command", display.Truncate(strings.Join(a.Cmdline, " "), 44))
	}
	if exe := a.ExePath(); exe != "" {
		kvLine("Exe", display.Truncate(exe, 44))
	}
	if !a.StartTime.IsZero() {
		kvLine("Started", a.StartTime.Format("2006-01-02 15:04:05"))
		kvLine("Uptime", display.FormatDuration(p.Runtime()))
	}
	kvLine("CPU", fmt.Sprintf("%.1f%%", m.detailRow.cpu))
	kvLine("CPU Time", display.FormatCPUTime(a.CPUTime))
	kvLine("RSS", display.FormatBytes(a.RSS))
	kvLine("Virtual", display.FormatBytes(a.VSize))
	kvLine("Nice", fmt.Sprintf("%d", a.Nice))
	kvLine("UID", fmt.Sprintf("%d", a.UserIDs.Real))
	kvLine("GID", fmt.Sprintf("%d", a.GroupIDs.Real))
	kvLine("Env Vars", fmt.Sprintf("%d", len(a.Environ)))
	if a.Partial {
		kvLine("Partial", "yes")
	}
	if !p.IsAlive() {
		kvLine("Alive", stateZombie.Render("no, process has exited"))
	}

	sb.WriteString(strings.Repeat("─", 48) + "\n")
	sb.WriteString(helpStyle.Render("  Press [esc] or [enter] to close"))

	return sb.String()
}

// overlayCenter places an overlay panel in the center of the base view.
func (m model) overlayCenter(base, overlay string) string {
	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := 0
	for _, l := range overlayLines {
		if lipgloss.Width(l) > overlayWidth {
			overlayWidth = lipgloss.Width(l)
		}
	}
	overlayWidth += 4 // padding

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Width(overlayWidth)

	box := boxStyle.Render(overlay)
	boxLines := strings.Split(box, "\n")
	boxHeight := len(boxLines)
	boxWidth := lipgloss.Width(box)

	baseLines := strings.Split(base, "\n")

	// Vertical centering.
	startY := (m.height - boxHeight) / 2
	if startY < 0 {
		startY = 0
	}
	// Horizontal centering.
	startX := (m.width - boxWidth) / 2
	if startX < 0 {
		startX = 0
	}

	// Extend base lines if needed.
	for len(baseLines) < startY+boxHeight {
		baseLines = append(baseLines, "")
	}

	for i, boxLine := range boxLines {
		y := startY + i
		if y >= len(baseLines) {
			break
		}
		baseLine := baseLines[y]
		baseVisWidth := lipgloss.Width(baseLine)

		// Build replacement line: [left of base] [box line] [right of base]
		var result strings.Builder
		if startX > 0 {
			if baseVisWidth >= startX {
				// Truncate base to startX visible characters.
				result.WriteString(truncateVisual(baseLine, startX))
			} else {
				result.WriteString(baseLine)
				result.WriteString(strings.Repeat(" ", startX-baseVisWidth))
			}
		}
		result.WriteString(boxLine)

		baseLines[y] = result.String()
	}

	// Trim to terminal height.
	if len(baseLines) > m.height {
		baseLines = baseLines[:m.height]
	}

	return strings.Join(baseLines, "\n")
}

// truncateVisual truncates a string to n visible characters (best effort).
func truncateVisual(s string, n int) string {
	if n <= 0 {
		return ""
	}
	// Simple rune-based truncation; ignores ANSI widths for simplicity.
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
