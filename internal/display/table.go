package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/7c/goproc/proc"
)

// Table renders bordered tables for CLI output.
type Table struct {
	headers []string
	rows    [][]string // raw values (no color) for width calculation
	colored [][]string // colored values for rendering
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row to the table. raw values are used for width; colored for display.
func (t *Table) AddRow(cols ...string) {
	for i, c := range cols {
		if i < len(t.widths) && len(c) > t.widths[i] {
			t.widths[i] = len(c)
		}
	}
	t.rows = append(t.rows, cols)
	t.colored = append(t.colored, cols) // default: same as raw
}

// AddColoredRow adds a row with separate raw (for widths) and colored (for display) values.
func (t *Table) AddColoredRow(raw []string, colored []string) {
	for i, c := range raw {
		if i < len(t.widths) && len(c) > t.widths[i] {
			t.widths[i] = len(c)
		}
	}
	t.rows = append(t.rows, raw)
	t.colored = append(t.colored, colored)
}

// Render writes the table to the given writer with dim borders and bold headers.
func (t *Table) Render(w io.Writer) {
	if len(t.rows) == 0 && len(t.headers) == 0 {
		return
	}
	t.line(w, "┌", "┬", "┐")
	t.headerRow(w)
	t.line(w, "├", "┼", "┤")
	for i := range t.rows {
		t.coloredRow(w, t.rows[i], t.colored[i])
	}
	t.line(w, "└", "┴", "┘")
}

func (t *Table) line(w io.Writer, left, mid, right string) {
	fmt.Fprint(w, dim+left)
	for i, width := range t.widths {
		fmt.Fprint(w, strings.Repeat("─", width+2))
		if i < len(t.widths)-1 {
			fmt.Fprint(w, mid)
		}
	}
	fmt.Fprintln(w, right+reset)
}

func (t *Table) headerRow(w io.Writer) {
	fmt.Fprint(w, dim+"│"+reset)
	for i, width := range t.widths {
		h := ""
		if i < len(t.headers) {
			h = t.headers[i]
		}
		fmt.Fprintf(w, " "+bold+"%-*s"+reset+" "+dim+"│"+reset, width, h)
	}
	fmt.Fprintln(w)
}

func (t *Table) coloredRow(w io.Writer, rawCols, colorCols []string) {
	fmt.Fprint(w, dim+"│"+reset)
	for i, width := range t.widths {
		raw := ""
		col := ""
		if i < len(rawCols) {
			raw = rawCols[i]
		}
		if i < len(colorCols) {
			col = colorCols[i]
		}
		// Pad based on raw (visible) length
		padding := width - len(raw)
		if padding < 0 {
			padding = 0
		}
		fmt.Fprintf(w, " %s%*s "+dim+"│"+reset, col, padding, "")
	}
	fmt.Fprintln(w)
}

// RenderProcessList renders one row per process with colored states.
func RenderProcessList(w io.Writer, procs []*proc.Process) {
	tbl := NewTable("PID", "PPID", "State", "Name", "RSS", "CPU", "Uptime", "Command")
	anyPartial := false
	for _, p := range procs {
		a := p.Attributes()

		rawState := a.StateName
		colorState := StateColor(a.StateName)
		if a.Partial {
			anyPartial = true
			rawState += "*"
			colorState += Dim("*")
		}

		rawCmd := Truncate(strings.Join(a.Cmdline, " "), 60)
		colorCmd := rawCmd
		if rawCmd == "" {
			rawCmd = "[" + a.Comm + "]"
			colorCmd = Dim(rawCmd)
		}

		rawUptime := "-"
		uptime := Dim("-")
		if rt := p.Runtime(); rt > 0 {
			rawUptime = FormatDuration(rt)
			uptime = rawUptime
		}

		raw := []string{
			fmt.Sprintf("%d", p.PID()),
			fmt.Sprintf("%d", p.PPID()),
			rawState,
			a.ExeName(),
			FormatBytes(a.RSS),
			FormatCPUTime(a.CPUTime),
			rawUptime,
			rawCmd,
		}
		colored := []string{
			raw[0],
			Dim(raw[1]),
			colorState,
			Bold(a.ExeName()),
			raw[4],
			raw[5],
			uptime,
			colorCmd,
		}
		tbl.AddColoredRow(raw, colored)
	}
	tbl.Render(w)
	if anyPartial {
		fmt.Fprintln(w, Dim("  * incomplete: process data vanished or was denied mid-read"))
	}
}

// RenderDescribe renders one process as a key-value table.
func RenderDescribe(w io.Writer, p *proc.Process) {
	a := p.Attributes()
	tbl := NewTable("Key", "Value")
	addKV := func(k, v string) {
		tbl.AddColoredRow([]string{k, v}, []string{Cyan(k), v})
	}
	addKVc := func(k, rawV, colorV string) {
		tbl.AddColoredRow([]string{k, rawV}, []string{Cyan(k), colorV})
	}

	addKVc("Name", a.ExeName(), Bold(a.ExeName()))
	addKV("PID", fmt.Sprintf("%d", p.PID()))
	addKV("PPID", fmt.Sprintf("%d", p.PPID()))
	addKV("PGRP", fmt.Sprintf("%d", p.PGRP()))
	addKV("Session", fmt.Sprintf("%d", p.Session()))
	rawState := fmt.Sprintf("%s (%s)", a.State, a.StateName)
	addKVc("State", rawState, a.State+" ("+StateColor(a.StateName)+")")
	if len(a.Cmdline) > 0 {
		addKV("Command", strings.Join(a.Cmdline, " "))
	} else {
		addKVc("Command", "-", Dim("-"))
	}
	switch {
	case a.Exe != "":
		addKV("Exe", a.Exe)
	case a.ExePath() != "":
		addKVc("Exe", a.ExePath()+" (from cmdline)", a.ExePath()+Dim(" (from cmdline)"))
	default:
		addKVc("Exe", "-", Dim("-"))
	}
	if !a.StartTime.IsZero() {
		addKV("Started At", a.StartTime.Format("2006-01-02 15:04:05 MST"))
		addKV("Uptime", FormatDuration(p.Runtime()))
	} else {
		addKVc("Started At", "-", Dim("-"))
		addKVc("Uptime", "-", Dim("-"))
	}
	addKV("CPU Time", FormatCPUTime(a.CPUTime))
	addKV("Memory (RSS)", FormatBytes(a.RSS))
	addKV("Virtual", FormatBytes(a.VSize))
	addKV("Nice", fmt.Sprintf("%d", a.Nice))
	addKV("UID", formatIDs(a.UserIDs))
	addKV("GID", formatIDs(a.GroupIDs))
	addKV("Env Vars", fmt.Sprintf("%d", len(a.Environ)))
	if a.Partial {
		addKVc("Partial", "yes", Yellow("yes"))
	}
	tbl.Render(w)
}

// formatIDs collapses an id quadruple to the single common value when
// all four agree, the usual case.
func formatIDs(ids proc.IDs) string {
	if ids.Real == ids.Effective && ids.Real == ids.Saved && ids.Real == ids.FS {
		return fmt.Sprintf("%d", ids.Real)
	}
	return fmt.Sprintf("real=%d effective=%d saved=%d fs=%d",
		ids.Real, ids.Effective, ids.Saved, ids.FS)
}

// RenderUnixSockets lists a process's unix domain socket endpoints.
func RenderUnixSockets(w io.Writer, paths []string) {
	tbl := NewTable("Unix Socket")
	for _, p := range paths {
		tbl.AddRow(p)
	}
	tbl.Render(w)
}
