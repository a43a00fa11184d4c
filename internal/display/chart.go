package display

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ChartPoint is a single (timestamp, value) sample.
type ChartPoint struct {
	Time  int64 // Unix seconds
	Value float64
}

// ChartConfig configures RenderChart.
type ChartConfig struct {
	Label      string               // caption under the time axis
	Width      int                  // character columns for plot area (default 60)
	Height     int                  // character rows for plot area (default 15)
	Color      string               // ANSI color for the line (default cyan)
	YFormatter func(float64) string // custom Y-axis label formatter
}

// brailleCanvas is a 2D grid of braille dot-pixels.
// Each character cell is 2 columns × 4 rows of sub-pixels.
// (0,0) is top-left. x ∈ [0, width*2), y ∈ [0, height*4).
type brailleCanvas struct {
	width  int       // in characters
	height int       // in characters
	dots   [][]uint8 // [height][width] accumulated braille bitmasks
}

func newBrailleCanvas(w, h int) *brailleCanvas {
	dots := make([][]uint8, h)
	for i := range dots {
		dots[i] = make([]uint8, w)
	}
	return &brailleCanvas{width: w, height: h, dots: dots}
}

// set activates a dot at sub-pixel coordinates (px, py).
func (c *brailleCanvas) set(px, py int) {
	if px < 0 || px >= c.width*2 || py < 0 || py >= c.height*4 {
		return
	}
	cx := px / 2
	cy := py / 4
	dx := px % 2 // 0=left, 1=right
	dy := py % 4 // 0=top, 3=bottom

	// Braille dot bit mapping:
	//   Left col (dx=0): rows 0-2 → bits 0-2 (0x01,0x02,0x04), row 3 → bit 6 (0x40)
	//   Right col (dx=1): rows 0-2 → bits 3-5 (0x08,0x10,0x20), row 3 → bit 7 (0x80)
	var bit uint8
	if dx == 0 {
		if dy < 3 {
			bit = 1 << uint(dy)
		} else {
			bit = 0x40
		}
	} else {
		if dy < 3 {
			bit = 1 << uint(dy+3)
		} else {
			bit = 0x80
		}
	}
	c.dots[cy][cx] |= bit
}

// drawLine draws a line between two sub-pixel coordinates using Bresenham's.
func (c *brailleCanvas) drawLine(x0, y0, x1, y1 int) {
	dx := iabs(x1 - x0)
	dy := iabs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// render returns the canvas as a slice of strings (one per row).
func (c *brailleCanvas) render() []string {
	lines := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		var sb strings.Builder
		for x := 0; x < c.width; x++ {
			sb.WriteRune(rune(0x2800 + int(c.dots[y][x])))
		}
		lines[y] = sb.String()
	}
	return lines
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// RenderChart plots one metric's history as a braille line chart with
// gridline labels on the Y axis and timestamps below.
func RenderChart(w io.Writer, cfg ChartConfig, points []ChartPoint) {
	if len(points) == 0 {
		return
	}

	width := cfg.Width
	if width <= 0 {
		width = 60
	}
	height := cfg.Height
	if height <= 0 {
		height = 15
	}

	yMin, yMax := points[0].Value, points[0].Value
	tMin, tMax := points[0].Time, points[0].Time
	for _, p := range points[1:] {
		if p.Value < yMin {
			yMin = p.Value
		}
		if p.Value > yMax {
			yMax = p.Value
		}
		if p.Time < tMin {
			tMin = p.Time
		}
		if p.Time > tMax {
			tMax = p.Time
		}
	}

	// Pad Y range for aesthetics.
	yRange := yMax - yMin
	if yRange == 0 {
		yRange = 1
		yMax = yMin + 1
	}
	pad := yRange * 0.05
	yMin -= pad
	if yMin < 0 {
		yMin = 0
	}
	yMax += pad

	tRange := tMax - tMin
	if tRange == 0 {
		tRange = 1
	}

	pxWidth := width * 2
	pxHeight := height * 4

	canvas := newBrailleCanvas(width, height)
	prevPx, prevPy := -1, -1
	for _, p := range points {
		px := int(float64(p.Time-tMin) / float64(tRange) * float64(pxWidth-1))
		py := int((1.0 - (p.Value-yMin)/(yMax-yMin)) * float64(pxHeight-1))
		if px < 0 {
			px = 0
		}
		if px >= pxWidth {
			px = pxWidth - 1
		}
		if py < 0 {
			py = 0
		}
		if py >= pxHeight {
			py = pxHeight - 1
		}
		if prevPx >= 0 {
			canvas.drawLine(prevPx, prevPy, px, py)
		} else {
			canvas.set(px, py)
		}
		prevPx, prevPy = px, py
	}

	yFmt := cfg.YFormatter
	if yFmt == nil {
		yFmt = func(v float64) string { return fmt.Sprintf("%.1f", v) }
	}
	color := cfg.Color
	if color == "" {
		color = cyan
	}
	yLabelWidth := 8

	for row, line := range canvas.render() {
		label := ""
		switch {
		case row == 0:
			label = yFmt(yMax)
		case row == height/4:
			label = yFmt(yMin + (yMax-yMin)*0.75)
		case row == height/2:
			label = yFmt(yMin + (yMax-yMin)*0.5)
		case row == height*3/4:
			label = yFmt(yMin + (yMax-yMin)*0.25)
		case row == height-1:
			label = yFmt(yMin)
		}
		fmt.Fprintf(w, "  %s %s%s%s%s\n",
			Dim(fmt.Sprintf("%*s", yLabelWidth, label)),
			dim+"│"+reset,
			color, line, reset)
	}

	fmt.Fprintf(w, "  %*s %s\n", yLabelWidth, "", dim+"└"+strings.Repeat("─", width)+reset)
	printTimeAxis(w, tMin, tMax, width, yLabelWidth)

	if cfg.Label != "" {
		fmt.Fprintf(w, "  %*s  %s━━%s %s\n", yLabelWidth, "", color, reset, cfg.Label)
	}
	fmt.Fprintln(w)
}

func printTimeAxis(w io.Writer, tMin, tMax int64, width, yLabelWidth int) {
	numLabels := 5
	if width < 30 {
		numLabels = 3
	}

	// Sub-ten-minute ranges need second resolution to be readable.
	layout := "15:04"
	if tMax-tMin < 600 {
		layout = "15:04:05"
	}

	labels := make([]string, numLabels)
	positions := make([]int, numLabels)
	for i := 0; i < numLabels; i++ {
		ts := tMin + int64(i)*((tMax-tMin)/int64(numLabels-1))
		labels[i] = time.Unix(ts, 0).Format(layout)
		positions[i] = i * width / (numLabels - 1)
	}

	// Build the axis line character by character.
	fmt.Fprintf(w, "  %*s  ", yLabelWidth, "")
	pos := 0
	for i := 0; i < numLabels; i++ {
		gap := positions[i] - pos
		if gap < 0 {
			gap = 0
		}
		fmt.Fprint(w, strings.Repeat(" ", gap))
		fmt.Fprint(w, Dim(labels[i]))
		pos = positions[i] + len(labels[i])
	}
	fmt.Fprintln(w)
}

// Predefined Y-axis formatters.

// FormatMemoryAxis formats a byte count for the Y axis.
func FormatMemoryAxis(v float64) string {
	return FormatBytes(int64(v))
}

// FormatCountAxis formats a process count for the Y axis.
func FormatCountAxis(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
