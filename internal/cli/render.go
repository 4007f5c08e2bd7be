package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	positiveStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	negativeStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Separator is a row value that renders as a horizontal rule.
const Separator = "---"

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// LeftCols is how many leading columns are left-aligned; the rest align right.
	// Zero means one.
	LeftCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// Muted styles secondary text.
func Muted(s string) string { return mutedStyle.Render(s) }

// Warn styles a warning line.
func Warn(s string) string { return warnStyle.Render(s) }

// Money formats an amount, red when negative.
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return negativeStyle.Render(FormatMoney(d))
	}
	return FormatMoney(d)
}

// Delta formats a signed change, green when non-negative and red otherwise.
func Delta(d decimal.Decimal) string {
	if d.IsNegative() {
		return negativeStyle.Render(FormatSignedMoney(d))
	}
	return positiveStyle.Render(FormatSignedMoney(d))
}

func rule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// pad fills a possibly styled cell to width using its printable width.
func pad(cell string, width int, left bool) string {
	gap := max(width-lipgloss.Width(cell), 0)
	if left {
		return " " + cell + strings.Repeat(" ", gap) + " "
	}
	return " " + strings.Repeat(" ", gap) + cell + " "
}

// RenderTable renders a bordered table with headers and rows. Cells may carry
// styling; widths are measured on printable characters.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 {
		for _, row := range t.Rows {
			numCols = max(numCols, len(row))
		}
	}
	if numCols == 0 {
		return ""
	}
	leftCols := max(t.LeftCols, 1)

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == Separator {
			continue
		}
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule(&b, widths, "╭", "┬", "╮")
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(pad(h, widths[i], i < leftCols)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == Separator {
			rule(&b, widths, "├", "┼", "┤")
			continue
		}
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, widths[i], i < leftCols)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}
	rule(&b, widths, "╰", "┴", "╯")

	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := min(float64(current)/float64(total), 1)
	filled := min(int(pct*float64(width)), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d/%d", mutedStyle.Render(bar), current, total)
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline maps values onto block characters between the series min and max,
// so negative balances still render. A flat series renders at the lowest block.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// Downsample keeps at most n evenly spaced values, always including the last one.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	if n == 1 {
		return values[len(values)-1:]
	}
	out := make([]float64, 0, n)
	step := float64(len(values)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, values[int(float64(i)*step+0.5)])
	}
	return out
}

// RenderHorizontalBar renders a bar scaled to maxValue, followed by the label.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return "  " + label
	}
	barLen := max(int(value/maxValue*float64(maxWidth)), 0)
	bar := strings.Repeat("█", min(barLen, maxWidth))
	if value > maxValue {
		return "  " + negativeStyle.Render(bar) + " " + label
	}
	return "  " + positiveStyle.Render(bar) + " " + label
}
