// Package report renders run summaries for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("#444466"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	Failed = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ff4444"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

// Row is one label/value line of a summary.
type Row struct {
	Label string
	Value string
}

// Summary renders a titled panel of aligned rows.
func Summary(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Label))
	}

	var b strings.Builder
	b.WriteString(Header.Render(title))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(Label.Render(fmt.Sprintf("%-*s", width, r.Label)))
		b.WriteString("  ")
		b.WriteString(Value.Render(r.Value))
	}
	return Panel.Render(b.String())
}

// MetricRows lists metrics sorted by name.
func MetricRows(m map[string]float64) []Row {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]Row, len(names))
	for i, name := range names {
		rows[i] = Row{Label: name, Value: fmt.Sprintf("%.6g", m[name])}
	}
	return rows
}

// Mask draws a rank-2 boolean mask, '#' for set elements.
func Mask(mask []bool, rows, cols int) string {
	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if mask[r*cols+c] {
				b.WriteString("#")
			} else {
				b.WriteString(Subtle.Render("."))
			}
		}
		if r < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
