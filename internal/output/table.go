// Package output renders engine Results to the REPL: aligned tables for row
// sets, and the "System has been error. <msg>" line for failures (spec.md
// §6).
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderRows draws a bordered, column-aligned table over cols/rows. An empty
// row set still renders the header so the caller can see which columns an
// empty result carries.
func RenderRows(cols []string, rows []map[string]any) string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(cols))
		for j, c := range cols {
			s := formatCell(row[c])
			cells[i][j] = s
			if len(s) > widths[j] {
				widths[j] = len(s)
			}
		}
	}

	var b strings.Builder
	b.WriteString(borderStyle.Render(rule(widths)))
	b.WriteByte('\n')
	b.WriteString(rowLine(headerLine(cols, widths)))
	b.WriteByte('\n')
	b.WriteString(borderStyle.Render(rule(widths)))
	b.WriteByte('\n')
	for _, row := range cells {
		b.WriteString(rowLine(padRow(row, widths)))
		b.WriteByte('\n')
	}
	b.WriteString(borderStyle.Render(rule(widths)))
	return b.String()
}

func headerLine(cols []string, widths []int) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = headerStyle.Render(pad(c, widths[i]))
	}
	return out
}

func padRow(cells []string, widths []int) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = pad(c, widths[i])
	}
	return out
}

func rowLine(cells []string) string {
	return borderStyle.Render("| ") + strings.Join(cells, borderStyle.Render(" | ")) + borderStyle.Render(" |")
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func rule(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

// ErrorLine formats a failed statement's error per spec.md §6.
func ErrorLine(err error) string {
	return fmt.Sprintf("System has been error. %s", err)
}
