package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#64b5f6")
	colorMuted   = lipgloss.Color("#888888")

	styleHeader = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
)

func style(s lipgloss.Style) lipgloss.Style {
	if flagNoColor {
		return lipgloss.NewStyle()
	}
	return s
}

// table renders aligned columns with a styled header row.
type table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func newTable(headers ...string) *table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &table{headers: headers, widths: widths}
}

func (t *table) addRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		if len(row[i]) > t.widths[i] {
			t.widths[i] = len(row[i])
		}
	}
	t.rows = append(t.rows, row)
}

func (t *table) render() string {
	var sb strings.Builder
	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(style(styleHeader).Render(pad(h, t.widths[i])))
	}
	sb.WriteString("\n")
	for i, w := range t.widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(style(styleMuted).Render(strings.Repeat("─", w)))
	}
	sb.WriteString("\n")
	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(pad(cell, t.widths[i]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, style(styleHeader).Render(title))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
