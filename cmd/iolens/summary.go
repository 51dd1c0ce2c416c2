package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sanspareilsmyn/iolens/internal/grapher"
	"github.com/sanspareilsmyn/iolens/internal/holder"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// summaryTable renders one row per file under t plus a totals row.
func summaryTable(h *holder.DataHolder, t trace.AccessType, maxName int) (string, error) {
	perFile, err := h.Summary(t)
	if err != nil {
		return "", err
	}
	total, err := h.Totals(t)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(perFile))
	for name := range perFile {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names)+1)
	for _, name := range names {
		rows = append(rows, summaryRow(grapher.ElideText(name, maxName), perFile[name]))
	}
	rows = append(rows, summaryRow(fmt.Sprintf("total (%d files)", len(names)), total))
	last := len(rows) - 1

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.String(), "ops", "size (kiB)", "duration (ms)", "extent (kiB)", "kiB/s").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return headerStyle
			case last:
				return totalStyle
			}
			return cellStyle
		})
	return tbl.String(), nil
}

func summaryRow(label string, s holder.Summary) []string {
	throughput := "n/a"
	if s.TotalDuration > 0 {
		throughput = strconv.FormatFloat(s.TotalSize/s.TotalDuration*1000, 'f', 1, 64)
	}
	return []string{
		label,
		strconv.Itoa(s.OpCount),
		strconv.FormatFloat(s.TotalSize, 'f', 1, 64),
		strconv.FormatFloat(s.TotalDuration, 'f', 3, 64),
		strconv.FormatFloat(s.MaxExtent, 'f', 1, 64),
		throughput,
	}
}
