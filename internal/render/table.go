package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jwulff/abyss-go/internal/abyss"
	"github.com/jwulff/abyss-go/internal/domain"
)

// MissingRate is shown for a floor the character was not used on.
const MissingRate = "-"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#00CED1"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6495ED"))
)

// FormatRate formats a floor rate as a percentage.
func FormatRate(row domain.UtilizationRow, floor domain.Floor) string {
	rate, ok := row.Rate(floor)
	if !ok {
		return MissingRate
	}
	return fmt.Sprintf("%.2f%%", rate*100)
}

// TableCells returns the header and the string cells of rows in
// domain.UtilizationTable column order.
func TableCells(rows []domain.UtilizationRow) ([]string, [][]string) {
	headers := domain.UtilizationTable{}.Columns()
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := []string{strconv.Itoa(row.Schedule), row.Name}
		for _, f := range domain.Floors {
			line = append(line, FormatRate(row, f))
		}
		cells = append(cells, line)
	}
	return headers, cells
}

// TerminalTable renders the table sorted by a floor for a terminal. limit
// <= 0 shows every row.
func TerminalTable(t domain.UtilizationTable, floor domain.Floor, limit int) string {
	rows := abyss.TopN(abyss.SortByFloor(t.Rows, floor), limit)
	headers, cells := TableCells(rows)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
