package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/abyss-go/internal/domain"
)

func TestFormatRate(t *testing.T) {
	row := domain.UtilizationRow{Rates: map[domain.Floor]float64{domain.Floor9: 0.4235}}

	assert.Equal(t, "42.35%", FormatRate(row, domain.Floor9))
	assert.Equal(t, MissingRate, FormatRate(row, domain.Floor10))
}

func TestTableCells(t *testing.T) {
	headers, cells := TableCells(testTable().Rows[:1])

	assert.Equal(t, []string{"schedule", "text", "Floor 9", "Floor 10", "Floor 11", "Floor 12"}, headers)
	require.Len(t, cells, 1)
	assert.Equal(t, []string{"86", "a", "10.00%", "-", "-", "90.00%"}, cells[0])
}

func TestTerminalTable(t *testing.T) {
	out := TerminalTable(testTable(), domain.Floor9, 2)

	assert.Contains(t, out, "Floor 12")
	assert.Contains(t, out, "50.00%")
	assert.NotContains(t, out, "10.00%")
	assert.Less(t, strings.Index(out, "50.00%"), strings.Index(out, "30.00%"))
}
