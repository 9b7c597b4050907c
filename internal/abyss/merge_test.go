package abyss

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/homa"
)

func testFloors() []homa.FloorRanks {
	return []homa.FloorRanks{
		{Floor: 9, Ranks: []homa.ItemRate{{Item: 10000046, Rate: 0.40}, {Item: 10000002, Rate: 0.30}}},
		{Floor: 10, Ranks: []homa.ItemRate{{Item: 10000002, Rate: 0.50}}},
		{Floor: 12, Ranks: []homa.ItemRate{{Item: 10000005, Rate: 0.10}, {Item: 10000046, Rate: 0.60}}},
	}
}

func testNames() map[int]string {
	return map[int]string{10000002: "神里绫华", 10000046: "胡桃"}
}

func TestMergeFloors(t *testing.T) {
	result := MergeFloors(86, testFloors(), testNames())

	want := []domain.UtilizationRow{
		{Schedule: 86, Item: 10000002, Name: "神里绫华", Rates: map[domain.Floor]float64{domain.Floor9: 0.30, domain.Floor10: 0.50}},
		{Schedule: 86, Item: 10000005, Name: domain.TravelerName, Rates: map[domain.Floor]float64{domain.Floor12: 0.10}},
		{Schedule: 86, Item: 10000046, Name: "胡桃", Rates: map[domain.Floor]float64{domain.Floor9: 0.40, domain.Floor12: 0.60}},
	}
	if diff := cmp.Diff(want, result.Table.Rows); diff != "" {
		t.Errorf("MergeFloors rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 86, result.Table.Schedule)
	assert.Empty(t, result.Unknown)
}

func TestMergeFloorsUnknownNames(t *testing.T) {
	floors := []homa.FloorRanks{
		{Floor: 9, Ranks: []homa.ItemRate{{Item: 10000099, Rate: 0.2}, {Item: 10000002, Rate: 0.1}}},
		{Floor: 11, Ranks: []homa.ItemRate{{Item: 10000099, Rate: 0.4}}},
	}

	result := MergeFloors(1, floors, testNames())

	require.Len(t, result.Table.Rows, 2)
	assert.Equal(t, "10000099", result.Table.Rows[1].Name)
	assert.Equal(t, []int{10000099}, result.Unknown)
}

func TestMergeFloorsIgnoresUnknownFloors(t *testing.T) {
	floors := []homa.FloorRanks{
		{Floor: 8, Ranks: []homa.ItemRate{{Item: 10000002, Rate: 0.9}}},
		{Floor: 9, Ranks: []homa.ItemRate{{Item: 10000046, Rate: 0.3}}},
	}

	result := MergeFloors(1, floors, testNames())

	require.Len(t, result.Table.Rows, 1)
	assert.Equal(t, 10000046, result.Table.Rows[0].Item)
}

func TestMergeFloorsEmpty(t *testing.T) {
	result := MergeFloors(1, nil, nil)

	assert.Empty(t, result.Table.Rows)
	assert.Empty(t, result.Unknown)
}

func TestSortByFloor(t *testing.T) {
	rows := MergeFloors(86, testFloors(), testNames()).Table.Rows

	sorted := SortByFloor(rows, domain.Floor12)

	got := make([]int, 0, len(sorted))
	for _, r := range sorted {
		got = append(got, r.Item)
	}
	// 10000002 has no floor 12 rate and goes last.
	assert.Equal(t, []int{10000046, 10000005, 10000002}, got)
	// Input is not modified.
	assert.Equal(t, 10000002, rows[0].Item)
}

func TestSortByFloorTies(t *testing.T) {
	rows := []domain.UtilizationRow{
		{Item: 3, Rates: map[domain.Floor]float64{domain.Floor9: 0.5}},
		{Item: 1, Rates: map[domain.Floor]float64{domain.Floor9: 0.5}},
		{Item: 2, Rates: map[domain.Floor]float64{domain.Floor9: 0.7}},
	}

	sorted := SortByFloor(rows, domain.Floor9)

	assert.Equal(t, 2, sorted[0].Item)
	assert.Equal(t, 1, sorted[1].Item)
	assert.Equal(t, 3, sorted[2].Item)
}

func TestTopN(t *testing.T) {
	rows := []domain.UtilizationRow{{Item: 1}, {Item: 2}, {Item: 3}}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"two", 2, 2},
		{"zero means all", 0, 3},
		{"negative means all", -1, 3},
		{"larger than rows", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, TopN(rows, tt.n), tt.want)
		})
	}
}

func TestPage(t *testing.T) {
	rows := make([]domain.UtilizationRow, 32)
	for i := range rows {
		rows[i].Item = i
	}

	page, pages := Page(rows, 1, 15)
	assert.Equal(t, 3, pages)
	assert.Len(t, page, 15)
	assert.Equal(t, 0, page[0].Item)

	page, _ = Page(rows, 3, 15)
	assert.Len(t, page, 2)
	assert.Equal(t, 30, page[0].Item)

	page, _ = Page(rows, 99, 15)
	assert.Equal(t, 30, page[0].Item)

	page, _ = Page(rows, 0, 15)
	assert.Equal(t, 0, page[0].Item)

	page, pages = Page(nil, 1, 15)
	assert.Empty(t, page)
	assert.Equal(t, 1, pages)
}
