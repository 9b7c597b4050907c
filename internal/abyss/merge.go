// Package abyss reshapes raw Spiral Abyss statistics into the tables the
// charts and the dashboard display.
package abyss

import (
	"sort"
	"strconv"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/homa"
)

// MergeResult is the merged table plus the item ids that had no name.
type MergeResult struct {
	Table   domain.UtilizationTable
	Unknown []int
}

// MergeFloors joins per-floor ranks into one row per item. Each floor's ranks
// are taken in ascending item order; the first floor that lists an item
// creates its row and later floors fill in their columns. Floors outside
// domain.Floors are ignored. Items missing from names are labeled with their
// numeric id and reported in Unknown.
func MergeFloors(schedule int, floors []homa.FloorRanks, names map[int]string) MergeResult {
	rows := make(map[int]*domain.UtilizationRow)
	unknown := make(map[int]struct{})

	for _, floor := range floors {
		f := domain.Floor(floor.Floor)
		if !f.Valid() {
			continue
		}

		ranks := make([]homa.ItemRate, len(floor.Ranks))
		copy(ranks, floor.Ranks)
		sort.SliceStable(ranks, func(i, j int) bool {
			return ranks[i].Item < ranks[j].Item
		})

		for _, rank := range ranks {
			row, ok := rows[rank.Item]
			if !ok {
				row = &domain.UtilizationRow{
					Schedule: schedule,
					Item:     rank.Item,
					Name:     lookupName(rank.Item, names, unknown),
					Rates:    make(map[domain.Floor]float64, len(domain.Floors)),
				}
				rows[rank.Item] = row
			}
			row.Rates[f] = rank.Rate
		}
	}

	result := MergeResult{
		Table: domain.UtilizationTable{
			Schedule: schedule,
			Rows:     make([]domain.UtilizationRow, 0, len(rows)),
		},
	}
	for _, row := range rows {
		result.Table.Rows = append(result.Table.Rows, *row)
	}
	sort.Slice(result.Table.Rows, func(i, j int) bool {
		return result.Table.Rows[i].Item < result.Table.Rows[j].Item
	})

	for id := range unknown {
		result.Unknown = append(result.Unknown, id)
	}
	sort.Ints(result.Unknown)
	return result
}

func lookupName(item int, names map[int]string, unknown map[int]struct{}) string {
	if item == domain.TravelerID {
		return domain.TravelerName
	}
	if name, ok := names[item]; ok {
		return name
	}
	unknown[item] = struct{}{}
	return strconv.Itoa(item)
}

// SortByFloor returns the rows ordered by the floor's rate, highest first.
// Ties keep ascending item order and rows without a rate on the floor go last.
func SortByFloor(rows []domain.UtilizationRow, floor domain.Floor) []domain.UtilizationRow {
	sorted := make([]domain.UtilizationRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, iok := sorted[i].Rate(floor)
		rj, jok := sorted[j].Rate(floor)
		if iok != jok {
			return iok
		}
		if ri != rj {
			return ri > rj
		}
		return sorted[i].Item < sorted[j].Item
	})
	return sorted
}

// TopN returns the first n rows. n <= 0 returns every row.
func TopN(rows []domain.UtilizationRow, n int) []domain.UtilizationRow {
	if n <= 0 || n > len(rows) {
		n = len(rows)
	}
	top := make([]domain.UtilizationRow, n)
	copy(top, rows[:n])
	return top
}

// Page returns the 1-based page of rows with size rows per page and the
// total page count. Out-of-range pages are clamped.
func Page(rows []domain.UtilizationRow, page, size int) ([]domain.UtilizationRow, int) {
	if size <= 0 {
		return rows, 1
	}
	pages := (len(rows) + size - 1) / size
	if pages == 0 {
		return nil, 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], pages
}
