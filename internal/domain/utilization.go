package domain

// Column names of the utilization table, in display order.
const (
	ColumnSchedule = "schedule"
	ColumnText     = "text"
)

// TravelerID is the item id of the player character, which the name
// dictionary does not list.
const TravelerID = 10000005

// TravelerName is the localized name shown for TravelerID.
const TravelerName = "旅行者"

// UtilizationRow is one character's utilization rate on each floor.
type UtilizationRow struct {
	Schedule int
	Item     int
	Name     string
	Rates    map[Floor]float64
}

// Rate returns the rate for a floor and whether the floor had a rate.
func (r UtilizationRow) Rate(f Floor) (float64, bool) {
	if r.Rates == nil {
		return 0, false
	}
	rate, ok := r.Rates[f]
	return rate, ok
}

// UtilizationTable is the merged per-floor table for one schedule.
type UtilizationTable struct {
	Schedule int
	Rows     []UtilizationRow
}

// Columns returns the column labels of the table.
func (t UtilizationTable) Columns() []string {
	cols := []string{ColumnSchedule, ColumnText}
	for _, f := range Floors {
		cols = append(cols, f.Column())
	}
	return cols
}

// Records returns one map per row keyed by Columns. Missing floor rates are nil.
func (t UtilizationTable) Records() []map[string]any {
	records := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := map[string]any{
			ColumnSchedule: row.Schedule,
			ColumnText:     row.Name,
		}
		for _, f := range Floors {
			if rate, ok := row.Rate(f); ok {
				rec[f.Column()] = rate
			} else {
				rec[f.Column()] = nil
			}
		}
		records = append(records, rec)
	}
	return records
}

// Len returns the number of rows.
func (t UtilizationTable) Len() int {
	return len(t.Rows)
}

// OverviewStat is the upload summary of one schedule.
type OverviewStat struct {
	ScheduleID          int `json:"ScheduleId"`
	SpiralAbyssTotal    int `json:"SpiralAbyssTotal"`
	SpiralAbyssFullStar int `json:"SpiralAbyssFullStar"`
}
