package abyss

import (
	"sort"
	"time"

	"github.com/jwulff/abyss-go/internal/domain"
)

// RecentScheduleCount is how many schedules the upload bar chart shows.
const RecentScheduleCount = 6

// RecentSchedules returns the n schedules with the highest ids, oldest first.
// Duplicate schedule ids keep the first occurrence.
func RecentSchedules(stats []domain.OverviewStat, n int) []domain.OverviewStat {
	seen := make(map[int]struct{}, len(stats))
	unique := make([]domain.OverviewStat, 0, len(stats))
	for _, s := range stats {
		if _, ok := seen[s.ScheduleID]; ok {
			continue
		}
		seen[s.ScheduleID] = struct{}{}
		unique = append(unique, s)
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].ScheduleID > unique[j].ScheduleID
	})
	if n > 0 && n < len(unique) {
		unique = unique[:n]
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].ScheduleID < unique[j].ScheduleID
	})
	return unique
}

// UploadPoint is one upload placed on the UID/time scatter plot.
type UploadPoint struct {
	Prefix int
	Time   time.Time
}

// UploadGroups buckets uploads by region and uploader.
type UploadGroups struct {
	Points map[string]map[domain.Uploader][]UploadPoint // region key -> uploader -> points
	// Skipped counts records that could not be placed: unparsable UID,
	// unknown region, or unknown uploader.
	Skipped int
}

// Get returns the points for a region and uploader.
func (g UploadGroups) Get(region string, uploader domain.Uploader) []UploadPoint {
	if g.Points == nil {
		return nil
	}
	return g.Points[region][uploader]
}

// GroupUploads buckets upload records by the region of their UID prefix and
// by uploader, preserving record order within each bucket.
func GroupUploads(records []domain.UploadRecord) UploadGroups {
	groups := UploadGroups{Points: make(map[string]map[domain.Uploader][]UploadPoint)}
	for _, rec := range records {
		prefix, err := rec.Prefix()
		if err != nil {
			groups.Skipped++
			continue
		}
		region, ok := domain.RegionOf(prefix)
		if !ok || !rec.Uploader.Known() {
			groups.Skipped++
			continue
		}
		byUploader, ok := groups.Points[region.Key]
		if !ok {
			byUploader = make(map[domain.Uploader][]UploadPoint)
			groups.Points[region.Key] = byUploader
		}
		byUploader[rec.Uploader] = append(byUploader[rec.Uploader], UploadPoint{Prefix: prefix, Time: rec.UploadTime})
	}
	return groups
}

// PrefixCount is the number of uploads sharing a UID prefix.
type PrefixCount struct {
	Prefix int
	Count  int
}

// CountByPrefix counts uploads per UID prefix, ordered by prefix. Prefixes
// outside every region are skipped, as in GroupUploads.
func CountByPrefix(records []domain.UploadRecord) []PrefixCount {
	counts := make(map[int]int)
	for _, rec := range records {
		prefix, err := rec.Prefix()
		if err != nil {
			continue
		}
		if _, ok := domain.RegionOf(prefix); !ok {
			continue
		}
		counts[prefix]++
	}

	result := make([]PrefixCount, 0, len(counts))
	for prefix, count := range counts {
		result = append(result, PrefixCount{Prefix: prefix, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Prefix < result[j].Prefix
	})
	return result
}
