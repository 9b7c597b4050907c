package domain

import (
	"fmt"
	"strconv"
	"time"
)

// UIDPrefixLen is the number of leading UID digits used to bucket uploads.
const UIDPrefixLen = 3

// UploadRecord is a single abyss upload.
type UploadRecord struct {
	UID        string
	UploadTime time.Time
	Uploader   Uploader
}

// Prefix returns the integer value of the first UIDPrefixLen characters of the UID.
func (r UploadRecord) Prefix() (int, error) {
	if len(r.UID) < UIDPrefixLen {
		return 0, fmt.Errorf("uid %q shorter than %d characters", r.UID, UIDPrefixLen)
	}
	n, err := strconv.Atoi(r.UID[:UIDPrefixLen])
	if err != nil {
		return 0, fmt.Errorf("uid %q has non-numeric prefix: %w", r.UID, err)
	}
	return n, nil
}

// Uploader is the client application that submitted a record.
type Uploader string

const (
	UploaderSnapHutao         Uploader = "Snap Hutao"
	UploaderSnapHutaoBookmark Uploader = "Snap Hutao Bookmark"
	UploaderMiaoPlugin        Uploader = "miao-plugin"
)

// Uploaders lists the known uploaders in trace order.
var Uploaders = []Uploader{UploaderSnapHutao, UploaderSnapHutaoBookmark, UploaderMiaoPlugin}

// UploaderColors are the marker colors for each known uploader.
var UploaderColors = map[Uploader]RGB{
	UploaderSnapHutao:         NewRGB(239, 85, 59),
	UploaderSnapHutaoBookmark: NewRGB(0, 204, 150),
	UploaderMiaoPlugin:        NewRGB(99, 110, 250),
}

// Known reports whether u is one of Uploaders.
func (u Uploader) Known() bool {
	_, ok := UploaderColors[u]
	return ok
}

// Region is a server region derived from the leading UID digit.
type Region struct {
	Key    string // Dropdown label
	Title  string // Chart title suffix
	Digits string // Leading UID digits that belong to the region
}

// Regions lists the server regions in trace order.
var Regions = []Region{
	{Key: "China", Title: "Mainland China", Digits: "12"},
	{Key: "bilibili", Title: "bilibili @ Mainland China", Digits: "5"},
	{Key: "America", Title: "America", Digits: "6"},
	{Key: "EU", Title: "Europe", Digits: "7"},
	{Key: "Asia", Title: "Asia", Digits: "8"},
	{Key: "TW/HK/MO", Title: "Taiwan/Hong Kong/Macau", Digits: "9"},
}

// RegionOf returns the region that a UID prefix belongs to, keyed on the
// prefix's hundreds digit.
func RegionOf(prefix int) (Region, bool) {
	if prefix < 0 || prefix >= 1000 {
		return Region{}, false
	}
	lead := rune('0' + prefix/100)
	for _, r := range Regions {
		for _, d := range r.Digits {
			if lead == d {
				return r, true
			}
		}
	}
	return Region{}, false
}
