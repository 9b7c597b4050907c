package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Floor is a Spiral Abyss floor number.
type Floor int

// The floors tracked by the utilization statistics.
const (
	Floor9  Floor = 9
	Floor10 Floor = 10
	Floor11 Floor = 11
	Floor12 Floor = 12
)

// Floors lists the tracked floors in display order.
var Floors = []Floor{Floor9, Floor10, Floor11, Floor12}

// Column returns the table column label for the floor, e.g. "Floor 9".
func (f Floor) Column() string {
	return "Floor " + strconv.Itoa(int(f))
}

// Valid reports whether f is one of the tracked floors.
func (f Floor) Valid() bool {
	for _, known := range Floors {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFloor accepts either a column label ("Floor 10") or a bare number ("10").
func ParseFloor(s string) (Floor, error) {
	raw := strings.TrimSpace(s)
	if len(raw) >= 5 && strings.EqualFold(raw[:5], "floor") {
		raw = strings.TrimSpace(raw[5:])
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid floor %q", s)
	}
	f := Floor(n)
	if !f.Valid() {
		return 0, fmt.Errorf("unknown floor %d", n)
	}
	return f, nil
}
