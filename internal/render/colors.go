package render

import "github.com/jwulff/abyss-go/internal/domain"

// Chart colors.
var (
	ColorBlack = domain.NewRGB(0, 0, 0)

	// Schedule bar series
	ColorDarkCyan       = domain.NewRGB(0, 139, 139)
	ColorCornflowerBlue = domain.NewRGB(100, 149, 237)

	// Utilization gradient, most used to least used
	ColorRateHigh = domain.NewRGB(239, 85, 59)
	ColorRateLow  = domain.NewRGB(99, 110, 250)

	// UID group counts
	ColorPrefixBar = domain.NewRGB(0, 204, 150)
)

// LerpColor linearly interpolates between two colors.
func LerpColor(a, b domain.RGB, t float64) domain.RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return domain.NewRGB(
		uint8(float64(a.R)+t*float64(int(b.R)-int(a.R))),
		uint8(float64(a.G)+t*float64(int(b.G)-int(a.G))),
		uint8(float64(a.B)+t*float64(int(b.B)-int(a.B))),
	)
}

// DimColor reduces the brightness of a color by a factor (0-1).
func DimColor(c domain.RGB, factor float64) domain.RGB {
	if factor <= 0 {
		return ColorBlack
	}
	if factor >= 1 {
		return c
	}
	return domain.NewRGB(
		uint8(float64(c.R)*factor),
		uint8(float64(c.G)*factor),
		uint8(float64(c.B)*factor),
	)
}

// Gradient returns n colors evenly spaced from "from" to "to", inclusive.
// A single color is "from"; n <= 0 returns nil.
func Gradient(from, to domain.RGB, n int) []domain.RGB {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []domain.RGB{from}
	}
	colors := make([]domain.RGB, n)
	for i := range colors {
		colors[i] = LerpColor(from, to, float64(i)/float64(n-1))
	}
	return colors
}

// cssColors converts colors to CSS strings for a plotly marker.
func cssColors(colors []domain.RGB) []string {
	css := make([]string, len(colors))
	for i, c := range colors {
		css[i] = c.CSS()
	}
	return css
}
