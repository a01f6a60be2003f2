package chart

import (
	"math"

	"github.com/starford/daivaya/internal/ephemeris"
)

// MansionWidth is the arc of one lunar mansion, 13°20'.
const MansionWidth = 360.0 / 27

var mansionNames = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni",
	"Hasta", "Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha",
	"Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha",
	"Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

// MansionName returns the name of the mansion at index i (0..26).
func MansionName(i int) string {
	if i < 0 || i >= len(mansionNames) {
		return ""
	}
	return mansionNames[i]
}

// MansionIndex resolves a mansion name to its index, or -1.
func MansionIndex(name string) int {
	for i, n := range mansionNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Mansion is the Moon's lunar mansion with its quarter and the fraction of
// the mansion already traversed.
type Mansion struct {
	Index   int            `json:"index"`
	Name    string         `json:"name"`
	Pada    int            `json:"pada"`
	Lord    ephemeris.Body `json:"lord"`
	Elapsed float64        `json:"elapsed"`
}

// MansionOf places a sidereal Moon longitude in its mansion.
func MansionOf(moon float64) Mansion {
	moon = ephemeris.Normalize(moon)
	idx := int(math.Floor(moon / MansionWidth))
	if idx > 26 {
		idx = 26
	}
	rem := moon - float64(idx)*MansionWidth
	if rem < 0 {
		rem = 0
	}

	pada := int(math.Floor(rem/(MansionWidth/4))) + 1
	pada = min(max(pada, 1), 4)

	elapsed := rem / MansionWidth
	if elapsed >= 1 {
		elapsed = math.Nextafter(1, 0)
	}

	return Mansion{
		Index:   idx,
		Name:    mansionNames[idx],
		Pada:    pada,
		Lord:    dashaOrder[idx%len(dashaOrder)],
		Elapsed: elapsed,
	}
}
