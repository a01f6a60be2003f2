package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/starford/daivaya/internal/apperr"
	"github.com/starford/daivaya/internal/ephemeris"
)

// SolarYear is the Gregorian mean year, 365.2425 days.
const SolarYear = time.Duration(31556952) * time.Second

// CycleYears is the length of one full period cycle.
const CycleYears = 120

// minPeriods covers the partial birth period plus two full cycles.
const minPeriods = 1 + 2*9

var dashaOrder = [9]ephemeris.Body{
	ephemeris.Ketu, ephemeris.Venus, ephemeris.Sun, ephemeris.Moon, ephemeris.Mars,
	ephemeris.Rahu, ephemeris.Jupiter, ephemeris.Saturn, ephemeris.Mercury,
}

var dashaYears = map[ephemeris.Body]int{
	ephemeris.Ketu:    7,
	ephemeris.Venus:   20,
	ephemeris.Sun:     6,
	ephemeris.Moon:    10,
	ephemeris.Mars:    7,
	ephemeris.Rahu:    18,
	ephemeris.Jupiter: 16,
	ephemeris.Saturn:  19,
	ephemeris.Mercury: 17,
}

func init() {
	if err := checkDashaTable(dashaOrder[:], dashaYears); err != nil {
		panic(err)
	}
}

func checkDashaTable(order []ephemeris.Body, years map[ephemeris.Body]int) error {
	if len(order) != 9 {
		return fmt.Errorf("chart: dasha order has %d rulers, want 9", len(order))
	}
	seen := make(map[ephemeris.Body]bool, len(order))
	total := 0
	for _, b := range order {
		if seen[b] {
			return fmt.Errorf("chart: dasha ruler %s listed twice", b)
		}
		seen[b] = true
		y, ok := years[b]
		if !ok || y <= 0 {
			return fmt.Errorf("chart: dasha ruler %s has no allotment", b)
		}
		total += y
	}
	if total != CycleYears {
		return fmt.Errorf("chart: dasha allotments sum to %d, want %d", total, CycleYears)
	}
	return nil
}

// Allotment returns the full period length of ruler in years.
func Allotment(ruler ephemeris.Body) int { return dashaYears[ruler] }

// Period is one Mahadasha: [Start, End).
type Period struct {
	Lord  ephemeris.Body `json:"lord"`
	Start time.Time      `json:"start"`
	End   time.Time      `json:"end"`
}

// Years returns the length of p in solar years.
func (p Period) Years() float64 {
	return float64(p.End.Sub(p.Start)) / float64(SolarYear)
}

// Contains reports whether t falls in [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Dasha is a contiguous, ordered sequence of periods starting at birth.
type Dasha []Period

// NewDasha builds the sequence for a Moon in a mansion ruled by lord with
// the given fraction of the mansion already elapsed at birth.
func NewDasha(lord ephemeris.Body, elapsed float64, birth time.Time) (Dasha, error) {
	start := -1
	for i, b := range dashaOrder {
		if b == lord {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, apperr.New(apperr.ErrComputation, "no dasha allotment for %s", lord)
	}
	if math.IsNaN(elapsed) || elapsed < 0 || elapsed >= 1 {
		return nil, apperr.New(apperr.ErrComputation, "mansion fraction %f out of [0,1)", elapsed)
	}

	balance := time.Duration(math.Round((1 - elapsed) * float64(dashaYears[lord]) * float64(SolarYear)))

	out := make(Dasha, 0, minPeriods)
	out = append(out, Period{Lord: lord, Start: birth, End: birth.Add(balance)})
	for i := 1; i < minPeriods; i++ {
		ruler := dashaOrder[(start+i)%len(dashaOrder)]
		prev := out[i-1].End
		out = append(out, Period{
			Lord:  ruler,
			Start: prev,
			End:   prev.Add(time.Duration(dashaYears[ruler]) * SolarYear),
		})
	}
	return out, nil
}

// Balance returns the remaining years of the birth period.
func (d Dasha) Balance() float64 {
	if len(d) == 0 {
		return 0
	}
	return d[0].Years()
}

func (d Dasha) index(today time.Time) int {
	for i, p := range d {
		if p.Contains(today) {
			return i
		}
	}
	return -1
}

// Current returns the period containing today.
func (d Dasha) Current(today time.Time) (Period, bool) {
	i := d.index(today)
	if i < 0 {
		return Period{}, false
	}
	return d[i], true
}

// Next returns the period following the one containing today.
func (d Dasha) Next(today time.Time) (Period, bool) {
	i := d.index(today)
	if i < 0 || i+1 >= len(d) {
		return Period{}, false
	}
	return d[i+1], true
}
