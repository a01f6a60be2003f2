package chart

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/starford/daivaya/internal/apperr"
)

// Instant is a birth moment resolved to UTC and to its Julian Day.
type Instant struct {
	UTC time.Time `json:"utc"`
	JD  float64   `json:"jd"`
}

// Normalizer turns civil date and clock strings into an Instant using one
// fixed civil timezone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer loads the named IANA timezone.
func NewNormalizer(tz string) (*Normalizer, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("chart: load timezone %q: %w", tz, err)
	}
	return &Normalizer{loc: loc}, nil
}

// NormalizerIn returns a Normalizer bound to loc.
func NormalizerIn(loc *time.Location) *Normalizer {
	return &Normalizer{loc: loc}
}

// Location returns the civil timezone of n.
func (n *Normalizer) Location() *time.Location { return n.loc }

// Normalize parses date (YYYY-MM-DD) and clock (HH:MM or HH:MM:SS) as a
// local civil time and converts it to UTC and Julian Day.
func (n *Normalizer) Normalize(date, clock string) (Instant, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return Instant{}, apperr.Validation("invalid date %q: expected YYYY-MM-DD", date)
	}
	c, err := parseClock(strings.TrimSpace(clock))
	if err != nil {
		return Instant{}, apperr.Validation("invalid time %q: expected HH:MM", clock)
	}
	local := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, n.loc)
	utc := local.UTC()
	return Instant{UTC: utc, JD: JulianDay(utc)}, nil
}

func parseClock(s string) (time.Time, error) {
	if strings.Count(s, ":") == 2 {
		return time.Parse("15:04:05", s)
	}
	return time.Parse("15:04", s)
}

// JulianDay converts t to a Julian Day number with the fraction of day,
// using the Gregorian calendar day number of t in UTC.
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	a := (14 - int(t.Month())) / 12
	y := t.Year() + 4800 - a
	m := int(t.Month()) + 12*a - 3

	jdn := t.Day() + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045

	hour := float64(t.Hour())
	minute := float64(t.Minute())
	second := float64(t.Second()) + float64(t.Nanosecond())/1e9

	return float64(jdn) + (hour-12)/24 + minute/1440 + second/86400
}
