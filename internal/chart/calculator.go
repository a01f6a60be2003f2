// Package chart turns raw ephemeris output into sidereal birth charts:
// rasi (D1) and navamsa (D9) snapshots, the Moon's lunar mansion and the
// Vimshottari period timetable.
package chart

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/starford/daivaya/internal/apperr"
	"github.com/starford/daivaya/internal/ephemeris"
)

// BirthMoment is the civil date and clock of a birth as entered by a user.
type BirthMoment struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Position is one point on the zodiac in both frames, with its signs.
type Position struct {
	Tropical float64 `json:"tropical"`
	Sidereal float64 `json:"sidereal"`
	Sign     Sign    `json:"sign"`
	Navamsa  Sign    `json:"navamsa"`
}

// BodyLongitude is the Position of one body.
type BodyLongitude struct {
	Body ephemeris.Body `json:"body"`
	Position
}

// Snapshot is one divisional chart: the rising sign and each body's sign.
type Snapshot struct {
	Lagna   Sign                    `json:"lagna"`
	Planets map[ephemeris.Body]Sign `json:"planets"`
}

// Result is a fully assembled chart. It is never returned partially filled.
type Result struct {
	Instant    Instant         `json:"instant"`
	Ayanamsa   float64         `json:"ayanamsa"`
	Mode       string          `json:"ayanamsa_mode"`
	Ascendant  Position        `json:"ascendant"`
	Longitudes []BodyLongitude `json:"longitudes"`
	D1         Snapshot        `json:"d1"`
	D9         Snapshot        `json:"d9"`
	Mansion    Mansion         `json:"mansion"`
	Dasha      Dasha           `json:"dasha"`
	Current    *Period         `json:"current,omitempty"`
	Next       *Period         `json:"next,omitempty"`
}

// Moon returns the Moon's position.
func (r *Result) Moon() Position {
	return r.Body(ephemeris.Moon)
}

// Body returns the position of b, or the zero Position.
func (r *Result) Body(b ephemeris.Body) Position {
	for _, l := range r.Longitudes {
		if l.Body == b {
			return l.Position
		}
	}
	return Position{}
}

// Calculator assembles charts from an ephemeris adapter. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	eph  ephemeris.Adapter
	norm *Normalizer
	mode ephemeris.AyanamsaMode
}

// NewCalculator returns a Calculator using one ayanamsa mode for every chart.
func NewCalculator(eph ephemeris.Adapter, norm *Normalizer, mode ephemeris.AyanamsaMode) *Calculator {
	return &Calculator{eph: eph, norm: norm, mode: mode}
}

// Normalizer returns the civil time normalizer of c.
func (c *Calculator) Normalizer() *Normalizer { return c.norm }

// Compute builds the complete chart for a birth at lat/lon. today selects the
// current and next periods.
func (c *Calculator) Compute(ctx context.Context, bm BirthMoment, lat, lon float64, today time.Time) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// the horizon is undefined at the poles
	if math.IsNaN(lat) || lat <= -90 || lat >= 90 {
		return nil, apperr.Validation("latitude %v out of range (-90, 90)", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return nil, apperr.Validation("longitude %v out of range [-180, 180]", lon)
	}

	inst, err := c.norm.Normalize(bm.Date, bm.Time)
	if err != nil {
		return nil, err
	}
	return c.ComputeAt(inst, lat, lon, today)
}

// ComputeAt is Compute for an already normalized instant.
func (c *Calculator) ComputeAt(inst Instant, lat, lon float64, today time.Time) (*Result, error) {
	ayan, err := c.eph.Ayanamsa(inst.JD, c.mode)
	if err != nil {
		return nil, computationError("ayanamsa", err)
	}

	asc, err := c.eph.Ascendant(inst.JD, lat, lon)
	if err != nil {
		return nil, computationError("ascendant", err)
	}

	res := &Result{
		Instant:    inst,
		Ayanamsa:   ayan,
		Mode:       c.mode.String(),
		Ascendant:  position(asc, ayan),
		Longitudes: make([]BodyLongitude, 0, len(ephemeris.Bodies)),
	}

	var rahu float64
	for _, b := range ephemeris.Bodies {
		var trop float64
		switch b {
		case ephemeris.Ketu:
			trop = ephemeris.Normalize(rahu + 180)
		default:
			trop, err = c.eph.Longitude(inst.JD, b)
			if err != nil {
				return nil, computationError(b.String(), err)
			}
			if math.IsNaN(trop) || math.IsInf(trop, 0) {
				return nil, apperr.New(apperr.ErrComputation, "ephemeris returned %v for %s", trop, b)
			}
		}
		if b == ephemeris.Rahu {
			rahu = trop
		}
		res.Longitudes = append(res.Longitudes, BodyLongitude{Body: b, Position: position(trop, ayan)})
	}

	res.D1 = Snapshot{Lagna: res.Ascendant.Sign, Planets: make(map[ephemeris.Body]Sign, len(res.Longitudes))}
	res.D9 = Snapshot{Lagna: res.Ascendant.Navamsa, Planets: make(map[ephemeris.Body]Sign, len(res.Longitudes))}
	for _, l := range res.Longitudes {
		res.D1.Planets[l.Body] = l.Sign
		res.D9.Planets[l.Body] = l.Navamsa
	}

	res.Mansion = MansionOf(res.Moon().Sidereal)

	res.Dasha, err = NewDasha(res.Mansion.Lord, res.Mansion.Elapsed, inst.UTC)
	if err != nil {
		return nil, err
	}
	if p, ok := res.Dasha.Current(today); ok {
		res.Current = &p
	}
	if p, ok := res.Dasha.Next(today); ok {
		res.Next = &p
	}
	return res, nil
}

func position(tropical, ayan float64) Position {
	sid := Sidereal(tropical, ayan)
	return Position{
		Tropical: tropical,
		Sidereal: sid,
		Sign:     SignOf(sid),
		Navamsa:  NavamsaOf(sid),
	}
}

func computationError(what string, err error) error {
	return apperr.Wrap(apperr.ErrComputation, fmt.Errorf("chart: %s: %w", what, err), "chart computation failed")
}
