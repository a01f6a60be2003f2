package ephemeris

import (
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/planetelements"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// Analytic computes apparent positions of date with the algorithms of Jean
// Meeus' "Astronomical Algorithms": the ELP-2000/82 lunar series, the
// low-precision solar theory and Keplerian orbits on the mean planetary
// elements, with the Jupiter/Saturn great inequality applied. The Moon is
// good to well under an arcminute and the planets to a few tenths of a
// degree at worst over 1800-2100, inside the 3°20' navamsa width used
// downstream. Julian Days are used as dynamical time.
type Analytic struct{}

// NewAnalytic returns the analytical ephemeris.
func NewAnalytic() *Analytic { return &Analytic{} }

var _ Adapter = (*Analytic)(nil)

var planets = map[Body]int{
	Mercury: planetelements.Mercury,
	Venus:   planetelements.Venus,
	Mars:    planetelements.Mars,
	Jupiter: planetelements.Jupiter,
	Saturn:  planetelements.Saturn,
}

// Longitude implements Adapter.
func (a *Analytic) Longitude(jd float64, body Body) (float64, error) {
	if body == Sun {
		return Normalize(solar.ApparentLongitude(base.J2000Century(jd)).Deg()), nil
	}

	var lon unit.Angle
	switch body {
	case Moon:
		lon, _, _ = moonposition.Position(jd)
	case Rahu:
		lon = moonposition.Node(jd)
	case Mercury, Venus, Mars, Jupiter, Saturn:
		lon = geocentric(body, jd)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedBody, body)
	}
	dpsi, _ := nutation.Nutation(jd)
	return Normalize((lon + dpsi).Deg()), nil
}

// Ayanamsa implements Adapter.
func (a *Analytic) Ayanamsa(jd float64, mode AyanamsaMode) (float64, error) {
	return ayanamsa(jd, mode)
}

// Ascendant implements Adapter.
func (a *Analytic) Ascendant(jd, lat, lon float64) (float64, error) {
	if lat <= -90 || lat >= 90 {
		return 0, fmt.Errorf("ephemeris: latitude %.4f out of range", lat)
	}
	_, deps := nutation.Nutation(jd)
	eps := nutation.MeanObliquity(jd) + deps
	ramc := Normalize(sidereal.Apparent(jd).Angle().Deg() + lon)
	return ascendant(ramc, eps.Deg(), lat), nil
}

// ascendant returns the ecliptic longitude rising in the east for the given
// right ascension of the meridian, obliquity and latitude (degrees).
func ascendant(ramc, eps, lat float64) float64 {
	r := unit.AngleFromDeg(ramc)
	e := unit.AngleFromDeg(eps)
	phi := unit.AngleFromDeg(lat)
	y := r.Cos()
	x := -(r.Sin()*e.Cos() + phi.Tan()*e.Sin())
	return Normalize(unit.Angle(math.Atan2(y, x)).Deg())
}

// orbit holds a planet's heliocentric ecliptic position of date.
type orbit struct {
	x, y, z float64 // AU
	anomaly unit.Angle
}

func heliocentric(p int, jd float64) orbit {
	var el planetelements.Elements
	planetelements.Mean(p, jd, &el)

	m := (el.Lon - el.Peri).Mod1()
	E := kepler.Kepler3(el.Ecc, m)
	v := kepler.True(E, el.Ecc)
	r := kepler.Radius(E, el.Ecc, el.Axis)

	u := v + el.Peri - el.Node
	sn, cn := math.Sincos(el.Node.Rad())
	su, cu := math.Sincos(u.Rad())
	ci := el.Inc.Cos()
	return orbit{
		x:       r * (cn*cu - sn*su*ci),
		y:       r * (sn*cu + cn*su*ci),
		z:       r * su * el.Inc.Sin(),
		anomaly: m,
	}
}

// geocentric returns the geometric longitude of a planet, mean equinox of date.
func geocentric(b Body, jd float64) unit.Angle {
	h := heliocentric(planets[b], jd)

	if b == Jupiter || b == Saturn {
		jup := heliocentric(planetelements.Jupiter, jd).anomaly
		sat := heliocentric(planetelements.Saturn, jd).anomaly
		lon := unit.Angle(math.Atan2(h.y, h.x)) + greatInequality(b, jup, sat)
		lat := math.Atan2(h.z, math.Hypot(h.x, h.y))
		r := math.Sqrt(h.x*h.x + h.y*h.y + h.z*h.z)
		h.x = r * lon.Cos() * math.Cos(lat)
		h.y = r * lon.Sin() * math.Cos(lat)
	}

	T := base.J2000Century(jd)
	sun, _ := solar.True(T)
	R := solar.Radius(T)
	return unit.Angle(math.Atan2(h.y+R*sun.Sin(), h.x+R*sun.Cos()))
}

// greatInequality returns the mutual Jupiter/Saturn correction to the
// heliocentric longitude from their mean anomalies.
func greatInequality(b Body, mj, ms unit.Angle) unit.Angle {
	s := func(a unit.Angle, deg float64) float64 { return (a + unit.AngleFromDeg(deg)).Sin() }
	c := func(a unit.Angle, deg float64) float64 { return (a + unit.AngleFromDeg(deg)).Cos() }

	if b == Jupiter {
		return unit.AngleFromDeg(-0.332*s(2*mj-5*ms, -67.6) -
			0.056*s(2*mj-2*ms, 21) +
			0.042*s(3*mj-5*ms, 21) -
			0.036*s(mj-2*ms, 0) +
			0.022*c(mj-ms, 0) +
			0.023*s(2*mj-3*ms, 52) -
			0.016*s(mj-5*ms, -69))
	}
	return unit.AngleFromDeg(0.812*s(2*mj-5*ms, -67.6) -
		0.229*c(2*mj-4*ms, -2) +
		0.119*s(mj-2*ms, -3) +
		0.046*s(2*mj-6*ms, -69) +
		0.014*s(mj-3*ms, 32))
}
