// Package ephemeris defines the boundary to planetary position sources and
// ships a compact analytical implementation of it.
package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Body identifies a celestial body tracked by the charts.
type Body int

const (
	Sun Body = iota
	Moon
	Mars
	Mercury
	Jupiter
	Venus
	Saturn
	Rahu // mean ascending lunar node
	Ketu // descending lunar node, Rahu + 180
)

var bodyNames = [...]string{"Sun", "Moon", "Mars", "Mercury", "Jupiter", "Venus", "Saturn", "Rahu", "Ketu"}

// Bodies lists every body in the order the charts report them.
var Bodies = []Body{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu}

func (b Body) String() string {
	if b < 0 || int(b) >= len(bodyNames) {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// MarshalText encodes the body by name, which also makes it usable as a JSON map key.
func (b Body) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(bodyNames) {
		return nil, fmt.Errorf("ephemeris: unknown body %d", int(b))
	}
	return []byte(bodyNames[b]), nil
}

// UnmarshalText decodes a body name.
func (b *Body) UnmarshalText(text []byte) error {
	p, err := ParseBody(string(text))
	if err != nil {
		return err
	}
	*b = p
	return nil
}

// ParseBody resolves a body by name, case-insensitively.
func ParseBody(name string) (Body, error) {
	for i, n := range bodyNames {
		if strings.EqualFold(n, name) {
			return Body(i), nil
		}
	}
	return 0, fmt.Errorf("ephemeris: unknown body %q", name)
}

// ErrUnsupportedBody is returned for bodies an adapter does not compute directly.
var ErrUnsupportedBody = errors.New("ephemeris: unsupported body")

// Adapter supplies tropical positions for a moment given as a Julian Day (UT).
// Implementations must be deterministic and safe for concurrent use.
type Adapter interface {
	// Longitude returns the geocentric tropical ecliptic longitude of body in degrees.
	Longitude(jd float64, body Body) (float64, error)
	// Ayanamsa returns the tropical-to-sidereal offset in degrees under mode.
	Ayanamsa(jd float64, mode AyanamsaMode) (float64, error)
	// Ascendant returns the tropical longitude of the eastern horizon for the
	// given geographic latitude and east longitude, in degrees.
	Ascendant(jd, lat, lon float64) (float64, error)
}

// Normalize folds an angle in degrees into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}
