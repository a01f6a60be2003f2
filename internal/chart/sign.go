package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/starford/daivaya/internal/ephemeris"
)

// Sign is one of the twelve 30° zodiac signs, Aries = 0.
type Sign int

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

func (s Sign) String() string {
	if s < 0 || s > 11 {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

// MarshalText encodes the sign by name.
func (s Sign) MarshalText() ([]byte, error) {
	if s < 0 || s > 11 {
		return nil, fmt.Errorf("chart: invalid sign %d", int(s))
	}
	return []byte(signNames[s]), nil
}

// UnmarshalText decodes a sign name.
func (s *Sign) UnmarshalText(text []byte) error {
	for i, n := range signNames {
		if strings.EqualFold(n, string(text)) {
			*s = Sign(i)
			return nil
		}
	}
	return fmt.Errorf("chart: unknown sign %q", string(text))
}

// Sidereal converts a tropical longitude to the sidereal frame.
func Sidereal(tropical, ayanamsa float64) float64 {
	return ephemeris.Normalize(tropical - ayanamsa + 360)
}

// SignOf maps a longitude to its sign. Boundaries belong to the higher sign.
func SignOf(lon float64) Sign {
	return Sign(int(math.Floor(ephemeris.Normalize(lon)/30)) % 12)
}

// NavamsaOf maps a longitude to its D9 sign: the position of 9×lon on a
// fresh wheel. Always called with the raw longitude, never a sign index.
func NavamsaOf(lon float64) Sign {
	return SignOf(ephemeris.Normalize(lon) * 9)
}

// House returns the 1-based house of s counted from lagna.
func House(lagna, s Sign) int {
	return (int(s)-int(lagna)+12)%12 + 1
}
