package chart

import (
	"math"
	"testing"

	"github.com/starford/daivaya/internal/ephemeris"
)

func TestMansionBoundaries(t *testing.T) {
	cases := []struct {
		moon float64
		idx  int
		name string
		pada int
		lord ephemeris.Body
	}{
		{0, 0, "Ashwini", 1, ephemeris.Ketu},
		{360, 0, "Ashwini", 1, ephemeris.Ketu},
		{MansionWidth * 0.8, 0, "Ashwini", 4, ephemeris.Ketu},
		{MansionWidth + 1e-6, 1, "Bharani", 1, ephemeris.Venus},
		{176, 13, "Chitra", 1, ephemeris.Mars},
		{26*MansionWidth + 1e-3, 26, "Revati", 1, ephemeris.Mercury},
		{359.9999, 26, "Revati", 4, ephemeris.Mercury},
	}
	for _, tc := range cases {
		m := MansionOf(tc.moon)
		if m.Index != tc.idx || m.Name != tc.name || m.Pada != tc.pada || m.Lord != tc.lord {
			t.Errorf("MansionOf(%g) = %+v, want #%d %s pada %d lord %s", tc.moon, m, tc.idx, tc.name, tc.pada, tc.lord)
		}
		if m.Elapsed < 0 || m.Elapsed >= 1 {
			t.Errorf("MansionOf(%g).Elapsed = %g", tc.moon, m.Elapsed)
		}
	}
}

func TestMansionElapsed(t *testing.T) {
	m := MansionOf(MansionWidth * 2.6)
	if math.Abs(m.Elapsed-0.6) > 1e-9 {
		t.Errorf("elapsed = %f, want 0.6", m.Elapsed)
	}
	if m.Pada != 3 {
		t.Errorf("pada = %d, want 3", m.Pada)
	}
}

func TestMansionNames(t *testing.T) {
	if MansionIndex("Revati") != 26 || MansionIndex("Pluto") != -1 {
		t.Error("MansionIndex lookup")
	}
	if MansionName(27) != "" || MansionName(9) != "Magha" {
		t.Error("MansionName lookup")
	}
}
