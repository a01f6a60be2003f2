package chart

import (
	"encoding/json"
	"testing"
)

func TestSignPeriodicity(t *testing.T) {
	for i := range 50 {
		l := float64(i) * 7.3
		want := SignOf(l)
		for k := -3; k <= 3; k++ {
			if got := SignOf(l + 360*float64(k)); got != want {
				t.Errorf("SignOf(%g + 360·%d) = %s, want %s", l, k, got, want)
			}
		}
	}
}

func TestSignBoundaries(t *testing.T) {
	cases := map[float64]Sign{
		0:         0,
		29.999999: 0,
		30:        1,
		359.9999:  11,
		360:       0,
		-0.5:      11,
	}
	for lon, want := range cases {
		if got := SignOf(lon); got != want {
			t.Errorf("SignOf(%g) = %s, want %s", lon, got, want)
		}
	}
}

func TestNavamsa(t *testing.T) {
	cases := map[float64]string{
		0:      "Aries",
		3.3334: "Taurus",
		39.999: "Pisces",
		40:     "Aries",
		106:    "Scorpio",
		176:    "Leo",
	}
	for lon, want := range cases {
		if got := NavamsaOf(lon).String(); got != want {
			t.Errorf("NavamsaOf(%g) = %s, want %s", lon, got, want)
		}
	}
}

func TestNavamsaRepeatsEveryFortyDegrees(t *testing.T) {
	for i := range 70 {
		l := 1.7 + float64(i)*5.1
		if a, b := NavamsaOf(l), NavamsaOf(l+40); a != b {
			t.Errorf("NavamsaOf(%g) = %s but NavamsaOf(%g) = %s", l, a, l+40, b)
		}
	}
}

func TestSidereal(t *testing.T) {
	cases := []struct{ trop, ayan, want float64 }{
		{130, 24, 106},
		{10, 24, 346},
		{0, 0, 0},
		{359, -2, 1},
	}
	for _, tc := range cases {
		got := Sidereal(tc.trop, tc.ayan)
		if got != tc.want {
			t.Errorf("Sidereal(%g, %g) = %g, want %g", tc.trop, tc.ayan, got, tc.want)
		}
		if got < 0 || got >= 360 {
			t.Errorf("Sidereal out of range: %g", got)
		}
	}
}

func TestSignJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Sign{"lagna": 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"lagna":"Cancer"}` {
		t.Errorf("json = %s", data)
	}
	var s Sign
	if err := s.UnmarshalText([]byte("sagittarius")); err != nil || s != 8 {
		t.Errorf("UnmarshalText = %v, %v", s, err)
	}
	if _, err := Sign(12).MarshalText(); err == nil {
		t.Error("expected error for sign 12")
	}
}

func TestHouse(t *testing.T) {
	if h := House(3, 3); h != 1 {
		t.Errorf("House(same) = %d", h)
	}
	if h := House(10, 1); h != 4 {
		t.Errorf("House(Aquarius→Taurus) = %d, want 4", h)
	}
}
