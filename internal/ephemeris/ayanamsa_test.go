package ephemeris

import "testing"

func TestLahiriAtJ2000(t *testing.T) {
	v, err := NewAnalytic().Ayanamsa(j2000, Lahiri)
	if err != nil {
		t.Fatal(err)
	}
	near(t, "lahiri", v, 23.856498, 1e-6)
}

func TestLahiriGrowsWithPrecession(t *testing.T) {
	a := NewAnalytic()
	v1990, _ := a.Ayanamsa(2448057.625, Lahiri)
	v2000, _ := a.Ayanamsa(j2000, Lahiri)
	// about 50.3 arcseconds per year
	near(t, "decade drift", v2000-v1990, 0.1317, 0.005)
}

func TestModesDiffer(t *testing.T) {
	a := NewAnalytic()
	l, _ := a.Ayanamsa(j2000, Lahiri)
	r, _ := a.Ayanamsa(j2000, Raman)
	k, _ := a.Ayanamsa(j2000, Krishnamurti)
	if !(r < k && k < l) {
		t.Errorf("unexpected ordering raman=%f kp=%f lahiri=%f", r, k, l)
	}
	if _, err := a.Ayanamsa(j2000, AyanamsaMode(9)); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseAyanamsaMode(t *testing.T) {
	for name, want := range map[string]AyanamsaMode{"lahiri": Lahiri, "LAHIRI": Lahiri, " raman ": Raman, "krishnamurti": Krishnamurti} {
		got, err := ParseAyanamsaMode(name)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if got != want {
			t.Errorf("%q = %s, want %s", name, got, want)
		}
	}
	if _, err := ParseAyanamsaMode("fagan"); err == nil {
		t.Error("expected error for unsupported mode")
	}
}
