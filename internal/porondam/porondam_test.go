package porondam

import (
	"testing"

	"github.com/starford/daivaya/internal/chart"
)

func verdicts(t *testing.T, bride, groom Party) map[string]bool {
	t.Helper()
	rep, err := Match(bride, groom)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 7 || len(rep.Checks) != 7 {
		t.Fatalf("report has %d checks", len(rep.Checks))
	}
	out := make(map[string]bool, len(rep.Checks))
	passed := 0
	for _, c := range rep.Checks {
		out[c.Name] = c.Passed
		if c.Passed {
			passed++
		}
	}
	if passed != rep.Passed {
		t.Errorf("passed = %d, counted %d", rep.Passed, passed)
	}
	return out
}

func TestCountIsInclusiveAndWraps(t *testing.T) {
	cases := []struct{ bride, groom, want int }{
		{0, 0, 1},
		{0, 3, 4},
		{26, 0, 2},
		{13, 12, 27},
	}
	for _, tc := range cases {
		if got := Count(tc.bride, tc.groom); got != tc.want {
			t.Errorf("Count(%d, %d) = %d, want %d", tc.bride, tc.groom, got, tc.want)
		}
	}
}

func TestTablesAreBalanced(t *testing.T) {
	gana := map[Gana]int{}
	nadi := map[string]int{}
	rajju := map[string]int{}
	for i := range 27 {
		gana[GanaOf(i)]++
		nadi[NadiOf(i)]++
		rajju[RajjuOf(i)]++
	}
	for g, n := range gana {
		if n != 9 {
			t.Errorf("%s has %d mansions, want 9", g, n)
		}
	}
	for name, n := range nadi {
		if n != 9 {
			t.Errorf("nadi %s has %d mansions, want 9", name, n)
		}
	}
	if rajju["Shira"] != 3 || rajju["Pada"] != 6 {
		t.Errorf("rajju distribution = %v", rajju)
	}
}

func TestMatchSameMansion(t *testing.T) {
	// Ashwini with Ashwini: same rajju and nadi fail, count 1.
	v := verdicts(t, Party{0, 0}, Party{0, 0})
	want := map[string]bool{
		"Nakath":        false,
		"Gana":          true,
		"Mahendra":      false,
		"Stree Deergha": false,
		"Rashi":         true,
		"Rajju":         false,
		"Nadi":          false,
	}
	for name, w := range want {
		if v[name] != w {
			t.Errorf("%s = %v, want %v", name, v[name], w)
		}
	}
}

func TestMatchMixed(t *testing.T) {
	// Bharani (Aries) bride, Hasta (Virgo) groom: count 12.
	v := verdicts(t, Party{1, 0}, Party{12, 5})
	want := map[string]bool{
		"Nakath":        false, // remainder 3
		"Gana":          true,  // Manushya and Deva
		"Mahendra":      false,
		"Stree Deergha": false,
		"Rashi":         false, // Virgo is the 6th from Aries
		"Rajju":         true,  // Kati and Kantha
		"Nadi":          true,  // Madhya and Adi
	}
	for name, w := range want {
		if v[name] != w {
			t.Errorf("%s = %v, want %v", name, v[name], w)
		}
	}
}

func TestMahendraAndStreeDeergha(t *testing.T) {
	v := verdicts(t, Party{0, 0}, Party{15, 7})
	if !v["Mahendra"] {
		t.Error("count 16 should satisfy Mahendra")
	}
	if !v["Stree Deergha"] {
		t.Error("count 16 should satisfy Stree Deergha")
	}
	if v["Nakath"] {
		t.Error("count 16 leaves remainder 7 and should fail Nakath")
	}
}

func TestGanaRakshasaClash(t *testing.T) {
	// Krittika is Rakshasa, Ashwini is Deva.
	v := verdicts(t, Party{2, 1}, Party{0, 0})
	if v["Gana"] {
		t.Error("Rakshasa with Deva passed")
	}
	v = verdicts(t, Party{2, 1}, Party{8, 3})
	if !v["Gana"] {
		t.Error("Rakshasa with Rakshasa failed")
	}
}

func TestRashiDistances(t *testing.T) {
	for groom, ok := range map[chart.Sign]bool{0: true, 1: false, 2: true, 5: false, 6: true, 7: false, 11: false} {
		if got := rashi(0, groom).Passed; got != ok {
			t.Errorf("rashi Aries→%s = %v, want %v", groom, got, ok)
		}
	}
}

func TestMatchRejectsBadMansion(t *testing.T) {
	if _, err := Match(Party{Mansion: 27}, Party{}); err == nil {
		t.Fatal("expected error")
	}
}
