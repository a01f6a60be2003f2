// Package porondam scores the traditional marriage compatibility checks
// between two birth charts from the Moon's mansion and sign of each partner.
package porondam

import (
	"fmt"
	"slices"

	"github.com/starford/daivaya/internal/chart"
)

// Party is the lunar placement of one partner.
type Party struct {
	Mansion int        `json:"mansion"`
	Sign    chart.Sign `json:"sign"`
}

// FromChart extracts the Moon placement from a computed chart.
func FromChart(r *chart.Result) Party {
	return Party{Mansion: r.Mansion.Index, Sign: r.Moon().Sign}
}

// Verdict is the outcome of one check.
type Verdict struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Report holds every check in a fixed order.
type Report struct {
	Checks []Verdict `json:"checks"`
	Passed int       `json:"passed"`
	Total  int       `json:"total"`
}

// Gana is the temperament class of a mansion.
type Gana int

const (
	Deva Gana = iota
	Manushya
	Rakshasa
)

func (g Gana) String() string {
	return [...]string{"Deva", "Manushya", "Rakshasa"}[g]
}

var ganaOf = [27]Gana{
	Deva, Manushya, Rakshasa, Manushya, Deva, Manushya, Deva, Deva, Rakshasa,
	Rakshasa, Manushya, Manushya, Deva, Rakshasa, Deva, Rakshasa, Deva, Rakshasa,
	Rakshasa, Manushya, Manushya, Deva, Rakshasa, Rakshasa, Manushya, Manushya, Deva,
}

var nadiNames = [6]string{"Adi", "Madhya", "Antya", "Antya", "Madhya", "Adi"}

var rajjuNames = [9]string{"Pada", "Kati", "Nabhi", "Kantha", "Shira", "Kantha", "Nabhi", "Kati", "Pada"}

var mahendraCounts = []int{4, 7, 10, 13, 16, 19, 22, 25}

// GanaOf returns the gana of mansion i.
func GanaOf(i int) Gana { return ganaOf[i%27] }

// NadiOf returns the nadi of mansion i.
func NadiOf(i int) string { return nadiNames[i%6] }

// RajjuOf returns the rajju of mansion i.
func RajjuOf(i int) string { return rajjuNames[i%9] }

// Count is the inclusive number of mansions from the bride's to the groom's.
func Count(bride, groom int) int {
	return (groom-bride+27)%27 + 1
}

// Match runs every check for a bride and groom.
func Match(bride, groom Party) (Report, error) {
	if bride.Mansion < 0 || bride.Mansion > 26 || groom.Mansion < 0 || groom.Mansion > 26 {
		return Report{}, fmt.Errorf("porondam: mansion out of range (%d, %d)", bride.Mansion, groom.Mansion)
	}
	n := Count(bride.Mansion, groom.Mansion)

	checks := []Verdict{
		dina(n),
		gana(bride.Mansion, groom.Mansion),
		mahendra(n),
		streeDeergha(n),
		rashi(bride.Sign, groom.Sign),
		rajju(bride.Mansion, groom.Mansion),
		nadi(bride.Mansion, groom.Mansion),
	}
	rep := Report{Checks: checks, Total: len(checks)}
	for _, c := range checks {
		if c.Passed {
			rep.Passed++
		}
	}
	return rep, nil
}

func dina(n int) Verdict {
	r := n % 9
	return Verdict{
		Name:   "Nakath",
		Passed: r%2 == 0,
		Detail: fmt.Sprintf("count %d, remainder %d", n, r),
	}
}

func gana(bride, groom int) Verdict {
	b, g := GanaOf(bride), GanaOf(groom)
	ok := b == g || (b != Rakshasa && g != Rakshasa)
	return Verdict{Name: "Gana", Passed: ok, Detail: fmt.Sprintf("%s and %s", b, g)}
}

func mahendra(n int) Verdict {
	return Verdict{
		Name:   "Mahendra",
		Passed: slices.Contains(mahendraCounts, n),
		Detail: fmt.Sprintf("count %d", n),
	}
}

func streeDeergha(n int) Verdict {
	return Verdict{Name: "Stree Deergha", Passed: n >= 13, Detail: fmt.Sprintf("count %d", n)}
}

func rashi(bride, groom chart.Sign) Verdict {
	h := chart.House(bride, groom)
	bad := h == 2 || h == 6 || h == 8 || h == 12
	return Verdict{
		Name:   "Rashi",
		Passed: !bad,
		Detail: fmt.Sprintf("%s to %s is house %d", bride, groom, h),
	}
}

func rajju(bride, groom int) Verdict {
	b, g := RajjuOf(bride), RajjuOf(groom)
	return Verdict{Name: "Rajju", Passed: b != g, Detail: fmt.Sprintf("%s and %s", b, g)}
}

func nadi(bride, groom int) Verdict {
	b, g := NadiOf(bride), NadiOf(groom)
	return Verdict{Name: "Nadi", Passed: b != g, Detail: fmt.Sprintf("%s and %s", b, g)}
}
