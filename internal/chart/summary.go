package chart

import (
	"math"

	"github.com/starford/daivaya/internal/ephemeris"
)

// Unavailable is reported for a period that the timetable does not reach.
const Unavailable = "unavailable"

// Summary is the short description of a chart shown next to the diagrams.
type Summary struct {
	Lagna        Sign             `json:"lagna"`
	NavamsaLagna Sign             `json:"navamsa_lagna"`
	Nakshatra    NakshatraSummary `json:"nakshatra"`
	Dasha        DashaSummary     `json:"dasha_info"`
}

type NakshatraSummary struct {
	Name string         `json:"name"`
	Pada int            `json:"pada"`
	Lord ephemeris.Body `json:"lord"`
}

type DashaSummary struct {
	CurrentMahadasha       string  `json:"current_mahadasha"`
	NextMahadasha          string  `json:"next_mahadasha"`
	NextMahadashaStartYear int     `json:"next_mahadasha_start_year,omitempty"`
	BalanceYears           float64 `json:"balance_years"`
}

// Summary derives the detail block of r.
func (r *Result) Summary() Summary {
	s := Summary{
		Lagna:        r.D1.Lagna,
		NavamsaLagna: r.D9.Lagna,
		Nakshatra: NakshatraSummary{
			Name: r.Mansion.Name,
			Pada: r.Mansion.Pada,
			Lord: r.Mansion.Lord,
		},
		Dasha: DashaSummary{
			CurrentMahadasha: Unavailable,
			NextMahadasha:    Unavailable,
			BalanceYears:     math.Round(r.Dasha.Balance()*100) / 100,
		},
	}
	if r.Current != nil {
		s.Dasha.CurrentMahadasha = r.Current.Lord.String()
	}
	if r.Next != nil {
		s.Dasha.NextMahadasha = r.Next.Lord.String()
		s.Dasha.NextMahadashaStartYear = r.Next.Start.Year()
	}
	return s
}
