// Package export writes a computed chart to an Excel workbook with one sheet
// per view: the period timetable, body positions and the summary block.
package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/starford/daivaya/internal/chart"
)

// Sheet names.
const (
	SheetDasha   = "Dasha"
	SheetChart   = "Chart"
	SheetSummary = "Summary"
)

// CurrentMarker flags the running period in the timetable.
const CurrentMarker = "current"

const dateLayout = "2006-01-02"

var (
	dashaHeaders = []string{"Lord", "Start", "End", "Years", "Status"}
	dashaWidths  = []float64{12, 14, 14, 10, 10}

	chartHeaders = []string{"Body", "Tropical", "Sidereal", "Rasi", "Navamsa"}
	chartWidths  = []float64{12, 12, 12, 14, 14}
)

// Write renders res as a workbook to w. today marks the running period.
func Write(w io.Writer, res *chart.Result, today time.Time) error {
	f, err := Workbook(res, today)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// SaveAs renders res as a workbook at path.
func SaveAs(path string, res *chart.Result, today time.Time) error {
	f, err := Workbook(res, today)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

// Workbook builds the workbook in memory. The caller closes it.
func Workbook(res *chart.Result, today time.Time) (*excelize.File, error) {
	if res == nil {
		return nil, fmt.Errorf("export: nil chart")
	}

	f := excelize.NewFile()
	b := &builder{f: f}

	b.step(func() error {
		idx, err := f.NewSheet(SheetDasha)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
		return f.DeleteSheet("Sheet1")
	})
	b.step(func() error {
		var err error
		b.header, err = f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
			Border: []excelize.Border{
				{Type: "left", Color: "000000", Style: 1},
				{Type: "top", Color: "000000", Style: 1},
				{Type: "bottom", Color: "000000", Style: 1},
				{Type: "right", Color: "000000", Style: 1},
			},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		return err
	})
	b.step(func() error {
		var err error
		b.current, err = f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFF2CC"}, Pattern: 1},
		})
		return err
	})

	b.dashaSheet(res.Dasha, today)
	b.chartSheet(res)
	b.summarySheet(res.Summary())

	if b.err != nil {
		f.Close()
		return nil, fmt.Errorf("export: build workbook: %w", b.err)
	}
	return f, nil
}

// builder keeps the first error so the sheet writers read straight through.
type builder struct {
	f       *excelize.File
	header  int
	current int
	err     error
}

func (b *builder) step(fn func() error) {
	if b.err != nil {
		return
	}
	b.err = fn()
}

func (b *builder) headers(sheet string, names []string, widths []float64) {
	for col, name := range names {
		b.step(func() error {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := b.f.SetCellValue(sheet, cell, name); err != nil {
				return err
			}
			return b.f.SetCellStyle(sheet, cell, cell, b.header)
		})
		b.step(func() error {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return err
			}
			return b.f.SetColWidth(sheet, name, name, widths[col])
		})
	}
	b.step(func() error {
		return b.f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	})
}

func (b *builder) set(sheet string, col, row int, value any) {
	b.step(func() error { return setCellValue(b.f, sheet, col, row, value) })
}

func (b *builder) dashaSheet(d chart.Dasha, today time.Time) {
	b.headers(SheetDasha, dashaHeaders, dashaWidths)
	for i, p := range d {
		row := i + 2
		b.set(SheetDasha, 1, row, p.Lord.String())
		b.set(SheetDasha, 2, row, p.Start.Format(dateLayout))
		b.set(SheetDasha, 3, row, p.End.Format(dateLayout))
		b.set(SheetDasha, 4, row, round2(p.Years()))
		if !p.Contains(today) {
			continue
		}
		b.set(SheetDasha, 5, row, CurrentMarker)
		b.step(func() error {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(dashaHeaders), row)
			return b.f.SetCellStyle(SheetDasha, first, last, b.current)
		})
	}
}

func (b *builder) chartSheet(res *chart.Result) {
	b.step(func() error {
		_, err := b.f.NewSheet(SheetChart)
		return err
	})
	b.headers(SheetChart, chartHeaders, chartWidths)

	row := 2
	put := func(name string, p chart.Position) {
		b.set(SheetChart, 1, row, name)
		b.set(SheetChart, 2, row, round2(p.Tropical))
		b.set(SheetChart, 3, row, round2(p.Sidereal))
		b.set(SheetChart, 4, row, p.Sign.String())
		b.set(SheetChart, 5, row, p.Navamsa.String())
		row++
	}
	put("Ascendant", res.Ascendant)
	for _, l := range res.Longitudes {
		put(l.Body.String(), l.Position)
	}
}

func (b *builder) summarySheet(s chart.Summary) {
	b.step(func() error {
		_, err := b.f.NewSheet(SheetSummary)
		return err
	})
	rows := [][2]any{
		{"Lagna", s.Lagna.String()},
		{"Navamsa lagna", s.NavamsaLagna.String()},
		{"Nakshatra", s.Nakshatra.Name},
		{"Pada", s.Nakshatra.Pada},
		{"Nakshatra lord", s.Nakshatra.Lord.String()},
		{"Current mahadasha", s.Dasha.CurrentMahadasha},
		{"Next mahadasha", s.Dasha.NextMahadasha},
		{"Balance at birth (years)", s.Dasha.BalanceYears},
	}
	if s.Dasha.NextMahadashaStartYear != 0 {
		rows = append(rows, [2]any{"Next mahadasha starts", s.Dasha.NextMahadashaStartYear})
	}
	for i, r := range rows {
		b.set(SheetSummary, 1, i+1, r[0])
		b.set(SheetSummary, 2, i+1, r[1])
	}
	b.step(func() error {
		return b.f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), b.header)
	})
	b.step(func() error { return b.f.SetColWidth(SheetSummary, "A", "A", 26) })
	b.step(func() error { return b.f.SetColWidth(SheetSummary, "B", "B", 18) })
}

func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
