package ephemeris

import "fmt"

// Table is an Adapter that answers every query with pinned values regardless
// of the moment. It backs fixtures and reproducible demos.
type Table struct {
	Tropical map[Body]float64
	Offset   float64 // ayanamsa returned for every mode
	Rising   float64 // tropical ascendant

	// Fail, when set, is returned by every call.
	Fail error
}

var _ Adapter = (*Table)(nil)

// Longitude implements Adapter.
func (t *Table) Longitude(_ float64, body Body) (float64, error) {
	if t.Fail != nil {
		return 0, t.Fail
	}
	lon, ok := t.Tropical[body]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedBody, body)
	}
	return Normalize(lon), nil
}

// Ayanamsa implements Adapter.
func (t *Table) Ayanamsa(float64, AyanamsaMode) (float64, error) {
	if t.Fail != nil {
		return 0, t.Fail
	}
	return t.Offset, nil
}

// Ascendant implements Adapter.
func (t *Table) Ascendant(float64, float64, float64) (float64, error) {
	if t.Fail != nil {
		return 0, t.Fail
	}
	return Normalize(t.Rising), nil
}
