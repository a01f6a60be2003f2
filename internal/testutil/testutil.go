// Package testutil provides shared test helpers: a temporary ledger database,
// a temporary archive and a pinned chart calculator.
package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/starford/daivaya/internal/apperr"
	"github.com/starford/daivaya/internal/archive"
	"github.com/starford/daivaya/internal/chart"
	"github.com/starford/daivaya/internal/ephemeris"
	"github.com/starford/daivaya/internal/geocode"
	"github.com/starford/daivaya/internal/store"
)

// TestDB creates a temporary SQLite ledger that is removed after the test.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "daivaya-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(store.DriverSQLite, dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestArchive creates a temporary reading archive.
func TestArchive(t *testing.T) (string, *archive.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := archive.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// PinnedEphemeris answers every moment with the same positions: a Cancer
// rising chart with the Moon in Chitra.
func PinnedEphemeris() *ephemeris.Table {
	return &ephemeris.Table{
		Offset: 24,
		Rising: 130,
		Tropical: map[ephemeris.Body]float64{
			ephemeris.Sun:     84.5,
			ephemeris.Moon:    200,
			ephemeris.Mars:    10,
			ephemeris.Mercury: 70,
			ephemeris.Jupiter: 100,
			ephemeris.Venus:   50,
			ephemeris.Saturn:  295,
			ephemeris.Rahu:    310,
		},
	}
}

// Calculator returns a calculator over eph in Asia/Colombo, or over
// PinnedEphemeris when eph is nil.
func Calculator(t *testing.T, eph ephemeris.Adapter) *chart.Calculator {
	t.Helper()
	if eph == nil {
		eph = PinnedEphemeris()
	}
	norm, err := chart.NewNormalizer("Asia/Colombo")
	if err != nil {
		t.Fatal(err)
	}
	return chart.NewCalculator(eph, norm, ephemeris.Lahiri)
}

// Places is an in-memory geocoder keyed by lower-cased place name.
type Places struct {
	mu    sync.Mutex
	known map[string]geocode.Location
	calls int
}

// NewPlaces returns a geocoder that knows Colombo and Kandy.
func NewPlaces() *Places {
	return &Places{known: map[string]geocode.Location{
		"colombo": {Place: "Colombo", DisplayName: "Colombo, Western Province, Sri Lanka", Lat: 6.9271, Lon: 79.8612},
		"kandy":   {Place: "Kandy", DisplayName: "Kandy, Central Province, Sri Lanka", Lat: 7.2906, Lon: 80.6337},
	}}
}

// Resolve implements geocode.Geocoder.
func (p *Places) Resolve(ctx context.Context, place string) (geocode.Location, error) {
	if err := ctx.Err(); err != nil {
		return geocode.Location{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	key := strings.ToLower(strings.TrimSpace(place))
	if key == "" {
		return geocode.Location{}, apperr.Validation("place is required")
	}
	loc, ok := p.known[key]
	if !ok {
		return geocode.Location{}, apperr.Lookup("could not find location: %s", place)
	}
	return loc, nil
}

// Calls returns how many lookups were made.
func (p *Places) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
