package prompt

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/daivaya/internal/chart"
	"github.com/starford/daivaya/internal/ephemeris"
	"github.com/starford/daivaya/internal/porondam"
)

func sampleReading() ReadingData {
	return ReadingData{
		D1: chart.Snapshot{Lagna: 3, Planets: map[ephemeris.Body]chart.Sign{ephemeris.Sun: 2, ephemeris.Moon: 5}},
		D9: chart.Snapshot{Lagna: 7, Planets: map[ephemeris.Body]chart.Sign{ephemeris.Sun: 6, ephemeris.Moon: 4}},
		Details: &chart.Summary{
			Nakshatra: chart.NakshatraSummary{Name: "Chitra", Pada: 1, Lord: ephemeris.Mars},
			Dasha:     chart.DashaSummary{CurrentMahadasha: "Jupiter", NextMahadasha: "Saturn", NextMahadashaStartYear: 2030, BalanceYears: 5.6},
		},
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestRenderBuiltinReading(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	out, err := l.Render(Reading, sampleReading())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		"The ascendant (lagna) is Cancer; the navamsa lagna is Scorpio.",
		"- Sun: Gemini\n- Moon: Virgo\n",
		"- Sun: Libra\n- Moon: Leo\n",
		"The Moon is in Chitra, pada 1, ruled by Mars.",
		"Next: Saturn from 2030.",
		"5.60 years",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("reading prompt lacks %q:\n%s", want, out)
		}
	}
}

func TestRenderReadingWithoutDetails(t *testing.T) {
	l, _ := New("")
	data := sampleReading()
	data.Details = nil
	out, err := l.Render(Reading, data)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "### Nakshatra") {
		t.Error("nakshatra section rendered without details")
	}
}

func TestRenderPorondam(t *testing.T) {
	l, _ := New("")
	rep, _ := porondam.Match(porondam.Party{Mansion: 0}, porondam.Party{Mansion: 15, Sign: 7})
	out, err := l.Render(Porondam, PorondamData{
		Bride:  chart.Summary{Lagna: 1, Nakshatra: chart.NakshatraSummary{Name: "Ashwini", Pada: 2}},
		Groom:  chart.Summary{Lagna: 9, Nakshatra: chart.NakshatraSummary{Name: "Vishakha", Pada: 4}},
		Report: rep,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "### Mahendra\nFavourable") || !strings.Contains(out, "of 7 porondams are favourable") {
		t.Errorf("porondam prompt:\n%s", out)
	}
}

func TestRenderUnknown(t *testing.T) {
	l, _ := New("")
	if _, err := l.Render("missing.tmpl", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, Reading), []byte("Lagna {{.D1.Lagna}} only"), 0o644)
	l, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	out, _ := l.Render(Reading, sampleReading())
	if out != "Lagna Cancer only\n" {
		t.Errorf("override = %q", out)
	}
}

func TestBrokenOverrideKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(dir, Reading), []byte("{{.D1.Lagna"), 0o644)
	if err := l.Reload(); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := l.Render(Reading, sampleReading()); err != nil {
		t.Errorf("previous templates lost: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Error("New accepted a broken override")
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var reloads atomic.Int32
	go func() {
		defer close(done)
		l.Watch(ctx, logger, func() { reloads.Add(1) })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, Reading), []byte("hot {{.D1.Lagna}}"), 0o644)

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		out, _ := l.Render(Reading, sampleReading())
		return out == "hot Cancer\n" && reloads.Load() > 0
	}, "template was not reloaded")
}
