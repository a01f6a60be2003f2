// Package horoscope coordinates chart computation, paid readings, credits
// and the reading archive for the API and CLI layers.
package horoscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/daivaya/internal/apperr"
	"github.com/starford/daivaya/internal/archive"
	"github.com/starford/daivaya/internal/chart"
	"github.com/starford/daivaya/internal/checksum"
	"github.com/starford/daivaya/internal/geocode"
	"github.com/starford/daivaya/internal/identity"
	"github.com/starford/daivaya/internal/metrics"
	"github.com/starford/daivaya/internal/models"
	"github.com/starford/daivaya/internal/parser"
	"github.com/starford/daivaya/internal/porondam"
	"github.com/starford/daivaya/internal/prompt"
	"github.com/starford/daivaya/internal/reading"
	"github.com/starford/daivaya/internal/sse"
	"github.com/starford/daivaya/internal/store"
)

// Prices are the credit costs of paid operations.
type Prices struct {
	Reading  int
	Porondam int
	PDF      int
}

// Publisher delivers account events to a user.
type Publisher interface {
	Publish(userID string, e sse.Event)
}

// Deps are the collaborators of a Service. Metrics and Events may be nil.
type Deps struct {
	Calculator  *chart.Calculator
	Geocoder    geocode.Geocoder
	Identity    identity.Provider
	Ledger      store.Ledger
	Readings    store.ReadingIndex
	Archive     archive.Provider
	Prompts     *prompt.Library
	Generator   reading.Generator
	Events      Publisher
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	Prices      Prices
	SignupGrant int
	// Now defaults to time.Now.
	Now         func() time.Time
}

// Service implements the operations behind the HTTP and MCP surfaces.
type Service struct {
	Deps
}

// NewService checks deps and fills defaults.
func NewService(d Deps) (*Service, error) {
	switch {
	case d.Calculator == nil:
		return nil, errors.New("horoscope: calculator is required")
	case d.Geocoder == nil:
		return nil, errors.New("horoscope: geocoder is required")
	case d.Identity == nil:
		return nil, errors.New("horoscope: identity provider is required")
	case d.Ledger == nil || d.Readings == nil:
		return nil, errors.New("horoscope: ledger and reading index are required")
	case d.Archive == nil:
		return nil, errors.New("horoscope: archive is required")
	case d.Prompts == nil || d.Generator == nil:
		return nil, errors.New("horoscope: prompts and generator are required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Events == nil {
		d.Events = nopPublisher{}
	}
	return &Service{Deps: d}, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, sse.Event) {}

// BirthInput is a birth as entered by a user.
type BirthInput struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Place string `json:"place"`
}

// ChartView is the response of a chart computation.
type ChartView struct {
	D1          chart.Snapshot   `json:"d1_chart"`
	D9          chart.Snapshot   `json:"d9_chart"`
	Details     chart.Summary    `json:"astro_details"`
	Dasha       chart.Dasha      `json:"dasha"`
	Location    geocode.Location `json:"location"`
	Fingerprint string           `json:"fingerprint"`
}

// computed is a chart together with the place it was resolved from.
type computed struct {
	result   *chart.Result
	location geocode.Location
}

// NewChartView shapes a computed chart for clients.
func NewChartView(res *chart.Result, loc geocode.Location) (*ChartView, error) {
	return computed{result: res, location: loc}.view()
}

func (c computed) view() (*ChartView, error) {
	v := &ChartView{
		D1:       c.result.D1,
		D9:       c.result.D9,
		Details:  c.result.Summary(),
		Dasha:    c.result.Dasha,
		Location: c.location,
	}
	fp, err := checksum.JSON(struct {
		D1      chart.Snapshot `json:"d1"`
		D9      chart.Snapshot `json:"d9"`
		Details chart.Summary  `json:"details"`
	}{v.D1, v.D9, v.Details})
	if err != nil {
		return nil, fmt.Errorf("horoscope: fingerprint: %w", err)
	}
	v.Fingerprint = fp
	return v, nil
}

func (s *Service) compute(ctx context.Context, in BirthInput) (computed, error) {
	loc, err := s.Geocoder.Resolve(ctx, in.Place)
	if err != nil {
		return computed{}, err
	}
	res, err := s.Calculator.Compute(ctx, chart.BirthMoment{Date: in.Date, Time: in.Time}, loc.Lat, loc.Lon, s.Now())
	if err != nil {
		return computed{}, err
	}
	return computed{result: res, location: loc}, nil
}

// Chart resolves the birth place and computes the chart.
func (s *Service) Chart(ctx context.Context, in BirthInput) (*ChartView, error) {
	defer s.observe("calculate_charts", s.Now())
	c, err := s.compute(ctx, in)
	s.Metrics.ChartComputed(err == nil)
	if err != nil {
		return nil, s.fail("calculate_charts", err)
	}
	return c.view()
}

// Compute is Chart without the response shaping, for exports.
func (s *Service) Compute(ctx context.Context, in BirthInput) (*chart.Result, geocode.Location, error) {
	defer s.observe("calculate_charts", s.Now())
	c, err := s.compute(ctx, in)
	s.Metrics.ChartComputed(err == nil)
	if err != nil {
		return nil, geocode.Location{}, s.fail("calculate_charts", err)
	}
	return c.result, c.location, nil
}

// Pair is the input of the compatibility operations. Person1 is matched as
// the bride and Person2 as the groom.
type Pair struct {
	Person1 BirthInput `json:"person1"`
	Person2 BirthInput `json:"person2"`
}

// PersonCharts are the charts of one partner.
type PersonCharts struct {
	D1      chart.Snapshot `json:"d1"`
	D9      chart.Snapshot `json:"d9"`
	Details chart.Summary  `json:"details"`
}

// Prepared holds both partners' charts for confirmation before paying.
type Prepared struct {
	Person1 PersonCharts `json:"person1"`
	Person2 PersonCharts `json:"person2"`
}

func (s *Service) computePair(ctx context.Context, p Pair) (computed, computed, error) {
	var a, b computed
	g, gctx := errgroup.WithContext(ctx)
	record := func(err error) error {
		// a chart cut short by its sibling's failure has no result of its own
		if !errors.Is(err, context.Canceled) || ctx.Err() != nil {
			s.Metrics.ChartComputed(err == nil)
		}
		return err
	}
	g.Go(func() error {
		var err error
		a, err = s.compute(gctx, p.Person1)
		return record(err)
	})
	g.Go(func() error {
		var err error
		b, err = s.compute(gctx, p.Person2)
		return record(err)
	})
	err := g.Wait()
	return a, b, err
}

func personCharts(c computed) PersonCharts {
	return PersonCharts{D1: c.result.D1, D9: c.result.D9, Details: c.result.Summary()}
}

// PreparePorondam computes both charts in parallel. It is free.
func (s *Service) PreparePorondam(ctx context.Context, p Pair) (*Prepared, error) {
	defer s.observe("prepare_porondam", s.Now())
	a, b, err := s.computePair(ctx, p)
	if err != nil {
		return nil, s.fail("prepare_porondam", err)
	}
	return &Prepared{Person1: personCharts(a), Person2: personCharts(b)}, nil
}

func (s *Service) observe(op string, start time.Time) {
	s.Metrics.Observe(op, s.Now().Sub(start).Seconds())
}

// fail records err and logs the kinds that indicate a server-side fault.
func (s *Service) fail(op string, err error) error {
	kind := KindOf(err)
	s.Metrics.Failed(op, kind)
	switch kind {
	case "computation", "upstream", "internal":
		s.Logger.Error("operation failed", slog.String("op", op), slog.String("error", err.Error()))
	}
	return err
}

var kinds = []struct {
	err  error
	name string
}{
	{apperr.ErrValidation, "validation"},
	{apperr.ErrLookup, "lookup"},
	{apperr.ErrUnauthorized, "unauthorized"},
	{apperr.ErrInsufficientCredits, "insufficient_credits"},
	{apperr.ErrNotFound, "not_found"},
	{apperr.ErrConflict, "conflict"},
	{apperr.ErrUnsupported, "unsupported"},
	{apperr.ErrUpstream, "upstream"},
	{apperr.ErrComputation, "computation"},
	{context.Canceled, "canceled"},
	{context.DeadlineExceeded, "timeout"},
}

// KindOf names the error kind of err for metrics and logs.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}

// requestID scopes the caller's idempotency key to the user and operation,
// or returns a fresh id when the caller sent none.
func requestID(op, userID, key string) string {
	if key = strings.TrimSpace(key); key != "" {
		return op + ":" + userID + ":" + key
	}
	return uuid.NewString()
}

// readingID derives a stable reading id from the charge key so that a
// replayed request finds the reading it already paid for.
func readingID(userID, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+"\x00"+key)).String()
}

// Outcome is the result of a paid reading.
type Outcome struct {
	Reading   string           `json:"reading"`
	Sections  []models.Section `json:"sections"`
	ReadingID string           `json:"reading_id"`
	Balance   int              `json:"balance"`
	Report    *PorondamReport  `json:"porondam,omitempty"`
}

// paid runs render, generate, charge, archive for one paid reading.
type paid struct {
	op     string
	kind   string
	price  int
	title  string
	prompt func() (string, error)
	meta   map[string]any
}

func (s *Service) runPaid(ctx context.Context, u identity.User, key string, p paid) (*Outcome, error) {
	reqID := requestID(p.op, u.ID, key)
	id := readingID(u.ID, reqID)

	prev, err := s.existing(ctx, u.ID, id)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		bal, err := s.Ledger.Balance(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		return &Outcome{Reading: prev.Body, Sections: prev.Sections, ReadingID: id, Balance: bal}, nil
	}

	// paid but not archived: regenerate without charging or announcing again
	_, settled, err := s.Ledger.EntryByRequest(ctx, reqID)
	if err != nil {
		return nil, err
	}

	if p.price > 0 && !settled {
		bal, err := s.Ledger.Balance(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if bal < p.price {
			return nil, apperr.New(apperr.ErrInsufficientCredits, "insufficient credits: %d required, %d available", p.price, bal)
		}
	}

	text, err := p.prompt()
	if err != nil {
		return nil, err
	}
	body, err := s.Generator.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	entry, err := s.Ledger.Charge(ctx, u.ID, p.price, reqID, p.op)
	if err != nil {
		return nil, err
	}
	balance := entry.Balance
	if settled {
		if balance, err = s.Ledger.Balance(ctx, u.ID); err != nil {
			return nil, err
		}
	} else {
		s.Metrics.CreditsCharged(p.kind, int64(p.price))
		s.Events.Publish(u.ID, sse.Event{Type: sse.CreditsCharged, Data: map[string]any{
			"amount":  p.price,
			"balance": entry.Balance,
			"memo":    p.op,
		}})
	}

	r := models.Reading{
		ID:          id,
		UserID:      u.ID,
		Kind:        p.kind,
		Title:       p.title,
		Body:        body,
		Sections:    parser.Sections(body),
		Frontmatter: p.meta,
		CreatedAt:   s.Now().UTC().Truncate(time.Second),
	}
	if err := s.archiveReading(ctx, r); err != nil {
		// the charge stands; the reading is still returned to the caller
		s.Logger.Error("archive reading", slog.String("id", id), slog.String("error", err.Error()))
	}
	s.Metrics.ReadingGenerated(p.kind)
	s.Events.Publish(u.ID, sse.Event{Type: sse.ReadingGenerated, Data: map[string]string{
		"reading_id": id,
		"kind":       p.kind,
	}})

	return &Outcome{Reading: body, Sections: r.Sections, ReadingID: id, Balance: balance}, nil
}

func (s *Service) existing(ctx context.Context, userID, id string) (*models.Reading, error) {
	_, err := s.Readings.GetReading(ctx, userID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.loadReading(userID, id)
}

// ChartData is the chart pair a reading is written for.
type ChartData struct {
	D1      chart.Snapshot `json:"d1_chart"`
	D9      chart.Snapshot `json:"d9_chart"`
	Details *chart.Summary `json:"astro_details,omitempty"`
}

// GenerateReading writes and charges the natal reading for charts. key makes
// the charge idempotent; an empty key charges once per call.
func (s *Service) GenerateReading(ctx context.Context, u identity.User, charts ChartData, key string) (*Outcome, error) {
	defer s.observe("generate_reading", s.Now())
	if len(charts.D1.Planets) == 0 || len(charts.D9.Planets) == 0 {
		return nil, s.fail("generate_reading", apperr.Validation("d1_chart and d9_chart are required"))
	}
	out, err := s.runPaid(ctx, u, key, paid{
		op:    "generate_reading",
		kind:  models.KindReading,
		price: s.Prices.Reading,
		title: fmt.Sprintf("%s lagna reading", charts.D1.Lagna),
		prompt: func() (string, error) {
			return s.Prompts.Render(prompt.Reading, prompt.ReadingData{D1: charts.D1, D9: charts.D9, Details: charts.Details})
		},
		meta: map[string]any{"lagna": charts.D1.Lagna.String()},
	})
	if err != nil {
		return nil, s.fail("generate_reading", err)
	}
	return out, nil
}

// PorondamReport is the deterministic part of a compatibility reading.
type PorondamReport struct {
	Bride chart.Summary `json:"bride"`
	Groom chart.Summary `json:"groom"`
	porondam.Report
}
