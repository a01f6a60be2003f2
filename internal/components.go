package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/daivaya/internal/archive"
	"github.com/starford/daivaya/internal/chart"
	"github.com/starford/daivaya/internal/ephemeris"
	"github.com/starford/daivaya/internal/geocode"
	"github.com/starford/daivaya/internal/horoscope"
	"github.com/starford/daivaya/internal/identity"
	"github.com/starford/daivaya/internal/metrics"
	"github.com/starford/daivaya/internal/prompt"
	"github.com/starford/daivaya/internal/reading"
	"github.com/starford/daivaya/internal/sse"
	"github.com/starford/daivaya/internal/store"
)

// Components are the collaborators built from a Config.
type Components struct {
	Service *horoscope.Service
	Store   *store.DB
	Auth    identity.Provider
	Events  *sse.Broker
	Prompts *prompt.Library
	Metrics *metrics.Metrics
}

// Close releases the event broker and the ledger database.
func (c *Components) Close() error {
	c.Events.Close()
	return c.Store.Close()
}

// Build wires every collaborator from cfg. The caller must Close the result.
func Build(ctx context.Context, cfg *Config, logger *slog.Logger) (*Components, error) {
	calc, err := newCalculator(cfg.Chart)
	if err != nil {
		return nil, err
	}

	geo := newGeocoder(cfg.Geocoder, logger)
	auth := newIdentity(cfg.Auth)

	if err := os.MkdirAll(cfg.Archive.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	files, err := archive.NewFS(cfg.Archive.Path)
	if err != nil {
		return nil, fmt.Errorf("init archive: %w", err)
	}

	prompts, err := prompt.New(cfg.Reading.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("init prompts: %w", err)
	}

	gen, err := newGenerator(ctx, cfg.Reading)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Ledger.Driver, cfg.Ledger.DSN)
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	// A failed sync leaves the index stale, not wrong.
	if err := store.Sync(ctx, db, files, logger); err != nil {
		logger.Warn("initial archive sync failed", slog.String("error", err.Error()))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	broker := sse.NewBroker()

	svc, err := horoscope.NewService(horoscope.Deps{
		Calculator: calc,
		Geocoder:   geo,
		Identity:   auth,
		Ledger:     db,
		Readings:   db,
		Archive:    files,
		Prompts:    prompts,
		Generator:  gen,
		Events:     broker,
		Metrics:    m,
		Logger:     logger,
		Prices: horoscope.Prices{
			Reading:  cfg.Ledger.Prices.Reading,
			Porondam: cfg.Ledger.Prices.Porondam,
			PDF:      cfg.Ledger.Prices.PDF,
		},
		SignupGrant: cfg.Ledger.SignupGrant,
	})
	if err != nil {
		broker.Close()
		db.Close()
		return nil, err
	}

	if cfg.Auth.Mode != AuthModeSupabase {
		if err := svc.EnsureAccount(ctx, identity.LocalUser); err != nil {
			broker.Close()
			db.Close()
			return nil, fmt.Errorf("open local account: %w", err)
		}
	}

	return &Components{
		Service: svc,
		Store:   db,
		Auth:    auth,
		Events:  broker,
		Prompts: prompts,
		Metrics: m,
	}, nil
}

func newCalculator(cfg ChartConfig) (*chart.Calculator, error) {
	mode, err := ephemeris.ParseAyanamsaMode(cfg.Ayanamsa)
	if err != nil {
		return nil, err
	}
	norm, err := chart.NewNormalizer(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return chart.NewCalculator(ephemeris.NewAnalytic(), norm, mode), nil
}

func newGeocoder(cfg GeocoderConfig, logger *slog.Logger) geocode.Geocoder {
	var geo geocode.Geocoder = geocode.NewNominatim(cfg.BaseURL, cfg.UserAgent, cfg.Timeout)
	if cfg.Cache.Enabled() {
		logger.Info("geocoder cache enabled", slog.String("redis_addr", cfg.Cache.RedisAddr))
		kv := geocode.NewRedisKV(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		geo = geocode.NewCached(geo, kv, cfg.Cache.TTL)
	}
	return geo
}

func newIdentity(cfg AuthConfig) identity.Provider {
	switch cfg.Mode {
	case AuthModeSupabase:
		return identity.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Timeout)
	case AuthModeToken:
		return identity.NewStatic(cfg.Token)
	default:
		return identity.NewStatic("")
	}
}

func newGenerator(ctx context.Context, cfg ReadingConfig) (reading.Generator, error) {
	switch cfg.Provider {
	case ProviderGemini:
		var opts []reading.GeminiOption
		if cfg.BaseURL != "" {
			opts = append(opts, reading.WithBaseURL(cfg.BaseURL))
		}
		return reading.NewGemini(ctx, cfg.APIKey, cfg.Model, opts...)
	case ProviderEcho, "":
		return reading.Echo{}, nil
	default:
		return nil, errors.New("unknown reading provider: " + cfg.Provider)
	}
}
