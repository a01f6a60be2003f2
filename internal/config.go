package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/daivaya/internal/ephemeris"
	"github.com/starford/daivaya/internal/store"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
	AuthModeSupabase = "supabase"
)

// Reading providers.
const (
	ProviderEcho   = "echo"
	ProviderGemini = "gemini"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Chart    ChartConfig       `yaml:"chart"`
	Geocoder GeocoderConfig    `yaml:"geocoder"`
	Auth     AuthConfig        `yaml:"auth"`
	Ledger   LedgerConfig      `yaml:"ledger"`
	Reading  ReadingConfig     `yaml:"reading"`
	Archive  ArchiveConfig     `yaml:"archive"`
	Metrics  MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, section := range []validation.Validatable{
		&c.App, &c.Chart, &c.Geocoder, &c.Auth, &c.Ledger, &c.Reading, &c.Archive,
	} {
		if err := section.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
	)
}

// ChartConfig selects the civil timezone births are entered in and the
// sidereal offset.
type ChartConfig struct {
	Timezone string `yaml:"timezone"`
	Ayanamsa string `yaml:"ayanamsa"`
}

// Validate validates the chart configuration.
func (c *ChartConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.Required, validation.By(func(any) error {
			if _, err := time.LoadLocation(c.Timezone); err != nil {
				return fmt.Errorf("unknown timezone %q", c.Timezone)
			}
			return nil
		})),
		validation.Field(&c.Ayanamsa, validation.Required, validation.By(func(any) error {
			_, err := ephemeris.ParseAyanamsaMode(c.Ayanamsa)
			return err
		})),
	)
}

// GeocoderConfig points at a Nominatim instance.
type GeocoderConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Cache     CacheConfig   `yaml:"cache"`
}

// Validate validates the geocoder configuration.
func (c *GeocoderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.UserAgent, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Cache),
	)
}

// CacheConfig enables the Redis place cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return c.RedisAddr != "" }

// Validate validates the cache configuration.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.RedisDB, validation.Min(0)),
		validation.Field(&c.TTL, validation.When(c.RedisAddr != "", validation.Required)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how requests are authenticated:
//   - "disabled" (default): every request runs as the local account.
//   - "token": Bearer token authentication; Token must be non-empty.
//   - "supabase": hosted accounts; SupabaseURL and SupabaseKey are required.
type AuthConfig struct {
	Mode        string        `yaml:"mode"`
	Token       string        `yaml:"token"`
	SupabaseURL string        `yaml:"supabase_url"`
	SupabaseKey string        `yaml:"supabase_key"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken, AuthModeSupabase)),
		validation.Field(&c.SupabaseURL, validation.When(c.Mode == AuthModeSupabase, validation.Required, is.URL)),
		validation.Field(&c.SupabaseKey, validation.When(c.Mode == AuthModeSupabase, validation.Required)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when requests must carry credentials.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode != AuthModeDisabled
}

// LedgerConfig holds the credit ledger database and prices.
type LedgerConfig struct {
	Driver      string       `yaml:"driver"`
	DSN         string       `yaml:"dsn"`
	SignupGrant int          `yaml:"signup_grant"`
	Prices      PricesConfig `yaml:"prices"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(store.DriverSQLite, store.DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.SignupGrant, validation.Min(0)),
		validation.Field(&c.Prices),
	)
}

// PricesConfig are the credit costs of paid operations.
type PricesConfig struct {
	Reading  int `yaml:"reading"`
	Porondam int `yaml:"porondam"`
	PDF      int `yaml:"pdf"`
}

// Validate validates the prices.
func (c PricesConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Reading, validation.Min(0)),
		validation.Field(&c.Porondam, validation.Min(0)),
		validation.Field(&c.PDF, validation.Min(0)),
	)
}

// ReadingConfig selects the reading generator and the prompt override
// directory.
type ReadingConfig struct {
	Provider     string `yaml:"provider"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	TemplatesDir string `yaml:"templates_dir"`
}

// Validate validates the reading configuration.
func (c *ReadingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderEcho, ProviderGemini)),
		validation.Field(&c.APIKey, validation.When(c.Provider == ProviderGemini, validation.Required)),
		validation.Field(&c.BaseURL, is.URL),
	)
}

// ArchiveConfig holds the directory readings are archived in.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:         8000,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 180 * time.Second,
			},
		},
		Chart: ChartConfig{
			Timezone: "Asia/Colombo",
			Ayanamsa: "lahiri",
		},
		Geocoder: GeocoderConfig{
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "daivaya/1.0",
			Timeout:   10 * time.Second,
			Cache: CacheConfig{
				TTL: 30 * 24 * time.Hour,
			},
		},
		Auth: AuthConfig{
			Mode:    AuthModeDisabled,
			Timeout: 10 * time.Second,
		},
		Ledger: LedgerConfig{
			Driver:      store.DriverSQLite,
			DSN:         "./daivaya.db",
			SignupGrant: 3,
			Prices: PricesConfig{
				Reading:  1,
				Porondam: 1,
				PDF:      1,
			},
		},
		Reading: ReadingConfig{
			Provider: ProviderEcho,
		},
		Archive: ArchiveConfig{
			Path: "./readings",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
