package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/daivaya/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_SupabaseNeedsURLAndKey(t *testing.T) {
	cfg := AuthConfig{Mode: "supabase"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("supabase mode without url should fail")
	}
	cfg = AuthConfig{Mode: "supabase", SupabaseURL: "https://abc.supabase.co", SupabaseKey: "anon"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("complete supabase config should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("supabase mode should be enabled")
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestChartConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChartConfig
		wantErr bool
	}{
		{"default", ChartConfig{Timezone: "Asia/Colombo", Ayanamsa: "lahiri"}, false},
		{"raman", ChartConfig{Timezone: "UTC", Ayanamsa: "Raman"}, false},
		{"unknown timezone", ChartConfig{Timezone: "Mars/Olympus", Ayanamsa: "lahiri"}, true},
		{"unknown ayanamsa", ChartConfig{Timezone: "UTC", Ayanamsa: "fagan"}, true},
		{"empty", ChartConfig{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestLedgerConfig(t *testing.T) {
	cfg := NewDefaultConfig().Ledger
	cfg.Driver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown driver should fail")
	}

	cfg = NewDefaultConfig().Ledger
	cfg.Prices.Reading = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative price should fail")
	}
}

func TestReadingConfig_GeminiNeedsKey(t *testing.T) {
	cfg := ReadingConfig{Provider: ProviderGemini}
	if err := cfg.Validate(); err == nil {
		t.Fatal("gemini without api key should fail")
	}
	cfg.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("gemini with key should pass: %v", err)
	}
}

func TestGeocoderCacheNeedsTTL(t *testing.T) {
	cfg := NewDefaultConfig().Geocoder
	cfg.Cache = CacheConfig{RedisAddr: "localhost:6379"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("cache without ttl should fail")
	}
	if !cfg.Cache.Enabled() {
		t.Error("cache with addr should be enabled")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestLoadYAMLWithEnv(t *testing.T) {
	t.Setenv("DAIVAYA_TEST_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  http:
    port: 9000
    read_timeout: 5s
auth:
  mode: token
  token: ${DAIVAYA_TEST_TOKEN}
ledger:
  prices:
    reading: 4
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9000 || cfg.App.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("http = %+v", cfg.App.HTTP)
	}
	if cfg.Auth.Token != "from-env" {
		t.Errorf("token = %q, want expanded env", cfg.Auth.Token)
	}
	if cfg.Ledger.Prices.Reading != 4 || cfg.Ledger.Prices.PDF != 1 {
		t.Errorf("prices = %+v, want reading overridden and pdf defaulted", cfg.Ledger.Prices)
	}
	if cfg.Chart.Timezone != "Asia/Colombo" {
		t.Errorf("timezone = %q, want default", cfg.Chart.Timezone)
	}
}
