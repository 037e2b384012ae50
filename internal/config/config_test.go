package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HELIOSHEET_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HorizonsURL != "https://ssd.jpl.nasa.gov/api/horizons.api" {
		t.Errorf("HorizonsURL = %q", cfg.HorizonsURL)
	}
	if cfg.CDAWebURL != "https://cdaweb.gsfc.nasa.gov/WS/cdasr/1" {
		t.Errorf("CDAWebURL = %q", cfg.CDAWebURL)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", cfg.FetchTimeout)
	}
	if cfg.VSOP87Enabled {
		t.Errorf("VSOP87Enabled = true, want false")
	}
	if cfg.SurfaceModel != "parker" {
		t.Errorf("SurfaceModel = %q, want parker", cfg.SurfaceModel)
	}
	if cfg.Parameters.WindSpeedKmS != 400.0 || cfg.Parameters.NPhi != 100 {
		t.Errorf("Parameters = %+v, want baseline defaults", cfg.Parameters)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	body := `
[horizons]
url = "http://horizons.test"

[fetch]
timeout = "5s"

[vsop87]
enabled = true
directory = "/data/vsop87"

[surface]
model = "ripple"
wind_km_s = 550.0
n_phi = 48
`
	if err := os.WriteFile(filepath.Join(dir, "conf.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write conf.toml: %v", err)
	}
	t.Setenv("HELIOSHEET_CONFIG", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HorizonsURL != "http://horizons.test" {
		t.Errorf("HorizonsURL = %q", cfg.HorizonsURL)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.FetchTimeout)
	}
	if !cfg.VSOP87Enabled || cfg.VSOP87Dir != "/data/vsop87" {
		t.Errorf("vsop87 = (%v, %q)", cfg.VSOP87Enabled, cfg.VSOP87Dir)
	}
	if cfg.SurfaceModel != "ripple" {
		t.Errorf("SurfaceModel = %q, want ripple", cfg.SurfaceModel)
	}
	if cfg.Parameters.WindSpeedKmS != 550.0 || cfg.Parameters.NPhi != 48 {
		t.Errorf("Parameters = %+v, want file overrides", cfg.Parameters)
	}
	// Untouched keys keep their defaults.
	if cfg.Parameters.RMaxAU != 1.5 {
		t.Errorf("RMaxAU = %v, want default 1.5", cfg.Parameters.RMaxAU)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "conf.toml"), []byte("[surface]\nwind_km_s = 500.0\n"), 0o644); err != nil {
		t.Fatalf("write conf.toml: %v", err)
	}
	t.Setenv("HELIOSHEET_CONFIG", dir)
	t.Setenv("HELIOSHEET_SURFACE_WIND_KM_S", "620")
	t.Setenv("HELIOSHEET_CDAWEB_URL", "http://cdaweb.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Parameters.WindSpeedKmS != 620 {
		t.Errorf("WindSpeedKmS = %v, want env override 620", cfg.Parameters.WindSpeedKmS)
	}
	if cfg.CDAWebURL != "http://cdaweb.test" {
		t.Errorf("CDAWebURL = %q, want env override", cfg.CDAWebURL)
	}
}

func TestLoadMissingConfiguredFile(t *testing.T) {
	t.Setenv("HELIOSHEET_CONFIG", t.TempDir())
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for configured directory without conf.toml")
	}
}
