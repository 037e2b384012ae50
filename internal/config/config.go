package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/heliosheet/model"
)

// Config carries the tool configuration shared by the interactive CLI
// and the scene server. Values come from conf.toml in the directory
// named by HELIOSHEET_CONFIG, overridden by HELIOSHEET_* environment
// variables, with built-in defaults underneath. Flags on the binaries
// override all of it.
type Config struct {
	// Upstream endpoints.
	HorizonsURL  string
	CDAWebURL    string
	FetchTimeout time.Duration

	// Optional VSOP87 ephemeris for the Earth offset. When disabled
	// the fixed 1 AU offset is used.
	VSOP87Enabled bool
	VSOP87Dir     string

	// CatalogPath points at a spacecraft catalog JSON; empty selects
	// the built-in catalog.
	CatalogPath string
	OutputDir   string

	SurfaceModel string
	Parameters   model.SpiralParameters
}

// Load reads configuration. A missing HELIOSHEET_CONFIG directory is
// fine; a configured directory without a readable conf.toml is not.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HELIOSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir := os.Getenv("HELIOSHEET_CONFIG"); dir != "" {
		v.SetConfigName("conf")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s/conf.toml: %w", dir, err)
		}
	}

	return Config{
		HorizonsURL:   v.GetString("horizons.url"),
		CDAWebURL:     v.GetString("cdaweb.url"),
		FetchTimeout:  v.GetDuration("fetch.timeout"),
		VSOP87Enabled: v.GetBool("vsop87.enabled"),
		VSOP87Dir:     v.GetString("vsop87.directory"),
		CatalogPath:   v.GetString("catalog.path"),
		OutputDir:     v.GetString("general.output_path"),
		SurfaceModel:  v.GetString("surface.model"),
		Parameters: model.SpiralParameters{
			TiltDeg:            v.GetFloat64("surface.tilt_deg"),
			AmplitudeDeg:       v.GetFloat64("surface.amplitude_deg"),
			RotationPeriodDays: v.GetFloat64("surface.rotation_days"),
			WindSpeedKmS:       v.GetFloat64("surface.wind_km_s"),
			RMinAU:             v.GetFloat64("surface.r_min_au"),
			RMaxAU:             v.GetFloat64("surface.r_max_au"),
			NPhi:               v.GetInt("surface.n_phi"),
			NR:                 v.GetInt("surface.n_r"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("horizons.url", "https://ssd.jpl.nasa.gov/api/horizons.api")
	v.SetDefault("cdaweb.url", "https://cdaweb.gsfc.nasa.gov/WS/cdasr/1")
	v.SetDefault("fetch.timeout", "30s")

	v.SetDefault("vsop87.enabled", false)
	v.SetDefault("vsop87.directory", "")

	v.SetDefault("catalog.path", "")
	v.SetDefault("general.output_path", ".")

	v.SetDefault("surface.model", "parker")
	defaults := model.DefaultSpiralParameters()
	v.SetDefault("surface.tilt_deg", defaults.TiltDeg)
	v.SetDefault("surface.amplitude_deg", defaults.AmplitudeDeg)
	v.SetDefault("surface.rotation_days", defaults.RotationPeriodDays)
	v.SetDefault("surface.wind_km_s", defaults.WindSpeedKmS)
	v.SetDefault("surface.r_min_au", defaults.RMinAU)
	v.SetDefault("surface.r_max_au", defaults.RMaxAU)
	v.SetDefault("surface.n_phi", defaults.NPhi)
	v.SetDefault("surface.n_r", defaults.NR)
}
