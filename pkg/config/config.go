package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Request  RequestConfig  `yaml:"request"`
	DB       DBConfig       `yaml:"db"`
	LandMask LandMaskConfig `yaml:"landmask"`
	Weather  WeatherConfig  `yaml:"weather"`
	Router   RouterConfig   `yaml:"router"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"` // DEBUG, INFO, WARN, ERROR
}

// RequestConfig holds outbound HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// DBConfig holds the SQLite cache database settings.
type DBConfig struct {
	Path     string   `yaml:"path"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

// LandMaskConfig holds coastline dataset settings.
type LandMaskConfig struct {
	// Optional local GeoJSON overriding the embedded dataset.
	Path string `yaml:"path"`
	// Remote fallback if neither embedded nor local data can be parsed.
	URL string `yaml:"url"`
}

// WeatherConfig holds marine forecast provider settings.
type WeatherConfig struct {
	BaseURL      string   `yaml:"base_url"`
	FetchTimeout Duration `yaml:"fetch_timeout"`
	ForecastDays int      `yaml:"forecast_days"`
}

// RouterConfig holds route search tunables.
type RouterConfig struct {
	// Finest decimal precision of the visited-table coordinate key; the
	// search coarsens it to the step distance on long trips. Coarser
	// merges distinct nearby states, finer slows convergence. Zero pins
	// whole-degree cells.
	KeyPrecision int `yaml:"key_precision"`
	// Minimum success radius around the destination in nautical miles;
	// widened to the step distance on long trips.
	ReachThresholdNm float64 `yaml:"reach_threshold_nm"`
	CruiseSpeedKn    float64 `yaml:"cruise_speed_kn"`
	FuelBurnMtPerH   float64 `yaml:"fuel_burn_mt_per_h"`
	// Hard cap on node expansions before falling back to a direct path.
	MaxExpansions int `yaml:"max_expansions"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8159",
		},
		Log: LogConfig{
			Path:  "logs/searoute.log",
			Level: "INFO",
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		DB: DBConfig{
			Path:     "data/searoute.db",
			CacheTTL: Duration(6 * time.Hour),
		},
		LandMask: LandMaskConfig{
			URL: "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_land.geojson",
		},
		Weather: WeatherConfig{
			BaseURL:      "https://marine-api.open-meteo.com/v1/marine",
			FetchTimeout: Duration(10 * time.Second),
			ForecastDays: 7,
		},
		Router: RouterConfig{
			KeyPrecision:     2,
			ReachThresholdNm: 3,
			CruiseSpeedKn:    20,
			FuelBurnMtPerH:   1.5,
			MaxExpansions:    200000,
		},
	}
}

// Load reads the configuration file, applying defaults for missing values
// and environment overrides (SEAROUTE_ADDR, SEAROUTE_WEATHER_URL) on top.
// A .env file in the working directory is honoured if present.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config file is fine; run on defaults.
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	// Best effort; absence of .env is not an error.
	_ = godotenv.Load()

	if v := os.Getenv("SEAROUTE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SEAROUTE_WEATHER_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("SEAROUTE_LANDMASK_URL"); v != "" {
		cfg.LandMask.URL = v
	}
}

// Save writes the configuration to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# SeaRoute Configuration
# ---------------------
# Durations accept: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
