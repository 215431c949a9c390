// Package weather fetches hourly marine forecasts and converts them into a
// normalized sea-state risk for the route cost model.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"searoute/pkg/geo"
)

// Risk weighting. Wave height dominates; wind-wave height refines.
const (
	waveWeight     = 0.65
	windWaveWeight = 0.35

	// Normalization ceilings in meters. Seas at or above these values
	// saturate their component at 1.
	waveCeilingM     = 5.0
	windWaveCeilingM = 4.0
)

// Series is an hourly forecast for a trip's bounding region, indexed by
// elapsed hours from departure. Immutable once fetched.
type Series struct {
	WaveHeight     []float64
	WindWaveHeight []float64
}

// Len returns the number of hourly samples.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.WaveHeight)
}

// SampleRisk returns the normalized sea-state risk in [0,1] at the given
// elapsed time. The series is indexed at round(elapsedHours) clamped to the
// valid range. A nil or empty series means zero risk everywhere.
func SampleRisk(s *Series, elapsedHours float64) float64 {
	if s.Len() == 0 {
		return 0
	}

	idx := int(math.Round(elapsedHours))
	if idx < 0 {
		idx = 0
	}
	if idx >= s.Len() {
		idx = s.Len() - 1
	}

	wave := clamp01(s.WaveHeight[idx] / waveCeilingM)

	windWave := 0.0
	if idx < len(s.WindWaveHeight) {
		windWave = clamp01(s.WindWaveHeight[idx] / windWaveCeilingM)
	}

	return waveWeight*wave + windWaveWeight*windWave
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Fetcher is the subset of the request client used for forecast retrieval.
type Fetcher interface {
	Get(ctx context.Context, url, cacheKey string) ([]byte, error)
}

// Client retrieves marine forecasts from an Open-Meteo-compatible endpoint.
type Client struct {
	baseURL      string
	forecastDays int
	timeout      time.Duration
	fetcher      Fetcher
}

// NewClient creates a forecast client. forecastDays bounds the series length.
func NewClient(baseURL string, forecastDays int, timeout time.Duration, f Fetcher) *Client {
	if forecastDays <= 0 {
		forecastDays = 7
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, forecastDays: forecastDays, timeout: timeout, fetcher: f}
}

// marineResponse mirrors the provider's hourly payload.
type marineResponse struct {
	Hourly struct {
		WaveHeight     []float64 `json:"wave_height"`
		WindWaveHeight []float64 `json:"wind_wave_height"`
	} `json:"hourly"`
}

// Fetch retrieves the hourly forecast for the trip between origin and
// destination, sampled at the midpoint of their bounding box. Errors are
// returned to the caller, which must treat them as "zero risk everywhere",
// not as fatal.
func (c *Client) Fetch(ctx context.Context, origin, dest geo.Point) (*Series, error) {
	if c.fetcher == nil || c.baseURL == "" {
		return nil, fmt.Errorf("weather client not configured")
	}

	mid := bboxMidpoint(origin, dest)

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", mid.Lat))
	q.Set("longitude", fmt.Sprintf("%.4f", mid.Lon))
	q.Set("hourly", "wave_height,wind_wave_height")
	q.Set("forecast_days", fmt.Sprintf("%d", c.forecastDays))
	u := c.baseURL + "?" + q.Encode()

	// Quantize the cache key so nearby trips share a forecast
	cacheKey := fmt.Sprintf("marine:%.1f,%.1f:%d", mid.Lat, mid.Lon, c.forecastDays)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.fetcher.Get(ctx, u, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("marine forecast fetch failed: %w", err)
	}

	var resp marineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("marine forecast parse failed: %w", err)
	}
	if len(resp.Hourly.WaveHeight) == 0 {
		return nil, fmt.Errorf("marine forecast empty")
	}

	slog.Debug("Marine forecast fetched",
		"lat", mid.Lat, "lon", mid.Lon, "hours", len(resp.Hourly.WaveHeight))

	return &Series{
		WaveHeight:     resp.Hourly.WaveHeight,
		WindWaveHeight: resp.Hourly.WindWaveHeight,
	}, nil
}

// bboxMidpoint returns the center of the bounding box spanned by a and b,
// taking the shorter way around the antimeridian for longitude.
func bboxMidpoint(a, b geo.Point) geo.Point {
	lat := (a.Lat + b.Lat) / 2

	dLon := b.Lon - a.Lon
	if dLon > 180 {
		dLon -= 360
	}
	if dLon < -180 {
		dLon += 360
	}
	return geo.Point{Lat: lat, Lon: geo.NormalizeLon(a.Lon + dLon/2)}
}
