// Package weather answers the assistant's current-conditions tool using the
// Open-Meteo forecast API, which needs no API key.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.open-meteo.com"

// Request carries the coordinates the assistant asked about. Missing
// coordinates fall back to the restaurant's own location.
type Request struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Format    string   `json:"format,omitempty"` // "celsius" (default) or "fahrenheit"
}

// Report is a spoken-style weather summary.
type Report struct {
	Temperature float64 `json:"temperature"`
	Unit        string  `json:"unit"`
	WindSpeed   float64 `json:"windSpeed"`
	Conditions  string  `json:"conditions"`
	Summary     string  `json:"summary"`
}

// Client queries Open-Meteo for current conditions.
type Client struct {
	baseURL    string
	httpClient *http.Client

	defaultLat float64
	defaultLon float64
}

// NewClient creates a weather client with the restaurant's coordinates as
// the fallback location. A nil httpClient gets a default with a timeout.
func NewClient(defaultLat, defaultLon float64, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		defaultLat: defaultLat,
		defaultLon: defaultLon,
	}
}

// WithBaseURL overrides the API host, used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Current fetches current conditions for the requested coordinates.
func (c *Client) Current(ctx context.Context, req Request) (Report, error) {
	lat, lon := c.defaultLat, c.defaultLon
	if req.Latitude != nil && req.Longitude != nil {
		lat, lon = *req.Latitude, *req.Longitude
	}

	unit := "celsius"
	if req.Format == "fahrenheit" {
		unit = "fahrenheit"
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current_weather", "true")
	q.Set("temperature_unit", unit)

	endpoint := c.baseURL + "/v1/forecast?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Report{}, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Report{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Report{}, fmt.Errorf("failed to parse weather response: %w", err)
	}

	conditions := describeWeatherCode(payload.CurrentWeather.WeatherCode)
	degrees := "Celsius"
	if unit == "fahrenheit" {
		degrees = "Fahrenheit"
	}

	return Report{
		Temperature: payload.CurrentWeather.Temperature,
		Unit:        unit,
		WindSpeed:   payload.CurrentWeather.WindSpeed,
		Conditions:  conditions,
		Summary: fmt.Sprintf("It is currently %.0f degrees %s and %s.",
			payload.CurrentWeather.Temperature, degrees, conditions),
	}, nil
}

// describeWeatherCode maps WMO weather interpretation codes to speakable
// descriptions.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "foggy"
	case code >= 51 && code <= 57:
		return "drizzling"
	case code >= 61 && code <= 67:
		return "raining"
	case code >= 71 && code <= 77:
		return "snowing"
	case code >= 80 && code <= 82:
		return "experiencing rain showers"
	case code == 85 || code == 86:
		return "experiencing snow showers"
	case code >= 95:
		return "stormy"
	default:
		return "overcast"
	}
}
