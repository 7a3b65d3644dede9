package toolclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// Weather is a tool that reports current conditions for a location,
// grounded on original_source's weather_tools.py get_weather_conditions
// (geocode the location, then query current-conditions by coordinates).
type Weather struct {
	APIKey  string
	BaseURL string
	Units   string
	Client  *http.Client
}

// WeatherOption configures a Weather tool.
type WeatherOption func(*Weather)

// WithWeatherBaseURL overrides the weather API's base URL.
func WithWeatherBaseURL(baseURL string) WeatherOption {
	return func(w *Weather) { w.BaseURL = baseURL }
}

// WithWeatherUnits sets "imperial" or "metric", matching weather_tools.py's
// default.
func WithWeatherUnits(units string) WeatherOption {
	return func(w *Weather) { w.Units = units }
}

// NewWeather creates a Weather tool. If apiKey is empty it reads
// WEATHER_API_KEY from the environment.
func NewWeather(apiKey string, opts ...WeatherOption) (*Weather, error) {
	if apiKey == "" {
		apiKey = os.Getenv("WEATHER_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY not set")
	}

	w := &Weather{
		APIKey:  apiKey,
		BaseURL: "https://api.openweathermap.org/data/2.5/weather",
		Units:   "imperial",
		Client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Weather) Name() string { return "Weather_Conditions" }

func (w *Weather) Description() string {
	return "Reports current weather conditions for a named location. Input should be a place name."
}

func (w *Weather) Call(ctx context.Context, input string) (string, error) {
	params := url.Values{}
	params.Set("q", input)
	params.Set("appid", w.APIKey)
	params.Set("units", w.Units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("toolclient: build weather request: %w", err)
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("toolclient: weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", httpError(resp.StatusCode, string(body))
	}

	var result struct {
		Name string `json:"name"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("toolclient: decode weather response: %w", err)
	}

	description := ""
	if len(result.Weather) > 0 {
		description = result.Weather[0].Description
	}
	return fmt.Sprintf("%s: %.1f degrees, %s, humidity %d%%", result.Name, result.Main.Temp, description, result.Main.Humidity), nil
}
