// Package openweather is a small client for the OpenWeatherMap geocoding,
// current weather and one-call endpoints.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/model"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	geocodePath        = "/geo/1.0/direct"
	currentWeatherPath = "/data/2.5/weather"
	oneCallPath        = "/data/2.5/onecall"

	// oneCallExclude trims the one-call response down to the current block
	oneCallExclude = "minutely,hourly,daily,alerts"
)

// Endpoint names used in errors and logs
const (
	EndpointGeocode        = "geocode"
	EndpointCurrentWeather = "weather"
	EndpointOneCall        = "onecall"
)

// APIError is returned when the provider answers with a non-2xx status
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openweather %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("openweather %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Client talks to OpenWeatherMap. It does not cache, retry or rate limit.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	geoBaseURL string
	units      string
	lang       string
}

// NewClient creates a client from configuration. A nil httpClient gets a traced
// client with the configured timeout.
func NewClient(cfg config.WeatherConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		geoBaseURL: strings.TrimRight(cfg.GeoBaseURL, "/"),
		units:      cfg.Units,
		lang:       cfg.Lang,
	}
}

// Geocode resolves a free-text city name to at most limit matches
func (c *Client) Geocode(ctx context.Context, city string, limit int) ([]model.CityInfo, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("limit", strconv.Itoa(limit))

	var matches []model.CityInfo
	if err := c.getJSON(ctx, EndpointGeocode, c.geoBaseURL+geocodePath, q, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// CurrentWeather fetches the current weather at a coordinate. The result has no dew point.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (*model.WeatherReport, error) {
	q := c.coordQuery(lat, lon)
	c.addDisplayParams(q)

	var report model.WeatherReport
	if err := c.getJSON(ctx, EndpointCurrentWeather, c.baseURL+currentWeatherPath, q, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// OneCall fetches the one-call snapshot with everything but the current block excluded
func (c *Client) OneCall(ctx context.Context, lat, lon float64) (*model.OneCallSnapshot, error) {
	q := c.coordQuery(lat, lon)
	q.Set("exclude", oneCallExclude)
	c.addDisplayParams(q)

	var snapshot model.OneCallSnapshot
	if err := c.getJSON(ctx, EndpointOneCall, c.baseURL+oneCallPath, q, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) coordQuery(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return q
}

// addDisplayParams adds units and language only when configured, so the
// provider defaults (Kelvin, English) apply otherwise
func (c *Client) addDisplayParams(q url.Values) {
	if c.units != "" {
		q.Set("units", c.units)
	}
	if c.lang != "" {
		q.Set("lang", c.lang)
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, q url.Values, out any) error {
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", endpoint, redactKey(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response body: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(endpoint, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// errorBody is the provider's error payload; cod is a number or a string depending on the endpoint
type errorBody struct {
	Message string `json:"message"`
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	apiErr := &APIError{Endpoint: endpoint, StatusCode: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Message = eb.Message
	}
	return apiErr
}

// redactKey strips the appid from transport errors, which embed the request URL
func redactKey(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return err
	}
	q := u.Query()
	if q.Has("appid") {
		q.Set("appid", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
}
