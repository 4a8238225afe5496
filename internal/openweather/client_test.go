package openweather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.WeatherConfig)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.WeatherConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		GeoBaseURL: srv.URL + "/",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewClient(cfg, srv.Client()), srv
}

func TestClient_Geocode(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`[{"name":"London","lat":51.51,"lon":-0.13,"country":"GB"}]`))
	})

	matches, err := client.Geocode(context.Background(), "London", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "London", matches[0].Name)
	assert.Equal(t, "GB", matches[0].Country)
	assert.InDelta(t, 51.51, *matches[0].Lat, 1e-9)
	assert.InDelta(t, -0.13, *matches[0].Lon, 1e-9)
}

func TestClient_CurrentWeather(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "51.51", r.URL.Query().Get("lat"))
		assert.Equal(t, "-0.13", r.URL.Query().Get("lon"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.False(t, r.URL.Query().Has("lang"))
		w.Write([]byte(`{"main":{"temp":7.2},"name":"London","sys":{"country":"GB"}}`))
	}, func(c *config.WeatherConfig) { c.Units = "metric" })

	report, err := client.CurrentWeather(context.Background(), 51.51, -0.13)
	require.NoError(t, err)
	assert.Equal(t, 7.2, report.Main.Temp)
	assert.Nil(t, report.Main.DewPoint)
}

func TestClient_OneCall(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/onecall", r.URL.Path)
		assert.Equal(t, "minutely,hourly,daily,alerts", r.URL.Query().Get("exclude"))
		assert.False(t, r.URL.Query().Has("units"))
		w.Write([]byte(`{"lat":51.51,"lon":-0.13,"current":{"dt":1,"temp":280,"dew_point":275}}`))
	})

	snapshot, err := client.OneCall(context.Background(), 51.51, -0.13)
	require.NoError(t, err)
	require.NotNil(t, snapshot.Current)
	require.NotNil(t, snapshot.Current.DewPoint)
	assert.Equal(t, 275.0, *snapshot.Current.DewPoint)
}

func TestClient_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod":401,"message":"Invalid API key."}`))
	})

	_, err := client.CurrentWeather(context.Background(), 1, 2)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, EndpointCurrentWeather, apiErr.Endpoint)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API key.", apiErr.Message)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_APIErrorWithoutBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.OneCall(context.Background(), 1, 2)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "openweather onecall: unexpected status 502", err.Error())
}

func TestClient_DecodeError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.Geocode(context.Background(), "London", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode geocode response")
}

func TestClient_TransportErrorHidesKey(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.Geocode(context.Background(), "London", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call geocode")
	assert.NotContains(t, err.Error(), "test-key")
}
