package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexivanou/weather-widget/internal/model"
	"github.com/alexivanou/weather-widget/internal/repository"
	"github.com/alexivanou/weather-widget/internal/service"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) GetReport(ctx context.Context, city string) (*model.WeatherReport, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherReport), args.Error(1)
}

func (m *MockService) GetReportByCoord(ctx context.Context, lat, lon float64) (*model.WeatherReport, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherReport), args.Error(1)
}

func (m *MockService) ListCities(ctx context.Context) (*model.CitiesResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CitiesResponse), args.Error(1)
}

func (m *MockService) AddCity(ctx context.Context, req model.AddCityRequest) (*model.SavedCity, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SavedCity), args.Error(1)
}

func (m *MockService) RemoveCity(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) ReorderCities(ctx context.Context, req model.ReorderRequest) (*model.CitiesResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CitiesResponse), args.Error(1)
}

func (m *MockService) Dashboard(ctx context.Context) (*model.DashboardResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardResponse), args.Error(1)
}

func dewPoint(v float64) *float64 { return &v }

func TestHandler_GetWeather(t *testing.T) {
	tests := []struct {
		name           string
		city           string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name: "successful request",
			city: "London",
			mockSetup: func(ms *MockService) {
				ms.On("GetReport", mock.Anything, "London").Return(&model.WeatherReport{
					Name: "London",
					Main: model.Readings{Temp: 280, DewPoint: dewPoint(275)},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing city parameter",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "lookup failed",
			city: "Nonexistentville",
			mockSetup: func(ms *MockService) {
				ms.On("GetReport", mock.Anything, "Nonexistentville").Return(nil, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)

			req, _ := http.NewRequest("GET", "/api/v1/weather", nil)
			q := req.URL.Query()
			if tt.city != "" {
				q.Add("city", tt.city)
			}
			req.URL.RawQuery = q.Encode()

			rr := httptest.NewRecorder()
			handler.GetWeather(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var report model.WeatherReport
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
				assert.Equal(t, 275.0, *report.Main.DewPoint)
			}
		})
	}
}

func TestHandler_GetWeatherByCoord(t *testing.T) {
	tests := []struct {
		name           string
		lat            string
		lon            string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name: "successful request",
			lat:  "51.51",
			lon:  "-0.13",
			mockSetup: func(ms *MockService) {
				ms.On("GetReportByCoord", mock.Anything, 51.51, -0.13).Return(&model.WeatherReport{Name: "London"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing lon",
			lat:            "51.51",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid lat",
			lat:            "north",
			lon:            "0",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "out of range",
			lat:  "95",
			lon:  "0",
			mockSetup: func(ms *MockService) {
				ms.On("GetReportByCoord", mock.Anything, 95.0, 0.0).
					Return(nil, fmt.Errorf("%w: coordinates out of range", service.ErrInvalidRequest))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "upstream failure",
			lat:  "1",
			lon:  "2",
			mockSetup: func(ms *MockService) {
				ms.On("GetReportByCoord", mock.Anything, 1.0, 2.0).Return(nil, errors.New("timeout"))
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)
			req, _ := http.NewRequest("GET", "/api/v1/weather/coord", nil)
			q := req.URL.Query()
			if tt.lat != "" {
				q.Add("lat", tt.lat)
			}
			if tt.lon != "" {
				q.Add("lon", tt.lon)
			}
			req.URL.RawQuery = q.Encode()
			rr := httptest.NewRecorder()
			handler.GetWeatherByCoord(rr, req)
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestHandler_AddCity(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"name":"Paris","country":"FR"}`,
			mockSetup: func(ms *MockService) {
				ms.On("AddCity", mock.Anything, model.AddCityRequest{Name: "Paris", Country: "FR"}).
					Return(&model.SavedCity{ID: 1, Name: "Paris", Country: "FR", Order: 1}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate",
			body: `{"name":"Paris","country":"FR"}`,
			mockSetup: func(ms *MockService) {
				ms.On("AddCity", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("failed to add city: %w", repository.ErrDuplicateCity))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "storage failure",
			body: `{"name":"Paris"}`,
			mockSetup: func(ms *MockService) {
				ms.On("AddCity", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)
			req := httptest.NewRequest("POST", "/api/v1/cities", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.AddCity(rr, req)
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestHandler_RemoveCity(t *testing.T) {
	mockService := new(MockService)
	mockService.On("RemoveCity", mock.Anything, 4).Return(true, nil)
	mockService.On("RemoveCity", mock.Anything, 5).Return(false, nil)
	handler := NewHandler(mockService, nil)

	tests := []struct {
		id             string
		expectedStatus int
	}{
		{id: "4", expectedStatus: http.StatusNoContent},
		{id: "5", expectedStatus: http.StatusNotFound},
		{id: "abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/api/v1/cities/"+tt.id, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rr := httptest.NewRecorder()
			handler.RemoveCity(rr, req)
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestHandler_ReorderCities(t *testing.T) {
	mockService := new(MockService)
	mockService.On("ReorderCities", mock.Anything, model.ReorderRequest{IDs: []int{2, 1}}).
		Return(&model.CitiesResponse{Cities: []model.SavedCity{{ID: 2, Order: 1}, {ID: 1, Order: 2}}}, nil)
	mockService.On("ReorderCities", mock.Anything, model.ReorderRequest{IDs: []int{1}}).
		Return(nil, fmt.Errorf("failed to reorder cities: %w", repository.ErrInvalidOrder))
	handler := NewHandler(mockService, nil)

	rr := httptest.NewRecorder()
	handler.ReorderCities(rr, httptest.NewRequest("PUT", "/api/v1/cities/order", strings.NewReader(`{"ids":[2,1]}`)))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ReorderCities(rr, httptest.NewRequest("PUT", "/api/v1/cities/order", strings.NewReader(`{"ids":[1]}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, repository.ErrInvalidOrder.Error(), body.Message)
}

func TestRouter_RequestID(t *testing.T) {
	router := NewRouter(new(MockService), nil, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
