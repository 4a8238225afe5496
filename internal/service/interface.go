package service

import (
	"context"

	"github.com/alexivanou/weather-widget/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	GetReport(ctx context.Context, city string) (*model.WeatherReport, error)
	GetReportByCoord(ctx context.Context, lat, lon float64) (*model.WeatherReport, error)
	ListCities(ctx context.Context) (*model.CitiesResponse, error)
	AddCity(ctx context.Context, req model.AddCityRequest) (*model.SavedCity, error)
	RemoveCity(ctx context.Context, id int) (bool, error)
	ReorderCities(ctx context.Context, req model.ReorderRequest) (*model.CitiesResponse, error)
	Dashboard(ctx context.Context) (*model.DashboardResponse, error)
}
