package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexivanou/weather-widget/internal/model"
)

// GetReport looks up the current weather for a city. A nil report with a nil
// error means the lookup failed; the cause has already been logged.
func (s *Service) GetReport(ctx context.Context, city string) (*model.WeatherReport, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", ErrInvalidRequest)
	}

	w := s.newWidget()
	w.FetchReport(ctx, city)
	return w.Report(), nil
}

// GetReportByCoord looks up the current weather at a coordinate and returns any upstream error
func (s *Service) GetReportByCoord(ctx context.Context, lat, lon float64) (*model.WeatherReport, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidRequest)
	}

	w := s.newWidget()
	if err := w.FetchReportByCoord(ctx, lat, lon); err != nil {
		return nil, fmt.Errorf("failed to fetch report by coordinates: %w", err)
	}
	return w.Report(), nil
}

// Dashboard fetches a report for every saved city in list order. Lookups run one
// after another; a failed lookup leaves its entry's report nil.
func (s *Service) Dashboard(ctx context.Context) (*model.DashboardResponse, error) {
	cities, err := s.cityRepo.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	reports := make([]model.SortableWeatherReport, 0, len(cities))
	for _, city := range cities {
		w := s.newWidget()
		w.FetchReport(ctx, city.Query())
		reports = append(reports, model.SortableWeatherReport{
			Order:  city.Order,
			City:   city,
			Report: w.Report(),
		})
	}

	return &model.DashboardResponse{Reports: reports}, nil
}
