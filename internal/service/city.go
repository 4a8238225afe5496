package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexivanou/weather-widget/internal/model"
)

const maxCityNameLength = 100

// ListCities returns the saved cities in display order
func (s *Service) ListCities(ctx context.Context) (*model.CitiesResponse, error) {
	cities, err := s.cityRepo.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return &model.CitiesResponse{Cities: cities}, nil
}

// AddCity appends a city to the end of the saved list
func (s *Service) AddCity(ctx context.Context, req model.AddCityRequest) (*model.SavedCity, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxCityNameLength {
		return nil, fmt.Errorf("%w: name must be 1 to %d characters", ErrInvalidRequest, maxCityNameLength)
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country != "" && len(country) != 2 {
		return nil, fmt.Errorf("%w: country must be a two-letter code", ErrInvalidRequest)
	}

	city, err := s.cityRepo.AddCity(ctx, name, country)
	if err != nil {
		return nil, fmt.Errorf("failed to add city: %w", err)
	}
	return city, nil
}

// RemoveCity deletes a saved city; false means it did not exist
func (s *Service) RemoveCity(ctx context.Context, id int) (bool, error) {
	removed, err := s.cityRepo.DeleteCity(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove city: %w", err)
	}
	return removed, nil
}

// ReorderCities applies a new order and returns the updated list
func (s *Service) ReorderCities(ctx context.Context, req model.ReorderRequest) (*model.CitiesResponse, error) {
	if err := s.cityRepo.ReorderCities(ctx, req.IDs); err != nil {
		return nil, fmt.Errorf("failed to reorder cities: %w", err)
	}
	return s.ListCities(ctx)
}
