package service

import (
	"errors"

	"github.com/alexivanou/weather-widget/internal/repository"
	"github.com/alexivanou/weather-widget/internal/widget"
	"go.uber.org/zap"
)

// ErrInvalidRequest marks input the caller has to fix
var ErrInvalidRequest = errors.New("invalid request")

// Service provides business logic for the API
type Service struct {
	cityRepo repository.CityRepository
	client   widget.Client
	logger   *zap.Logger
	opts     widget.Options
}

// NewService creates a new service instance
func NewService(
	cityRepo repository.CityRepository,
	client widget.Client,
	logger *zap.Logger,
	opts widget.Options,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cityRepo: cityRepo,
		client:   client,
		logger:   logger,
		opts:     opts,
	}
}

// newWidget gives every lookup its own state so concurrent requests never share a report
func (s *Service) newWidget() *widget.Widget {
	return widget.New(s.client, s.logger, s.opts)
}
