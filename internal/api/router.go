package api

import (
	"github.com/alexivanou/weather-widget/internal/service"
	"github.com/alexivanou/weather-widget/internal/stats"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(otelhttp.NewMiddleware("weather-widget"))
	router.Use(requestLogger(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/weather", handler.GetWeather).Methods("GET")
	v1.HandleFunc("/weather/coord", handler.GetWeatherByCoord).Methods("GET")
	v1.HandleFunc("/cities", handler.ListCities).Methods("GET")
	v1.HandleFunc("/cities", handler.AddCity).Methods("POST")
	v1.HandleFunc("/cities/order", handler.ReorderCities).Methods("PUT")
	v1.HandleFunc("/cities/{id:[0-9]+}", handler.RemoveCity).Methods("DELETE")
	v1.HandleFunc("/dashboard", handler.Dashboard).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
