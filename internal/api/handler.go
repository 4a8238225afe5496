package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexivanou/weather-widget/internal/model"
	"github.com/alexivanou/weather-widget/internal/repository"
	"github.com/alexivanou/weather-widget/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// GetWeather handles GET /api/v1/weather
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, "query parameter 'city' is required", http.StatusBadRequest)
		return
	}

	report, err := h.service.GetReport(r.Context(), city)
	if err != nil {
		h.writeServiceError(w, "Error fetching weather report", err)
		return
	}

	// The lookup error was logged by the widget; an empty result is all we get here
	if report == nil {
		writeError(w, "weather report not available", http.StatusNotFound)
		return
	}

	writeJSON(w, h.logger, report, http.StatusOK)
}

// GetWeatherByCoord handles GET /api/v1/weather/coord
func (h *Handler) GetWeatherByCoord(w http.ResponseWriter, r *http.Request) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if latStr == "" || lonStr == "" {
		writeError(w, "parameters 'lat' and 'lon' are required", http.StatusBadRequest)
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		writeError(w, "invalid lat parameter", http.StatusBadRequest)
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		writeError(w, "invalid lon parameter", http.StatusBadRequest)
		return
	}

	report, err := h.service.GetReportByCoord(r.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Error fetching weather by coordinates",
			zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		writeError(w, "weather provider request failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, h.logger, report, http.StatusOK)
}

// ListCities handles GET /api/v1/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListCities(r.Context())
	if err != nil {
		h.writeServiceError(w, "Error listing cities", err)
		return
	}
	writeJSON(w, h.logger, resp, http.StatusOK)
}

// AddCity handles POST /api/v1/cities
func (h *Handler) AddCity(w http.ResponseWriter, r *http.Request) {
	var req model.AddCityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	city, err := h.service.AddCity(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "Error adding city", err)
		return
	}
	writeJSON(w, h.logger, city, http.StatusCreated)
}

// RemoveCity handles DELETE /api/v1/cities/{id}
func (h *Handler) RemoveCity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "invalid city id", http.StatusBadRequest)
		return
	}

	removed, err := h.service.RemoveCity(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Error removing city", err)
		return
	}
	if !removed {
		writeError(w, "city not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderCities handles PUT /api/v1/cities/order
func (h *Handler) ReorderCities(w http.ResponseWriter, r *http.Request) {
	var req model.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ReorderCities(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "Error reordering cities", err)
		return
	}
	writeJSON(w, h.logger, resp, http.StatusOK)
}

// Dashboard handles GET /api/v1/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.writeServiceError(w, "Error building dashboard", err)
		return
	}
	writeJSON(w, h.logger, resp, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeServiceError maps domain errors to status codes and logs the rest
func (h *Handler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrInvalidOrder):
		writeError(w, repository.ErrInvalidOrder.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrDuplicateCity):
		writeError(w, repository.ErrDuplicateCity.Error(), http.StatusConflict)
	default:
		h.logger.Error(msg, zap.Error(err))
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(model.ErrorResponse{Message: msg})
}
