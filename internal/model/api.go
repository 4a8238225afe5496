package model

// AddCityRequest is the body of POST /api/v1/cities
type AddCityRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// ReorderRequest is the body of PUT /api/v1/cities/order.
// IDs lists every saved city id in the desired order.
type ReorderRequest struct {
	IDs []int `json:"ids"`
}

// CitiesResponse represents the saved city list
type CitiesResponse struct {
	Cities []SavedCity `json:"cities"`
}

// SortableWeatherReport is a dashboard entry; Report is nil when the lookup failed
type SortableWeatherReport struct {
	Order  int            `json:"order"`
	City   SavedCity      `json:"city"`
	Report *WeatherReport `json:"report"`
}

// DashboardResponse lists reports for every saved city in order
type DashboardResponse struct {
	Reports []SortableWeatherReport `json:"reports"`
}

// ErrorResponse is returned for JSON error bodies
type ErrorResponse struct {
	Message string `json:"message"`
}
