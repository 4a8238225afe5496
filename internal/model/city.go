package model

// SavedCity is an entry in the user's ordered city list
type SavedCity struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Country string `json:"country" db:"country"`
	Order   int    `json:"order" db:"position"`
}

// Query returns the geocoding query for the city, qualified by country when known
func (c SavedCity) Query() string {
	if c.Country == "" {
		return c.Name
	}
	return c.Name + "," + c.Country
}
