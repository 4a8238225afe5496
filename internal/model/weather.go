package model

import "encoding/json"

// CityInfo is a single geocoding match
type CityInfo struct {
	Name       string            `json:"name"`
	LocalNames map[string]string `json:"local_names,omitempty"`
	Lat        *float64          `json:"lat,omitempty"`
	Lon        *float64          `json:"lon,omitempty"`
	Country    string            `json:"country"`
	State      string            `json:"state,omitempty"`

	// Extra keeps fields the provider sends that are not modelled above
	Extra map[string]json.RawMessage `json:"-"`
}

// HasCoordinates reports whether both lat and lon were present in the response
func (c *CityInfo) HasCoordinates() bool {
	return c != nil && c.Lat != nil && c.Lon != nil
}

func (c *CityInfo) UnmarshalJSON(data []byte) error {
	type plain CityInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, cityInfoFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*c = CityInfo(p)
	return nil
}

func (c CityInfo) MarshalJSON() ([]byte, error) {
	type plain CityInfo
	return mergeExtra(plain(c), c.Extra)
}

// Coord is a geographic position
type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Condition describes one weather condition group
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Readings is the "main" block of a current weather report.
// DewPoint is not part of the current weather response and is filled in from the
// one-call snapshot before a report is handed out.
type Readings struct {
	Temp      float64  `json:"temp"`
	FeelsLike float64  `json:"feels_like"`
	TempMin   float64  `json:"temp_min"`
	TempMax   float64  `json:"temp_max"`
	Pressure  int      `json:"pressure"`
	Humidity  int      `json:"humidity"`
	DewPoint  *float64 `json:"dew_point,omitempty"`
}

// Wind holds wind speed and direction
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

// Sys holds the provider's system block
type Sys struct {
	Country string `json:"country"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s *Sys) UnmarshalJSON(data []byte) error {
	type plain Sys
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, sysFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*s = Sys(p)
	return nil
}

func (s Sys) MarshalJSON() ([]byte, error) {
	type plain Sys
	return mergeExtra(plain(s), s.Extra)
}

// WeatherReport is the current weather for one location merged with its dew point
type WeatherReport struct {
	Coord      Coord       `json:"coord"`
	Weather    []Condition `json:"weather"`
	Main       Readings    `json:"main"`
	Wind       Wind        `json:"wind"`
	Name       string      `json:"name"`
	Visibility int         `json:"visibility"`
	Sys        Sys         `json:"sys"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Complete reports whether the dew point has been merged in
func (r *WeatherReport) Complete() bool {
	return r != nil && r.Main.DewPoint != nil
}

func (r *WeatherReport) UnmarshalJSON(data []byte) error {
	type plain WeatherReport
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, weatherReportFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*r = WeatherReport(p)
	return nil
}

func (r WeatherReport) MarshalJSON() ([]byte, error) {
	type plain WeatherReport
	return mergeExtra(plain(r), r.Extra)
}

// OneCallSnapshot is the part of the one-call response this service reads
type OneCallSnapshot struct {
	Lat      float64        `json:"lat"`
	Lon      float64        `json:"lon"`
	Timezone string         `json:"timezone"`
	Current  *OneCallCurrent `json:"current"`
}

// OneCallCurrent is the "current" block of a one-call response
type OneCallCurrent struct {
	Dt       int64    `json:"dt"`
	Temp     float64  `json:"temp"`
	DewPoint *float64 `json:"dew_point"`
}
