package model

// Stats is the dashboard snapshot derived from the current device fleet.
// It is a pure function of store contents and is recomputed per call.
type Stats struct {
	Zones   ZoneStats   `json:"zones"`
	Sensors SensorStats `json:"sensors"`
	Pumps   PumpStats   `json:"pumps"`
	Energy  Totals      `json:"energy"`
	Water   Totals      `json:"water"`
}

type ZoneStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type SensorStats struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
}

type PumpStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

type Totals struct {
	Today float64 `json:"today"`
	Week  float64 `json:"week"`
}

// HourlyPoint is one sample of the 24-point dashboard series.
type HourlyPoint struct {
	Hour        int     `json:"hour"`
	Consumption float64 `json:"consumption"`
}

// UsageSeries is the energy/water chart payload: instantaneous and daily
// totals plus one point per hour 0-23.
type UsageSeries struct {
	Current float64       `json:"current"`
	Today   float64       `json:"today"`
	Hourly  []HourlyPoint `json:"hourly"`
}
