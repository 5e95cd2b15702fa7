package entities

import "time"

type PumpStatus string

const (
	PumpActive      PumpStatus = "Active"
	PumpInactive    PumpStatus = "Inactive"
	PumpMaintenance PumpStatus = "Maintenance"
	PumpError       PumpStatus = "Error"
)

// UsageWindow holds a metric sampled at several rolling horizons.
// Absent horizons stay zero and aggregate as zero.
type UsageWindow struct {
	Current float64 `json:"current" bson:"current"`
	Today   float64 `json:"today" bson:"today"`
	Week    float64 `json:"week" bson:"week"`
	Month   float64 `json:"month" bson:"month"`
}

// Pump is a watering pump, optionally attached to a zone.
type Pump struct {
	ID                string      `json:"id" bson:"_id"`
	UserID            string      `json:"userId" bson:"userId"`
	ZoneID            string      `json:"zoneId,omitempty" bson:"zoneId,omitempty"`
	Name              string      `json:"name" bson:"name"`
	Status            PumpStatus  `json:"status" bson:"status"`
	FlowRate          float64     `json:"flowRate" bson:"flowRate"` // l/min
	Pressure          float64     `json:"pressure" bson:"pressure"` // bar
	EnergyConsumption UsageWindow `json:"energyConsumption" bson:"energyConsumption"`
	WaterOutput       UsageWindow `json:"waterOutput" bson:"waterOutput"`
	OperatingHours    float64     `json:"operatingHours" bson:"operatingHours"`
	LastMaintenance   *time.Time  `json:"lastMaintenance,omitempty" bson:"lastMaintenance,omitempty"`
	NextMaintenance   *time.Time  `json:"nextMaintenance,omitempty" bson:"nextMaintenance,omitempty"`
	CreatedAt         time.Time   `json:"createdAt" bson:"createdAt"`
}

func (s PumpStatus) Valid() bool {
	switch s {
	case PumpActive, PumpInactive, PumpMaintenance, PumpError:
		return true
	}
	return false
}
