package entities

import "time"

// ZoneStatus mirrors the watering state machine: a zone is Active exactly
// while its watering run is in progress.
type ZoneStatus string

const (
	ZoneActive   ZoneStatus = "Active"
	ZoneInactive ZoneStatus = "Inactive"
)

type WateringMode string

const (
	ModeNormal    WateringMode = "Normal Mode"
	ModeEco       WateringMode = "Eco Mode"
	ModeIntensive WateringMode = "Intensive Mode"
)

// WateringStatus is the run/idle state of a zone's pump cycle.
type WateringStatus struct {
	IsRunning       bool       `json:"isRunning" bson:"isRunning"`
	CurrentDuration *int       `json:"currentDuration,omitempty" bson:"currentDuration,omitempty"` // minutes
	LastWatered     *time.Time `json:"lastWatered,omitempty" bson:"lastWatered,omitempty"`
	ManualOverride  bool       `json:"manualOverride" bson:"manualOverride"`
}

type HumidityPoint struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Value     float64   `json:"value" bson:"value"`
}

type WateringRecord struct {
	Date     time.Time `json:"date" bson:"date"`
	Duration float64   `json:"duration" bson:"duration"` // minutes
	Amount   float64   `json:"amount" bson:"amount"`     // liters
}

// SchedulePoint is informational only; the backend never acts on it.
type SchedulePoint struct {
	Time        string  `json:"time" bson:"time"`
	Probability float64 `json:"probability" bson:"probability"`
}

// Zone represents an irrigated area with its own moisture state,
// watering schedule and connected devices.
type Zone struct {
	ID                string           `json:"id" bson:"_id"`
	UserID            string           `json:"userId" bson:"userId"`
	Name              string           `json:"name" bson:"name"`
	Status            ZoneStatus       `json:"status" bson:"status"`
	MoistureLevel     float64          `json:"moistureLevel" bson:"moistureLevel"`
	MoistureThreshold float64          `json:"moistureThreshold" bson:"moistureThreshold"`
	PlantType         string           `json:"plantType,omitempty" bson:"plantType,omitempty"`
	WateringMode      WateringMode     `json:"wateringMode" bson:"wateringMode"`
	WateringStatus    WateringStatus   `json:"wateringStatus" bson:"wateringStatus"`
	HumidityHistory   []HumidityPoint  `json:"humidityHistory" bson:"humidityHistory"`
	WateringHistory   []WateringRecord `json:"wateringHistory" bson:"wateringHistory"`
	PredictedSchedule []SchedulePoint  `json:"predictedSchedule" bson:"predictedSchedule"`
	ConnectedSensors  []string         `json:"connectedSensors" bson:"connectedSensors"`
	ConnectedPump     string           `json:"connectedPump,omitempty" bson:"connectedPump,omitempty"`
	CreatedAt         time.Time        `json:"createdAt" bson:"createdAt"`
}

func (m WateringMode) Valid() bool {
	switch m {
	case ModeNormal, ModeEco, ModeIntensive:
		return true
	}
	return false
}
