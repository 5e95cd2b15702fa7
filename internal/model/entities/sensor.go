package entities

import "time"

type SensorType string

const (
	SensorSoilMoisture SensorType = "Soil Moisture"
	SensorTemperature  SensorType = "Temperature"
	SensorHumidity     SensorType = "Humidity"
	SensorPHLevel      SensorType = "pH Level"
	SensorLight        SensorType = "Light"
)

type SensorStatus string

const (
	SensorOnline  SensorStatus = "Online"
	SensorOffline SensorStatus = "Offline"
	SensorError   SensorStatus = "Error"
)

// MaxReadings is the per-sensor reading window. The oldest reading is
// evicted once a 101st arrives; API consumers rely on this bound.
const MaxReadings = 100

type Reading struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Value     float64   `json:"value" bson:"value"`
}

// Sensor is a single environmental device, optionally attached to a zone.
type Sensor struct {
	ID           string       `json:"id" bson:"_id"`
	UserID       string       `json:"userId" bson:"userId"`
	ZoneID       string       `json:"zoneId,omitempty" bson:"zoneId,omitempty"`
	Name         string       `json:"name" bson:"name"`
	Type         SensorType   `json:"type" bson:"type"`
	Status       SensorStatus `json:"status" bson:"status"`
	BatteryLevel float64      `json:"batteryLevel" bson:"batteryLevel"`
	CurrentValue float64      `json:"currentValue" bson:"currentValue"`
	Unit         string       `json:"unit,omitempty" bson:"unit,omitempty"`
	Readings     []Reading    `json:"readings" bson:"readings"`
	LastReading  *time.Time   `json:"lastReading,omitempty" bson:"lastReading,omitempty"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
}

func (t SensorType) Valid() bool {
	switch t {
	case SensorSoilMoisture, SensorTemperature, SensorHumidity, SensorPHLevel, SensorLight:
		return true
	}
	return false
}

func (s SensorStatus) Valid() bool {
	switch s {
	case SensorOnline, SensorOffline, SensorError:
		return true
	}
	return false
}
