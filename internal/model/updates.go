package model

import (
	"time"

	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

// Patch types enumerate exactly which fields a partial update may touch.
// A nil field is left unchanged; unknown request fields are rejected at the
// API boundary instead of being merged into stored documents.

type ZonePatch struct {
	Name              *string                    `json:"name,omitempty"`
	MoistureThreshold *float64                   `json:"moistureThreshold,omitempty"`
	PlantType         *string                    `json:"plantType,omitempty"`
	WateringMode      *entities.WateringMode     `json:"wateringMode,omitempty"`
	ManualOverride    *bool                      `json:"manualOverride,omitempty"`
	PredictedSchedule *[]entities.SchedulePoint  `json:"predictedSchedule,omitempty"`
	ConnectedSensors  *[]string                  `json:"connectedSensors,omitempty"`
	ConnectedPump     *string                    `json:"connectedPump,omitempty"`
}

func (p ZonePatch) Empty() bool {
	return p.Name == nil && p.MoistureThreshold == nil && p.PlantType == nil &&
		p.WateringMode == nil && p.ManualOverride == nil && p.PredictedSchedule == nil &&
		p.ConnectedSensors == nil && p.ConnectedPump == nil
}

type SensorPatch struct {
	Name         *string                `json:"name,omitempty"`
	ZoneID       *string                `json:"zoneId,omitempty"`
	Status       *entities.SensorStatus `json:"status,omitempty"`
	BatteryLevel *float64               `json:"batteryLevel,omitempty"`
	Unit         *string                `json:"unit,omitempty"`
}

func (p SensorPatch) Empty() bool {
	return p.Name == nil && p.ZoneID == nil && p.Status == nil &&
		p.BatteryLevel == nil && p.Unit == nil
}

type PumpPatch struct {
	Name            *string              `json:"name,omitempty"`
	ZoneID          *string              `json:"zoneId,omitempty"`
	Status          *entities.PumpStatus `json:"status,omitempty"`
	FlowRate        *float64             `json:"flowRate,omitempty"`
	Pressure        *float64             `json:"pressure,omitempty"`
	Energy          *UsagePatch          `json:"energyConsumption,omitempty"`
	Water           *UsagePatch          `json:"waterOutput,omitempty"`
	OperatingHours  *float64             `json:"operatingHours,omitempty"`
	LastMaintenance *time.Time           `json:"lastMaintenance,omitempty"`
	NextMaintenance *time.Time           `json:"nextMaintenance,omitempty"`
}

// UsagePatch patches individual horizons of a UsageWindow.
type UsagePatch struct {
	Current *float64 `json:"current,omitempty"`
	Today   *float64 `json:"today,omitempty"`
	Week    *float64 `json:"week,omitempty"`
	Month   *float64 `json:"month,omitempty"`
}

func (p PumpPatch) Empty() bool {
	return p.Name == nil && p.ZoneID == nil && p.Status == nil && p.FlowRate == nil &&
		p.Pressure == nil && p.Energy == nil && p.Water == nil &&
		p.OperatingHours == nil && p.LastMaintenance == nil && p.NextMaintenance == nil
}

// Apply merges the patch into w in place.
func (p UsagePatch) Apply(w *entities.UsageWindow) {
	if p.Current != nil {
		w.Current = *p.Current
	}
	if p.Today != nil {
		w.Today = *p.Today
	}
	if p.Week != nil {
		w.Week = *p.Week
	}
	if p.Month != nil {
		w.Month = *p.Month
	}
}
