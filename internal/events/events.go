package events

// Event type tags, one per state-changing operation.
const (
	ZoneCreated = "zone_created"
	ZoneUpdated = "zone_updated"
	ZoneDeleted = "zone_deleted"
	ZoneToggle  = "zone_toggle"

	SensorCreated = "sensor_created"
	SensorUpdated = "sensor_updated"
	SensorReading = "sensor_reading"
	SensorDeleted = "sensor_deleted"

	PumpCreated = "pump_created"
	PumpUpdated = "pump_updated"
	PumpDeleted = "pump_deleted"

	NewNotification = "new_notification"
)

// Event is the envelope fanned out to every subscriber of a user's data.
// Payload is either the mutated entity or an id reference for deletes.
type Event struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	Payload any    `json:"payload"`
}

// Deleted is the payload used for *_deleted events.
type Deleted struct {
	ID string `json:"id"`
}
