// Package simulator emulates a sensor fleet publishing readings over MQTT,
// for local development and load testing without hardware.
package simulator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/pkg/mqtt"
)

// Device is one simulated sensor.
type Device struct {
	UserID   string
	SensorID string
	Battery  float64

	gen *Generator
}

type reading struct {
	MessageID    string    `json:"messageId"`
	Value        float64   `json:"value"`
	BatteryLevel *float64  `json:"batteryLevel,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Simulator drives a set of devices on a fixed interval. It also follows
// the server's zone_toggle event mirror so simulated moisture rises while
// a zone is watering.
type Simulator struct {
	devices   []*Device
	publisher mqtt.Publisher
	interval  time.Duration
	logger    *zap.SugaredLogger
}

func New(publisher mqtt.Publisher, interval time.Duration, logger *zap.SugaredLogger) *Simulator {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Simulator{publisher: publisher, interval: interval, logger: logger}
}

func (s *Simulator) AddDevice(userID, sensorID string, battery float64) *Device {
	d := &Device{UserID: userID, SensorID: sensorID, Battery: battery, gen: NewGenerator()}
	s.devices = append(s.devices, d)
	return d
}

// HandleToggle is wired as the handler of an event/zone_toggle/+ consumer.
func (s *Simulator) HandleToggle(_ string, payload []byte) error {
	var ev struct {
		Payload struct {
			ConnectedSensors []string `json:"connectedSensors"`
			WateringStatus   struct {
				IsRunning bool `json:"isRunning"`
			} `json:"wateringStatus"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	attached := make(map[string]bool, len(ev.Payload.ConnectedSensors))
	for _, id := range ev.Payload.ConnectedSensors {
		attached[id] = true
	}
	for _, d := range s.devices {
		if attached[d.SensorID] {
			d.gen.SetWatering(ev.Payload.WateringStatus.IsRunning)
		}
	}
	return nil
}

// Run publishes one reading per device per interval until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, d := range s.devices {
				s.publishReading(d)
			}
		}
	}
}

func (s *Simulator) publishReading(d *Device) {
	// Batteries drain a little with every report.
	d.Battery -= 0.01
	if d.Battery < 0 {
		d.Battery = 0
	}
	battery := d.Battery

	msg := reading{
		MessageID:    uuid.NewString(),
		Value:        d.gen.Next(),
		BatteryLevel: &battery,
		Timestamp:    time.Now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Errorw("reading marshal failed", "sensor", d.SensorID, "err", err)
		return
	}
	topic := "sensor/reading/" + d.UserID + "/" + d.SensorID
	if err := s.publisher.Publish(topic, 1, payload); err != nil {
		s.logger.Warnw("reading publish failed", "topic", topic, "err", err)
		return
	}
	s.logger.Debugw("reading published", "sensor", d.SensorID, "value", msg.Value)
}
