package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/metrics"
	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/pkg/dedup"
	"github.com/abderrahmenzaway/wie-empower/pkg/mqtt"
)

// ReadingTopicFilter matches sensor/reading/{userId}/{sensorId}.
const ReadingTopicFilter = "sensor/reading/+/+"

// readingMessage is the broker-side wire format for one measurement.
type readingMessage struct {
	MessageID    string    `json:"messageId,omitempty"`
	Value        float64   `json:"value"`
	BatteryLevel *float64  `json:"batteryLevel,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}

// Ingest bridges broker telemetry into the service. Duplicate deliveries
// (QoS 1 redelivery, device retries) are dropped by message id.
type Ingest struct {
	svc      *Service
	monitor  *Monitor
	consumer *mqtt.Consumer
	deduper  *dedup.Deduper
	logger   *zap.SugaredLogger
}

func NewIngest(svc *Service, monitor *Monitor, consumer *mqtt.Consumer, deduper *dedup.Deduper, logger *zap.SugaredLogger) *Ingest {
	in := &Ingest{svc: svc, monitor: monitor, consumer: consumer, deduper: deduper, logger: logger}
	consumer.SetHandler(in.handle)
	return in
}

// Run consumes until ctx is cancelled.
func (in *Ingest) Run(ctx context.Context) error {
	return in.consumer.Consume(ctx)
}

func (in *Ingest) handle(topic string, payload []byte) error {
	userID, sensorID, err := splitReadingTopic(topic)
	if err != nil {
		metrics.ReadingsRejected.Inc()
		return err
	}

	var msg readingMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		metrics.ReadingsRejected.Inc()
		return fmt.Errorf("decode reading on %s: %w", topic, err)
	}
	if in.deduper != nil && !in.deduper.ShouldProcess(msg.MessageID) {
		in.logger.Debugw("duplicate reading dropped", "topic", topic, "messageId", msg.MessageID)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := in.svc.RecordReading(ctx, sensorID, userID, msg.Value, msg.Timestamp, "mqtt"); err != nil {
		metrics.ReadingsRejected.Inc()
		return fmt.Errorf("record reading for %s: %w", sensorID, err)
	}
	if msg.BatteryLevel != nil {
		patch := model.SensorPatch{BatteryLevel: msg.BatteryLevel}
		if _, err := in.svc.UpdateSensor(ctx, sensorID, userID, patch); err != nil {
			in.logger.Warnw("battery update failed", "sensor", sensorID, "err", err)
		}
	}
	if in.monitor != nil {
		in.monitor.Touch(ctx, userID, sensorID)
	}
	return nil
}

func splitReadingTopic(topic string) (userID, sensorID string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "sensor" || parts[1] != "reading" || parts[2] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("unexpected reading topic %q", topic)
	}
	return parts[2], parts[3], nil
}
