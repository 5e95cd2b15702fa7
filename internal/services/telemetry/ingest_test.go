package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
	"github.com/abderrahmenzaway/wie-empower/pkg/dedup"
)

func TestSplitReadingTopic(t *testing.T) {
	userID, sensorID, err := splitReadingTopic("sensor/reading/alice/s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
	assert.Equal(t, "s1", sensorID)

	for _, bad := range []string{
		"sensor/reading/alice",
		"sensor/reading//s1",
		"zone/reading/alice/s1",
		"sensor/reading/alice/s1/extra",
	} {
		_, _, err := splitReadingTopic(bad)
		assert.Error(t, err, bad)
	}
}

func TestIngestHandleRecordsAndDedups(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sensor, err := svc.CreateSensor(ctx, "alice", CreateSensorInput{
		Name: "bed-moisture", Type: entities.SensorSoilMoisture,
	})
	require.NoError(t, err)

	in := &Ingest{svc: svc, deduper: dedup.New(time.Minute, 100), logger: zap.NewNop().Sugar()}

	battery := 55.0
	payload, err := json.Marshal(readingMessage{
		MessageID: "m1", Value: 33.3, BatteryLevel: &battery, Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	topic := "sensor/reading/alice/" + sensor.ID
	require.NoError(t, in.handle(topic, payload))

	got, err := svc.GetSensor(ctx, sensor.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 33.3, got.CurrentValue)
	assert.Equal(t, 55.0, got.BatteryLevel)
	require.Len(t, got.Readings, 1)

	// Redelivery of the same message id is swallowed.
	require.NoError(t, in.handle(topic, payload))
	got, err = svc.GetSensor(ctx, sensor.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, got.Readings, 1)

	assert.Error(t, in.handle(topic, []byte("not json")))
	assert.Error(t, in.handle("bogus/topic", payload))
}
